package upload

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCancelled is returned when the delegate declines to continue a
// resumable transfer, either by never supplying a usable session URL or
// by vetoing the upload between chunks.
var ErrCancelled = errors.New("upload cancelled by delegate")

// SizeLimitError reports a media payload larger than the limit the
// target operation declares. It is never retried.
type SizeLimitError struct {
	Size  int64
	Limit int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("media size %d exceeds upload limit %d", e.Size, e.Limit)
}

// FieldClashError reports a caller-supplied query parameter that
// collides with a reserved parameter name. It is never retried.
type FieldClashError struct {
	Field string
}

func (e *FieldClashError) Error() string {
	return fmt.Sprintf("query parameter %q clashes with a reserved parameter", e.Field)
}

// MissingTokenError is returned when token acquisition failed and the
// delegate declined to supply a substitute.
type MissingTokenError struct {
	Err error
}

func (e *MissingTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no bearer token available: %v", e.Err)
	}
	return "no bearer token available"
}

func (e *MissingTokenError) Unwrap() error { return e.Err }

// TransportError wraps an I/O level failure where no HTTP response was
// received. Surfaced only after the delegate declined to retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx response whose body did not carry a
// structured error payload.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload failed: %s", e.Status)
}

// DecodeError reports a 2xx response body that did not parse as the
// operation's result schema. It is never retried.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response body: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ServerError is the structured error envelope the mail service returns
// for application-level failures.
type ServerError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
	Errors  []struct {
		Domain  string `json:"domain,omitempty"`
		Reason  string `json:"reason,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"errors,omitempty"`
}

func (e *ServerError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("server error %d (%s): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// DecodeServerError attempts to parse a response body as the structured
// error envelope. It returns nil when the body is not such an envelope;
// server-side validation is authoritative, so anything else is left for
// the caller to treat as opaque.
func DecodeServerError(body []byte) *ServerError {
	var envelope struct {
		Error *ServerError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if envelope.Error == nil || envelope.Error.Code == 0 && envelope.Error.Message == "" {
		return nil
	}
	return envelope.Error
}
