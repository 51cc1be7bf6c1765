package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mailwire/mailwire/internal/auth"
	"github.com/mailwire/mailwire/internal/logging"
)

// Strategy selects how the media payload travels: as a single
// multipart/related body or as a resumable chunked transfer. The value
// doubles as the uploadType query parameter on the wire.
type Strategy string

const (
	Multipart Strategy = "multipart"
	Resumable Strategy = "resumable"
)

// reservedParams are query parameter names the engine assembles itself
// or that the service claims for every operation. A caller-supplied
// parameter with one of these names is a fatal FieldClashError.
var reservedParams = map[string]struct{}{
	"alt":         {},
	"uploadType":  {},
	"prettyPrint": {},
	"fields":      {},
	"key":         {},
	"oauth_token": {},
	"quotaUser":   {},
	"userId":      {},
}

// Request describes one upload operation. It is not modified by the
// engine and must not be reused concurrently, since the engine owns the
// media reader's position for the duration of the call.
type Request struct {
	// URL is the operation's upload endpoint, without query parameters.
	URL string
	// Method is the HTTP verb of the initiating request.
	Method string
	// MethodID identifies the operation for the delegate, e.g.
	// "mail.users.messages.import".
	MethodID string
	// MaxSize is the operation's declared media size limit in bytes.
	// Zero means unlimited.
	MaxSize int64
	// Metadata is the serialized JSON metadata payload.
	Metadata []byte
	// Media is the payload source. The engine measures its length by
	// seeking to the end and back, and re-seeks to a known offset
	// before every send, so the caller must not have consumed it.
	Media io.ReadSeeker
	// MediaType is the media's declared MIME type.
	MediaType string
	// Params are caller-supplied extra query parameters.
	Params url.Values
	// Scopes are the authorization scopes to acquire a token for.
	// Empty means the default mail scope.
	Scopes []string
}

// Uploader drives upload operations end to end: strategy selection,
// size enforcement, token acquisition and the delegate-arbitrated retry
// loop around the HTTP exchange.
type Uploader struct {
	// Client issues the physical requests. Defaults to
	// http.DefaultClient.
	Client *http.Client
	// Tokens produces bearer tokens for scope sets.
	Tokens auth.TokenProvider
	// Delegate supplies retry, chunking and session policy. Defaults to
	// NopDelegate.
	Delegate Delegate
	// Logger receives structured progress events. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

func (u *Uploader) client() *http.Client {
	if u.Client != nil {
		return u.Client
	}
	return http.DefaultClient
}

func (u *Uploader) delegate() Delegate {
	if u.Delegate != nil {
		return u.Delegate
	}
	return NopDelegate{}
}

func (u *Uploader) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}

// Do performs the upload described by req using the given strategy and
// decodes the final 2xx body into out (skipped when out is nil). It
// returns the final response alongside any typed error; the delegate's
// Finished hook fires exactly once per call with the terminal outcome.
func (u *Uploader) Do(ctx context.Context, req *Request, strategy Strategy, out any) (resp *http.Response, err error) {
	dlg := u.delegate()
	logger := logging.WithOperation(u.logger(), req.MethodID)

	dlg.Begin(MethodInfo{ID: req.MethodID, HTTPMethod: req.Method})
	defer func() {
		dlg.Finished(err == nil)
	}()

	for name := range req.Params {
		if _, clash := reservedParams[name]; clash {
			return nil, &FieldClashError{Field: name}
		}
	}

	params := url.Values{}
	for name, values := range req.Params {
		params[name] = values
	}
	params.Set("alt", "json")
	params.Set("uploadType", string(strategy))

	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = auth.DefaultScopes
	}

	size, err := mediaSize(req.Media)
	if err != nil {
		return nil, fmt.Errorf("measuring media size: %w", err)
	}
	if req.MaxSize > 0 && size > req.MaxSize {
		return nil, &SizeLimitError{Size: size, Limit: req.MaxSize}
	}

	return u.run(ctx, dlg, logger, req, strategy, params, scopes, size, out)
}

// run is the attempt loop: acquire a token, reset the media,
// exchange with the server, and on every transport error or HTTP
// failure consult the delegate exactly once before either looping or
// surfacing a typed error.
func (u *Uploader) run(ctx context.Context, dlg Delegate, logger *slog.Logger, req *Request, strategy Strategy, params url.Values, scopes []string, size int64, out any) (*http.Response, error) {
	target := req.URL + "?" + params.Encode()
	attempt := 0

	for {
		attempt++
		logger.Debug("starting upload attempt",
			logging.Attempt(attempt),
			logging.Bytes(size),
			slog.String("strategy", string(strategy)))

		authHeader, err := u.bearer(ctx, dlg, scopes)
		if err != nil {
			return nil, err
		}

		if _, err := req.Media.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewinding media: %w", err)
		}

		var (
			resp         *http.Response
			sessionURL   string
			resumeOffset int64
		)

		// A delegate-cached session URL short-circuits re-initiation.
		if strategy == Resumable {
			sessionURL, resumeOffset = dlg.UploadURL()
		}

		if sessionURL == "" {
			resp, err = u.initiate(ctx, req, strategy, target, authHeader, size, dlg)
			if err != nil {
				var sizeErr *SizeLimitError
				if errors.As(err, &sizeErr) {
					return nil, err
				}
				if retry, rerr := u.consultError(ctx, dlg, logger, err); retry {
					continue
				} else if rerr != nil {
					return nil, rerr
				}
				return nil, &TransportError{Err: err}
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				retry, ferr := u.consultFailure(ctx, dlg, logger, resp)
				if retry {
					continue
				}
				return resp, ferr
			}

			if strategy == Resumable {
				// The media may have grown since the first measurement;
				// the limit holds for the bytes about to travel.
				if size, err = mediaSize(req.Media); err != nil {
					return nil, fmt.Errorf("measuring media size: %w", err)
				}
				if req.MaxSize > 0 && size > req.MaxSize {
					return resp, &SizeLimitError{Size: size, Limit: req.MaxSize}
				}

				sessionURL = resp.Header.Get("Location")
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				resumeOffset = 0
				if sessionURL != "" {
					dlg.StoreUploadURL(sessionURL)
				} else if sessionURL, resumeOffset = dlg.UploadURL(); sessionURL == "" {
					return nil, ErrCancelled
				}
			}
		}

		if strategy == Resumable {
			transfer := &resumableTransfer{
				client:     u.client(),
				delegate:   dlg,
				logger:     logger,
				url:        sessionURL,
				media:      req.Media,
				mediaType:  req.MediaType,
				size:       size,
				offset:     resumeOffset,
				authHeader: authHeader,
			}
			final, terr := transfer.run(ctx)
			if errors.Is(terr, ErrCancelled) {
				return nil, ErrCancelled
			}
			if terr != nil {
				if retry, rerr := u.consultError(ctx, dlg, logger, terr); retry {
					continue
				} else if rerr != nil {
					return nil, rerr
				}
				return nil, &TransportError{Err: terr}
			}
			if final.StatusCode < 200 || final.StatusCode >= 300 {
				retry, ferr := u.consultFailure(ctx, dlg, logger, final)
				if retry {
					continue
				}
				return final, ferr
			}
			resp = final
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if retry, rerr := u.consultError(ctx, dlg, logger, err); retry {
				continue
			} else if rerr != nil {
				return nil, rerr
			}
			return resp, &TransportError{Err: err}
		}

		if out != nil {
			if err := json.Unmarshal(body, out); err != nil {
				dlg.ResponseDecodeError(body, err)
				return resp, &DecodeError{Body: body, Err: err}
			}
		}

		logger.Info("upload complete",
			logging.Attempt(attempt),
			logging.Bytes(size),
			logging.Status(logging.StatusSuccess))
		return resp, nil
	}
}

// bearer acquires a token for the scope set, giving the delegate one
// chance to substitute before MissingTokenError surfaces.
func (u *Uploader) bearer(ctx context.Context, dlg Delegate, scopes []string) (string, error) {
	var token string
	var err error
	if u.Tokens != nil {
		token, err = u.Tokens.Token(ctx, scopes)
	} else {
		err = errors.New("no token provider configured")
	}
	if err != nil || token == "" {
		substitute, serr := dlg.Token(err)
		if serr != nil || substitute == "" {
			return "", &MissingTokenError{Err: serr}
		}
		token = substitute
	}
	return "Bearer " + token, nil
}

// initiate builds and sends the first physical request of an attempt:
// the full multipart body for the simple path, or the metadata-only
// session registration for the resumable path.
func (u *Uploader) initiate(ctx context.Context, req *Request, strategy Strategy, target, authHeader string, size int64, dlg Delegate) (*http.Response, error) {
	var body io.Reader
	var contentType string

	if strategy == Multipart {
		var err error
		body, contentType, err = assembleMultipart(req.Metadata, req.Media, req.MediaType, size, req.MaxSize)
		if err != nil {
			return nil, err
		}
	} else {
		body = bytes.NewReader(req.Metadata)
		contentType = "application/json; charset=UTF-8"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", authHeader)
	if strategy == Resumable {
		httpReq.Header.Set("X-Upload-Content-Type", req.MediaType)
		httpReq.Header.Set("X-Upload-Content-Length", strconv.FormatInt(size, 10))
	}

	dlg.PreRequest()
	return u.client().Do(httpReq)
}

// consultError puts a transport-level failure to the delegate. It
// returns retry=true after sleeping the delegate's delay, or
// retry=false with a non-nil error only when the sleep itself was cut
// short by context cancellation.
func (u *Uploader) consultError(ctx context.Context, dlg Delegate, logger *slog.Logger, cause error) (bool, error) {
	delay, retry := dlg.HTTPError(cause).Decision()
	if !retry {
		return false, nil
	}
	logger.Debug("retrying after transport error",
		logging.Err(cause),
		slog.Duration(logging.KeyDuration, delay))
	if err := sleepContext(ctx, delay); err != nil {
		return false, err
	}
	return true, nil
}

// consultFailure reads the failed response's body, offers the delegate
// the raw response plus the decoded structured error, and either sleeps
// for a retry or produces the typed error to surface.
func (u *Uploader) consultFailure(ctx context.Context, dlg Delegate, logger *slog.Logger, resp *http.Response) (bool, error) {
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	serverErr := DecodeServerError(body)

	delay, retry := dlg.HTTPFailure(resp, serverErr).Decision()
	if retry {
		logger.Debug("retrying after http failure",
			slog.Int(logging.KeyStatus, resp.StatusCode),
			slog.Duration(logging.KeyDuration, delay))
		if err := sleepContext(ctx, delay); err != nil {
			return false, err
		}
		return true, nil
	}

	if serverErr != nil {
		return false, serverErr
	}
	return false, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
}

// mediaSize measures a seekable source by seeking to the end and back
// to the start.
func mediaSize(media io.ReadSeeker) (int64, error) {
	size, err := media.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := media.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

// sleepContext pauses for d unless the context is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
