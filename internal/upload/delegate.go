package upload

import (
	"net/http"
	"time"
)

// MethodInfo identifies the API operation an upload serves. Passed to
// Delegate.Begin for observability only.
type MethodInfo struct {
	// ID is the operation identifier, e.g. "mail.users.messages.import".
	ID string
	// HTTPMethod is the verb of the initiating request.
	HTTPMethod string
}

// ChunkInfo describes the chunk a resumable transfer is about to send.
type ChunkInfo struct {
	// Offset is the first byte of the chunk within the media.
	Offset int64
	// Length is the chunk size in bytes.
	Length int64
	// Total is the full media size in bytes.
	Total int64
}

// Retry is the delegate's verdict after a transport error or an HTTP
// failure: either retry after a delay, or surface the original outcome
// to the caller. There are no other variants.
type Retry struct {
	retry bool
	after time.Duration
}

// RetryAfter instructs the engine to sleep d and retry the attempt.
func RetryAfter(d time.Duration) Retry { return Retry{retry: true, after: d} }

// Abort instructs the engine to surface the error to the caller.
func Abort() Retry { return Retry{} }

// Decision reports the delay and whether to retry at all.
func (r Retry) Decision() (time.Duration, bool) { return r.after, r.retry }

// Delegate supplies the policy hooks consulted at defined points in a
// transfer's lifecycle. It is the sole retry authority in the system:
// the engine imposes no attempt cap or backoff of its own. A delegate
// outlives a single upload call and may be consulted by many.
type Delegate interface {
	// Begin is called once at the start of an upload, before any
	// validation or network activity.
	Begin(info MethodInfo)

	// PreRequest is called immediately before every physical HTTP
	// request, including each resumable chunk.
	PreRequest()

	// Token gives the delegate one chance to supply a substitute bearer
	// token after acquisition failed with cause err. Returning an empty
	// token (or an error) surfaces MissingTokenError to the caller.
	Token(err error) (string, error)

	// HTTPError is consulted after a transport-level failure where no
	// response was received.
	HTTPError(err error) Retry

	// HTTPFailure is consulted after a non-2xx response. serverErr is
	// the decoded structured error payload, or nil when the body did not
	// carry one. The response body has already been read; resp.Body
	// must not be used.
	HTTPFailure(resp *http.Response, serverErr *ServerError) Retry

	// UploadURL returns a previously stored resumable session URL and
	// the offset to resume from, letting a transfer skip re-initiation
	// (for example after a process restart). An empty URL means no
	// session is cached.
	UploadURL() (url string, offset int64)

	// StoreUploadURL records a server-issued session URL for later
	// retrieval through UploadURL. An empty URL clears the cache; the
	// engine clears it when a transfer completes so a later upload does
	// not reuse a stale session.
	StoreUploadURL(url string)

	// CancelChunkUpload is asked after every accepted intermediate
	// chunk. Returning true stops the transfer with ErrCancelled.
	CancelChunkUpload(chunk ChunkInfo) bool

	// ChunkSize returns the preferred chunk size in bytes. Zero or a
	// negative value sends the whole remaining content in one request.
	ChunkSize() int64

	// ChunkToken may supply a fresh bearer token for the next chunk of
	// a resumable transfer. Returning ok=false reuses the token the
	// initiating request was sent with, which a long-running transfer
	// can outlive.
	ChunkToken() (token string, ok bool)

	// ResponseDecodeError is called when a 2xx body failed to parse as
	// the operation's result schema, before DecodeError is surfaced.
	ResponseDecodeError(body []byte, err error)

	// Finished is called exactly once per upload with the terminal
	// outcome.
	Finished(success bool)
}

// NopDelegate is the default Delegate: it never retries, never supplies
// tokens or session URLs, and accepts the server's default chunk size,
// so every multi-step behavior degrades to fail-fast. Embed it to
// implement only the hooks a custom delegate cares about.
type NopDelegate struct{}

var _ Delegate = (*NopDelegate)(nil)

func (NopDelegate) Begin(MethodInfo) {}

func (NopDelegate) PreRequest() {}

func (NopDelegate) Token(err error) (string, error) { return "", err }

func (NopDelegate) HTTPError(error) Retry { return Abort() }

func (NopDelegate) HTTPFailure(*http.Response, *ServerError) Retry { return Abort() }

func (NopDelegate) UploadURL() (string, int64) { return "", 0 }

func (NopDelegate) StoreUploadURL(string) {}

func (NopDelegate) CancelChunkUpload(ChunkInfo) bool { return false }

func (NopDelegate) ChunkSize() int64 { return 0 }

func (NopDelegate) ChunkToken() (string, bool) { return "", false }

func (NopDelegate) ResponseDecodeError([]byte, error) {}

func (NopDelegate) Finished(bool) {}
