package upload

import (
	"net/http"
	"sync"

	"github.com/cenkalti/backoff/v5"
)

// RetryDelegate is a Delegate with bounded exponential-backoff retries
// and an in-memory resumable session cache. Transport errors are always
// retried up to MaxRetries; HTTP failures only when the status suggests
// a transient condition (429 or 5xx). The retry budget and the backoff
// schedule reset at the start of every upload.
//
// A RetryDelegate must not be shared by concurrent uploads: the session
// cache and retry counter are per-call state.
type RetryDelegate struct {
	NopDelegate

	// MaxRetries caps the delegate-authorized retries per upload.
	// Zero means DefaultMaxRetries.
	MaxRetries int
	// Chunk is the preferred resumable chunk size in bytes. Zero sends
	// the whole remaining content per request.
	Chunk int64

	mu            sync.Mutex
	bo            *backoff.ExponentialBackOff
	retries       int
	sessionURL    string
	sessionOffset int64
}

// DefaultMaxRetries bounds RetryDelegate when MaxRetries is unset.
const DefaultMaxRetries = 5

var _ Delegate = (*RetryDelegate)(nil)

// Begin resets the retry budget and the backoff schedule for a new
// upload. The cached session URL survives so an interrupted transfer
// can resume.
func (d *RetryDelegate) Begin(MethodInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.retries = 0
	d.bo = backoff.NewExponentialBackOff()
}

func (d *RetryDelegate) HTTPError(error) Retry {
	return d.next()
}

func (d *RetryDelegate) HTTPFailure(resp *http.Response, _ *ServerError) Retry {
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
		return Abort()
	}
	return d.next()
}

func (d *RetryDelegate) next() Retry {
	d.mu.Lock()
	defer d.mu.Unlock()

	limit := d.MaxRetries
	if limit <= 0 {
		limit = DefaultMaxRetries
	}
	if d.retries >= limit {
		return Abort()
	}
	d.retries++
	if d.bo == nil {
		d.bo = backoff.NewExponentialBackOff()
	}
	return RetryAfter(d.bo.NextBackOff())
}

func (d *RetryDelegate) UploadURL() (string, int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessionURL, d.sessionOffset
}

func (d *RetryDelegate) StoreUploadURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessionURL = url
	if url == "" {
		d.sessionOffset = 0
	}
}

// StoreResumeOffset records the offset a resumed transfer should start
// from when UploadURL is next consulted, for callers persisting session
// state across restarts.
func (d *RetryDelegate) StoreResumeOffset(offset int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessionOffset = offset
}

func (d *RetryDelegate) ChunkSize() int64 { return d.Chunk }
