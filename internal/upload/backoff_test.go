package upload

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryDelegateBoundsRetries(t *testing.T) {
	d := &RetryDelegate{MaxRetries: 3}
	d.Begin(MethodInfo{})

	var delays []time.Duration
	for {
		delay, retry := d.HTTPError(assert.AnError).Decision()
		if !retry {
			break
		}
		delays = append(delays, delay)
		require.Less(t, len(delays), 100, "retry budget must be bounded")
	}

	assert.Len(t, delays, 3)
	for _, delay := range delays {
		assert.Greater(t, delay, time.Duration(0))
	}
}

func TestRetryDelegateResetsOnBegin(t *testing.T) {
	d := &RetryDelegate{MaxRetries: 1}
	d.Begin(MethodInfo{})

	_, retry := d.HTTPError(assert.AnError).Decision()
	assert.True(t, retry)
	_, retry = d.HTTPError(assert.AnError).Decision()
	assert.False(t, retry, "budget exhausted")

	d.Begin(MethodInfo{})
	_, retry = d.HTTPError(assert.AnError).Decision()
	assert.True(t, retry, "a new upload starts with a fresh budget")
}

func TestRetryDelegateFailurePolicy(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		retries    bool
	}{
		{name: "bad request is permanent", statusCode: http.StatusBadRequest, retries: false},
		{name: "not found is permanent", statusCode: http.StatusNotFound, retries: false},
		{name: "rate limit is transient", statusCode: http.StatusTooManyRequests, retries: true},
		{name: "server error is transient", statusCode: http.StatusInternalServerError, retries: true},
		{name: "bad gateway is transient", statusCode: http.StatusBadGateway, retries: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &RetryDelegate{MaxRetries: 3}
			d.Begin(MethodInfo{})
			resp := &http.Response{StatusCode: tt.statusCode}
			_, retry := d.HTTPFailure(resp, nil).Decision()
			assert.Equal(t, tt.retries, retry)
		})
	}
}

func TestRetryDelegateSessionCache(t *testing.T) {
	d := &RetryDelegate{}

	url, offset := d.UploadURL()
	assert.Empty(t, url)
	assert.Zero(t, offset)

	d.StoreUploadURL("https://mail.example/session/1")
	d.StoreResumeOffset(512)
	url, offset = d.UploadURL()
	assert.Equal(t, "https://mail.example/session/1", url)
	assert.Equal(t, int64(512), offset)

	// Clearing the URL also drops the offset.
	d.StoreUploadURL("")
	url, offset = d.UploadURL()
	assert.Empty(t, url)
	assert.Zero(t, offset)
}

func TestRetryDelegateChunkSize(t *testing.T) {
	d := &RetryDelegate{Chunk: 256 * 1024}
	assert.Equal(t, int64(256*1024), d.ChunkSize())
	assert.Equal(t, int64(0), (&RetryDelegate{}).ChunkSize())
}

func TestNopDelegateFailsFast(t *testing.T) {
	d := NopDelegate{}

	_, retry := d.HTTPError(assert.AnError).Decision()
	assert.False(t, retry)
	_, retry = d.HTTPFailure(&http.Response{StatusCode: 500}, nil).Decision()
	assert.False(t, retry)

	token, err := d.Token(assert.AnError)
	assert.Empty(t, token)
	assert.Equal(t, assert.AnError, err)

	url, _ := d.UploadURL()
	assert.Empty(t, url)
	assert.False(t, d.CancelChunkUpload(ChunkInfo{}))
}
