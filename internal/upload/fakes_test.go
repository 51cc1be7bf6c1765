package upload

import (
	"io"
	"net/http"
	"sync"
)

// recordingDelegate captures every hook invocation and lets tests
// script the policy answers.
type recordingDelegate struct {
	NopDelegate

	mu          sync.Mutex
	begins      []MethodInfo
	preRequests int
	finished    []bool
	decodeErrs  int
	stored      []string
	chunks      []ChunkInfo

	onHTTPError   func(err error) Retry
	onHTTPFailure func(resp *http.Response, serverErr *ServerError) Retry
	onCancel      func(chunk ChunkInfo) bool
	onToken       func(err error) (string, error)
	chunkSize     int64
	chunkToken    string
	uploadURL     string
	uploadOffset  int64
}

func (d *recordingDelegate) Begin(info MethodInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.begins = append(d.begins, info)
}

func (d *recordingDelegate) PreRequest() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preRequests++
}

func (d *recordingDelegate) Token(err error) (string, error) {
	if d.onToken != nil {
		return d.onToken(err)
	}
	return "", err
}

func (d *recordingDelegate) HTTPError(err error) Retry {
	if d.onHTTPError != nil {
		return d.onHTTPError(err)
	}
	return Abort()
}

func (d *recordingDelegate) HTTPFailure(resp *http.Response, serverErr *ServerError) Retry {
	if d.onHTTPFailure != nil {
		return d.onHTTPFailure(resp, serverErr)
	}
	return Abort()
}

func (d *recordingDelegate) UploadURL() (string, int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploadURL, d.uploadOffset
}

func (d *recordingDelegate) StoreUploadURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stored = append(d.stored, url)
	d.uploadURL = url
}

func (d *recordingDelegate) CancelChunkUpload(chunk ChunkInfo) bool {
	d.mu.Lock()
	d.chunks = append(d.chunks, chunk)
	d.mu.Unlock()
	if d.onCancel != nil {
		return d.onCancel(chunk)
	}
	return false
}

func (d *recordingDelegate) ChunkSize() int64 { return d.chunkSize }

func (d *recordingDelegate) ChunkToken() (string, bool) {
	return d.chunkToken, d.chunkToken != ""
}

func (d *recordingDelegate) ResponseDecodeError([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.decodeErrs++
}

func (d *recordingDelegate) Finished(success bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finished = append(d.finished, success)
}

func (d *recordingDelegate) requests() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.preRequests
}

// seekRecorder wraps a ReadSeeker and records the absolute position of
// every seek, so tests can verify the engine resets the media to a
// known offset before each send.
type seekRecorder struct {
	inner io.ReadSeeker

	mu    sync.Mutex
	seeks []int64
}

func (r *seekRecorder) Read(p []byte) (int, error) {
	return r.inner.Read(p)
}

func (r *seekRecorder) Seek(offset int64, whence int) (int64, error) {
	pos, err := r.inner.Seek(offset, whence)
	r.mu.Lock()
	r.seeks = append(r.seeks, pos)
	r.mu.Unlock()
	return pos, err
}

func (r *seekRecorder) positions() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.seeks...)
}

// sizedReader pretends to be a media source of a given size without
// allocating it; reads produce zero bytes.
type sizedReader struct {
	size int64
	pos  int64
}

func (r *sizedReader) Read(p []byte) (int, error) {
	if r.pos >= r.size {
		return 0, io.EOF
	}
	n := int64(len(p))
	if remaining := r.size - r.pos; n > remaining {
		n = remaining
	}
	for i := int64(0); i < n; i++ {
		p[i] = 0
	}
	r.pos += n
	return int(n), nil
}

func (r *sizedReader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		r.pos = offset
	case io.SeekCurrent:
		r.pos += offset
	case io.SeekEnd:
		r.pos = r.size + offset
	}
	return r.pos, nil
}
