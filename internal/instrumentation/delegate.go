package instrumentation

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mailwire/mailwire/internal/upload"
)

// Delegate wraps another transfer delegate and records metrics and a
// span for the upload it observes. All policy decisions come from the
// wrapped delegate unchanged.
//
// A Delegate instruments one upload at a time; create one per call (the
// wrapped delegate may still be long-lived).
type Delegate struct {
	inner   upload.Delegate
	metrics *Metrics
	tracer  trace.Tracer
	ctx     context.Context

	mu         sync.Mutex
	span       trace.Span
	start      time.Time
	operation  string
	lastOffset int64
}

var _ upload.Delegate = (*Delegate)(nil)

// NewDelegate wraps inner with metric and span recording. metrics or
// tracer may be nil to disable the respective signal. ctx carries the
// parent span and is attached to every recorded measurement.
func NewDelegate(ctx context.Context, inner upload.Delegate, metrics *Metrics, tracer trace.Tracer) *Delegate {
	if inner == nil {
		inner = upload.NopDelegate{}
	}
	return &Delegate{
		inner:   inner,
		metrics: metrics,
		tracer:  tracer,
		ctx:     ctx,
	}
}

func (d *Delegate) Begin(info upload.MethodInfo) {
	d.mu.Lock()
	d.start = time.Now()
	d.operation = info.ID
	d.lastOffset = 0
	if d.tracer != nil {
		_, d.span = d.tracer.Start(d.ctx, "mail.upload",
			trace.WithAttributes(
				attribute.String(attrOperation, info.ID),
				attribute.String("http.method", info.HTTPMethod),
			))
	}
	d.mu.Unlock()

	d.inner.Begin(info)
}

func (d *Delegate) PreRequest() {
	if d.metrics != nil {
		d.metrics.RecordRequest(d.ctx, d.op())
	}
	d.inner.PreRequest()
}

func (d *Delegate) Token(err error) (string, error) {
	return d.inner.Token(err)
}

func (d *Delegate) HTTPError(err error) upload.Retry {
	d.recordError(err)
	r := d.inner.HTTPError(err)
	if _, retry := r.Decision(); retry && d.metrics != nil {
		d.metrics.RecordRetry(d.ctx, d.op(), 0)
	}
	return r
}

func (d *Delegate) HTTPFailure(resp *http.Response, serverErr *upload.ServerError) upload.Retry {
	d.mu.Lock()
	if d.span != nil {
		d.span.AddEvent("http.failure",
			trace.WithAttributes(attribute.Int("http.status_code", resp.StatusCode)))
	}
	d.mu.Unlock()

	r := d.inner.HTTPFailure(resp, serverErr)
	if _, retry := r.Decision(); retry && d.metrics != nil {
		d.metrics.RecordRetry(d.ctx, d.op(), resp.StatusCode)
	}
	return r
}

func (d *Delegate) UploadURL() (string, int64) { return d.inner.UploadURL() }

func (d *Delegate) StoreUploadURL(url string) { d.inner.StoreUploadURL(url) }

func (d *Delegate) CancelChunkUpload(chunk upload.ChunkInfo) bool {
	d.mu.Lock()
	accepted := chunk.Offset - d.lastOffset
	d.lastOffset = chunk.Offset
	if d.span != nil {
		d.span.AddEvent("chunk.accepted",
			trace.WithAttributes(
				attribute.Int64("upload.offset", chunk.Offset),
				attribute.Int64("upload.total", chunk.Total),
			))
	}
	d.mu.Unlock()

	if d.metrics != nil && accepted > 0 {
		d.metrics.RecordChunk(d.ctx, d.op(), accepted)
	}
	return d.inner.CancelChunkUpload(chunk)
}

func (d *Delegate) ChunkSize() int64 { return d.inner.ChunkSize() }

func (d *Delegate) ChunkToken() (string, bool) { return d.inner.ChunkToken() }

func (d *Delegate) ResponseDecodeError(body []byte, err error) {
	d.recordError(err)
	d.inner.ResponseDecodeError(body, err)
}

func (d *Delegate) Finished(success bool) {
	d.mu.Lock()
	elapsed := time.Since(d.start)
	span := d.span
	d.span = nil
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.RecordUpload(d.ctx, d.op(), success, elapsed)
	}
	if span != nil {
		if success {
			span.SetStatus(codes.Ok, "")
		} else {
			span.SetStatus(codes.Error, "upload failed")
		}
		span.End()
	}

	d.inner.Finished(success)
}

func (d *Delegate) op() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.operation
}

func (d *Delegate) recordError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.span != nil && err != nil {
		d.span.RecordError(err)
	}
}
