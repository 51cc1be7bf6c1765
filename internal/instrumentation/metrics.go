package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys shared by every instrument.
const (
	attrOperation = "operation"
	attrResult    = "result"
	attrStatus    = "status"
)

// Result values for the uploads_total counter.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics provides methods for recording upload observability metrics.
type Metrics struct {
	uploadsTotal   metric.Int64Counter
	uploadDuration metric.Float64Histogram
	requestsTotal  metric.Int64Counter
	retriesTotal   metric.Int64Counter
	chunksTotal    metric.Int64Counter
	chunkBytes     metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with all instruments
// initialized on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.uploadsTotal, err = meter.Int64Counter(
		"mail_uploads_total",
		metric.WithDescription("Total number of upload operations by terminal result"),
		metric.WithUnit("{upload}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_uploads_total counter: %w", err)
	}

	m.uploadDuration, err = meter.Float64Histogram(
		"mail_upload_duration_seconds",
		metric.WithDescription("End-to-end upload duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_upload_duration_seconds histogram: %w", err)
	}

	m.requestsTotal, err = meter.Int64Counter(
		"mail_upload_requests_total",
		metric.WithDescription("Total number of physical HTTP requests issued by the upload engine"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_upload_requests_total counter: %w", err)
	}

	m.retriesTotal, err = meter.Int64Counter(
		"mail_upload_retries_total",
		metric.WithDescription("Total number of delegate-authorized retries"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_upload_retries_total counter: %w", err)
	}

	m.chunksTotal, err = meter.Int64Counter(
		"mail_upload_chunks_total",
		metric.WithDescription("Total number of accepted intermediate chunks in resumable transfers"),
		metric.WithUnit("{chunk}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_upload_chunks_total counter: %w", err)
	}

	m.chunkBytes, err = meter.Int64Histogram(
		"mail_upload_chunk_bytes",
		metric.WithDescription("Accepted bytes per intermediate chunk"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_upload_chunk_bytes histogram: %w", err)
	}

	return m, nil
}

// RecordUpload records a terminal upload outcome with its duration.
func (m *Metrics) RecordUpload(ctx context.Context, operation string, success bool, duration time.Duration) {
	result := ResultError
	if success {
		result = ResultSuccess
	}
	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrResult, result),
	)
	m.uploadsTotal.Add(ctx, 1, attrs)
	m.uploadDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String(attrOperation, operation)))
}

// RecordRequest counts one physical HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, operation string) {
	m.requestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrOperation, operation)))
}

// RecordRetry counts one delegate-authorized retry. status is the HTTP
// status code, or zero for transport errors.
func (m *Metrics) RecordRetry(ctx context.Context, operation string, status int) {
	m.retriesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.Int(attrStatus, status),
	))
}

// RecordChunk records one accepted intermediate chunk of the given size.
func (m *Metrics) RecordChunk(ctx context.Context, operation string, bytes int64) {
	attrs := metric.WithAttributes(attribute.String(attrOperation, operation))
	m.chunksTotal.Add(ctx, 1, attrs)
	m.chunkBytes.Record(ctx, bytes, attrs)
}
