// Package instrumentation provides OpenTelemetry observability for
// upload operations.
//
// The transfer delegate is the engine's sole instrumentation point, so
// observability is implemented as a delegate wrapper: Delegate records
// metrics and a span around the upload it observes while forwarding
// every policy decision to the wrapped delegate unchanged.
//
// Only the OpenTelemetry API is used here; the caller owns provider and
// exporter setup. With no SDK configured the instruments are no-ops.
//
// Example:
//
//	metrics, _ := instrumentation.NewMetrics(otel.Meter("mailwire"))
//	dlg := instrumentation.NewDelegate(ctx, &upload.RetryDelegate{}, metrics,
//	    otel.Tracer("mailwire"))
package instrumentation
