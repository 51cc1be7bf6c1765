// Package mailapi defines the mail service's REST surface: the JSON
// schema records (messages, threads, labels, filters), the
// per-operation upload limits, and a thin Service layer that assembles
// plain calls and hands media-carrying operations to the upload engine.
//
// The records are plain serializable data with no behavior. Operations
// with optional parameters take a configuration struct rather than a
// builder chain.
//
// Example usage:
//
//	svc := mailapi.NewService(uploader)
//	msg, err := svc.ImportMessage(ctx, "me", &mailapi.Message{},
//	    file, "message/rfc822", &mailapi.ImportOptions{Resumable: true})
package mailapi
