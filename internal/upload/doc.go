// Package upload implements the media upload protocol used by the mail
// service's REST API.
//
// Two upload strategies are supported:
//   - Multipart: a single request carrying the JSON metadata and the
//     media payload as a multipart/related body. Not resumable.
//   - Resumable: an initiating request registers an upload session and
//     returns a session URL in the Location header; the media is then
//     sent in one or more chunked requests against that URL, and an
//     interrupted transfer can resume without re-sending bytes the
//     server has already accepted.
//
// All retry, backoff, chunk-size and session-persistence policy lives in
// a Delegate. The engine itself never retries on its own: every
// transport error and every non-2xx response is put to the delegate
// exactly once, and the delegate either names a delay to retry after or
// the error is surfaced to the caller as a typed value. The NopDelegate
// default makes every multi-step behavior degrade to fail-fast.
//
// Example:
//
//	u := &upload.Uploader{
//	    Client:   http.DefaultClient,
//	    Tokens:   auth.StaticTokenProvider{AccessToken: token},
//	    Delegate: &upload.RetryDelegate{MaxRetries: 5},
//	}
//	var msg mailapi.Message
//	_, err := u.Do(ctx, &upload.Request{
//	    URL:       endpoint,
//	    Method:    http.MethodPost,
//	    MethodID:  "mail.users.messages.import",
//	    MaxSize:   mailapi.MaxImportSize,
//	    Metadata:  metadata,
//	    Media:     file,
//	    MediaType: "message/rfc822",
//	}, upload.Resumable, &msg)
package upload
