package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

// assembleMultipart combines the JSON metadata and the media payload
// into a single multipart/related body for the non-resumable upload
// path. It returns the body and the overall content type, boundary
// included.
//
// The size check duplicates the one the orchestrator performs before
// any network call; assembly is the last point before bytes hit the
// wire, so the limit is enforced here a second time.
func assembleMultipart(metadata []byte, media io.Reader, mediaType string, mediaSize, limit int64) (io.Reader, string, error) {
	if limit > 0 && mediaSize > limit {
		return nil, "", &SizeLimitError{Size: mediaSize, Limit: limit}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	part, err := w.CreatePart(metaHeader)
	if err != nil {
		return nil, "", fmt.Errorf("creating metadata part: %w", err)
	}
	if _, err := part.Write(metadata); err != nil {
		return nil, "", fmt.Errorf("writing metadata part: %w", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	if mediaType != "" {
		mediaHeader.Set("Content-Type", mediaType)
	}
	part, err = w.CreatePart(mediaHeader)
	if err != nil {
		return nil, "", fmt.Errorf("creating media part: %w", err)
	}
	if _, err := io.Copy(part, media); err != nil {
		return nil, "", fmt.Errorf("writing media part: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	contentType := "multipart/related; boundary=" + w.Boundary()
	return &buf, contentType, nil
}
