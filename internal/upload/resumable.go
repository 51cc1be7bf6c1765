package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mailwire/mailwire/internal/logging"
)

// statusResumeIncomplete is the status the server answers an accepted
// intermediate chunk with, alongside a Range header naming the bytes it
// holds so far.
const statusResumeIncomplete = http.StatusPermanentRedirect

// resumableTransfer drives the chunked request sequence of one
// resumable upload against a session URL. It never retries on its own:
// a transport error or a terminal status ends the transfer and is
// reported back for the orchestrator and its delegate to classify. All
// state is local to one call; nothing is retained across transfers.
type resumableTransfer struct {
	client     *http.Client
	delegate   Delegate
	logger     *slog.Logger
	url        string
	media      io.ReadSeeker
	mediaType  string
	size       int64
	offset     int64
	authHeader string
}

// run sends chunks until the server answers with a terminal status.
// It returns the terminal response (success or failure, left for the
// caller to interpret), a transport error, or ErrCancelled when the
// delegate vetoed continuation between chunks.
func (t *resumableTransfer) run(ctx context.Context) (*http.Response, error) {
	for {
		resp, err := t.sendChunk(ctx)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == statusResumeIncomplete {
			next := parseRangeEnd(resp.Header.Get("Range"), t.offset)
			resp.Body.Close()
			t.logger.Debug("chunk accepted",
				logging.Offset(t.offset),
				slog.Int64("next_offset", next))
			t.offset = next
			if t.delegate.CancelChunkUpload(ChunkInfo{Offset: t.offset, Length: t.chunkLen(), Total: t.size}) {
				return nil, ErrCancelled
			}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			// The session is spent; a later upload must not reuse it.
			t.delegate.StoreUploadURL("")
		}
		return resp, nil
	}
}

// chunkLen returns the size of the next chunk: the delegate's preferred
// size, capped by the remaining content, or everything left when the
// delegate expresses no preference.
func (t *resumableTransfer) chunkLen() int64 {
	remaining := t.size - t.offset
	if remaining < 0 {
		remaining = 0
	}
	if preferred := t.delegate.ChunkSize(); preferred > 0 && preferred < remaining {
		return preferred
	}
	return remaining
}

func (t *resumableTransfer) sendChunk(ctx context.Context) (*http.Response, error) {
	length := t.chunkLen()
	if _, err := t.media.Seek(t.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking media to offset %d: %w", t.offset, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.url, io.LimitReader(t.media, length))
	if err != nil {
		return nil, fmt.Errorf("building chunk request: %w", err)
	}
	req.ContentLength = length
	if t.mediaType != "" {
		req.Header.Set("Content-Type", t.mediaType)
	}
	req.Header.Set("Content-Range", contentRange(t.offset, length, t.size))
	req.Header.Set("Authorization", t.chunkAuth())

	t.delegate.PreRequest()
	t.logger.Debug("sending chunk",
		logging.Offset(t.offset),
		logging.Bytes(length),
		slog.Int64("total", t.size))
	return t.client.Do(req)
}

// chunkAuth asks the delegate for a fresh token before each chunk and
// falls back to the token the initiating request was sent with. A
// long-running transfer can outlive the initiating token's validity,
// so the refresh hook is offered every time.
func (t *resumableTransfer) chunkAuth() string {
	if token, ok := t.delegate.ChunkToken(); ok && token != "" {
		return "Bearer " + token
	}
	return t.authHeader
}

// contentRange renders the Content-Range header for a chunk starting at
// offset. A zero-length body (empty media) declares only the total.
func contentRange(offset, length, total int64) string {
	if length == 0 {
		return fmt.Sprintf("bytes */%d", total)
	}
	return fmt.Sprintf("bytes %d-%d/%d", offset, offset+length-1, total)
}

// parseRangeEnd extracts the next send offset from a "Range: bytes=0-N"
// continuation header; the server holds bytes up to and including N.
// A missing or malformed header yields the current offset, meaning no
// progress was recorded for the chunk.
func parseRangeEnd(header string, current int64) int64 {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return current
	}
	_, end, ok := strings.Cut(header[len(prefix):], "-")
	if !ok {
		return current
	}
	n, err := strconv.ParseInt(end, 10, 64)
	if err != nil || n < 0 {
		return current
	}
	return n + 1
}
