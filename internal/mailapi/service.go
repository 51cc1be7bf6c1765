package mailapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mailwire/mailwire/internal/auth"
	"github.com/mailwire/mailwire/internal/upload"
)

// Service is the thin call layer over the REST surface. Media-carrying
// operations go through the upload engine; everything else is a plain
// authorized JSON exchange.
type Service struct {
	// BaseURL overrides DefaultBaseURL, e.g. for tests.
	BaseURL string
	// Uploader drives the media upload operations and supplies the
	// HTTP client and token provider for plain calls.
	Uploader *upload.Uploader
}

// NewService returns a Service backed by the given uploader.
func NewService(uploader *upload.Uploader) *Service {
	return &Service{Uploader: uploader}
}

func (s *Service) base() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return DefaultBaseURL
}

// ImportOptions configures messages.import.
type ImportOptions struct {
	// Resumable selects the chunked upload protocol instead of a single
	// multipart request.
	Resumable bool
	// InternalDateSource controls where the message date comes from
	// ("receivedTime" or "dateHeader").
	InternalDateSource string
	// NeverMarkSpam imports the message without spam classification.
	NeverMarkSpam bool
	// ProcessForCalendar runs calendar processing on the imported
	// message.
	ProcessForCalendar bool
	// Deleted imports the message directly into the deleted state.
	Deleted bool
	// ExtraParams are appended verbatim to the query string. Reserved
	// parameter names are rejected by the engine.
	ExtraParams url.Values
}

// ImportMessage imports a raw RFC 822 message into the mailbox,
// performing scanning and classification like a received message.
// Media up to MaxImportSize.
func (s *Service) ImportMessage(ctx context.Context, userID string, msg *Message, media io.ReadSeeker, mediaType string, opts *ImportOptions) (*Message, error) {
	if opts == nil {
		opts = &ImportOptions{}
	}
	params := cloneValues(opts.ExtraParams)
	if opts.InternalDateSource != "" {
		params.Set("internalDateSource", opts.InternalDateSource)
	}
	if opts.NeverMarkSpam {
		params.Set("neverMarkSpam", "true")
	}
	if opts.ProcessForCalendar {
		params.Set("processForCalendar", "true")
	}
	if opts.Deleted {
		params.Set("deleted", "true")
	}

	return s.uploadMessage(ctx, &upload.Request{
		URL:       s.base() + "/upload/gmail/v1/users/" + url.PathEscape(userID) + "/messages/import",
		Method:    http.MethodPost,
		MethodID:  "mail.users.messages.import",
		MaxSize:   MaxImportSize,
		Media:     media,
		MediaType: mediaType,
		Params:    params,
	}, msg, opts.Resumable)
}

// InsertOptions configures messages.insert.
type InsertOptions struct {
	// Resumable selects the chunked upload protocol instead of a single
	// multipart request.
	Resumable bool
	// InternalDateSource controls where the message date comes from.
	InternalDateSource string
	// Deleted inserts the message directly into the deleted state.
	Deleted bool
	// ExtraParams are appended verbatim to the query string.
	ExtraParams url.Values
}

// InsertMessage inserts a raw RFC 822 message directly into the
// mailbox, bypassing scanning and classification. Media up to
// MaxMessageSize.
func (s *Service) InsertMessage(ctx context.Context, userID string, msg *Message, media io.ReadSeeker, mediaType string, opts *InsertOptions) (*Message, error) {
	if opts == nil {
		opts = &InsertOptions{}
	}
	params := cloneValues(opts.ExtraParams)
	if opts.InternalDateSource != "" {
		params.Set("internalDateSource", opts.InternalDateSource)
	}
	if opts.Deleted {
		params.Set("deleted", "true")
	}

	return s.uploadMessage(ctx, &upload.Request{
		URL:       s.base() + "/upload/gmail/v1/users/" + url.PathEscape(userID) + "/messages",
		Method:    http.MethodPost,
		MethodID:  "mail.users.messages.insert",
		MaxSize:   MaxMessageSize,
		Media:     media,
		MediaType: mediaType,
		Params:    params,
	}, msg, opts.Resumable)
}

func (s *Service) uploadMessage(ctx context.Context, req *upload.Request, msg *Message, resumable bool) (*Message, error) {
	if msg == nil {
		msg = &Message{}
	}
	metadata, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding message metadata: %w", err)
	}
	req.Metadata = metadata

	strategy := upload.Multipart
	if resumable {
		strategy = upload.Resumable
	}

	var out Message
	if _, err := s.Uploader.Do(ctx, req, strategy, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile retrieves the mailbox profile.
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var out Profile
	err := s.call(ctx, http.MethodGet,
		s.base()+"/gmail/v1/users/"+url.PathEscape(userID)+"/profile", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLabels lists all labels in the mailbox.
func (s *Service) ListLabels(ctx context.Context, userID string) ([]*Label, error) {
	var out ListLabelsResponse
	err := s.call(ctx, http.MethodGet,
		s.base()+"/gmail/v1/users/"+url.PathEscape(userID)+"/labels", &out)
	if err != nil {
		return nil, err
	}
	return out.Labels, nil
}

// call performs a plain authorized JSON exchange without media.
func (s *Service) call(ctx context.Context, method, target string, out any) error {
	token, err := s.Uploader.Tokens.Token(ctx, auth.DefaultScopes)
	if err != nil {
		return fmt.Errorf("acquiring token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target+"?alt=json", nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := s.Uploader.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if serverErr := upload.DecodeServerError(body); serverErr != nil {
			return serverErr
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func cloneValues(values url.Values) url.Values {
	cloned := url.Values{}
	for name, vs := range values {
		cloned[name] = append([]string(nil), vs...)
	}
	return cloned
}
