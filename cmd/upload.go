package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/mailwire/mailwire/internal/auth"
	"github.com/mailwire/mailwire/internal/instrumentation"
	"github.com/mailwire/mailwire/internal/mailapi"
	"github.com/mailwire/mailwire/internal/upload"
)

func newUploadCmd() *cobra.Command {
	var (
		file        string
		user        string
		token       string
		endpoint    string
		contentType string
		resumable   bool
		insert      bool
		chunkSize   int64
		maxRetries  int
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload an RFC 822 message file into a mailbox",
		Long: `Upload a message file through the media upload protocol.

By default the message travels as a single multipart request and is
imported with the scanning and classification a received message gets.
With --resumable the payload is sent in chunks against a server-issued
session URL, and transient failures are retried with exponential
backoff without re-sending bytes the server already accepted. With
--insert the message bypasses scanning and classification.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("no token: set --token or the MAILWIRE_TOKEN environment variable")
			}

			media, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("opening message file: %w", err)
			}
			defer media.Close()

			logger := newLogger(verbose)
			ctx := context.Background()

			metrics, err := instrumentation.NewMetrics(otel.Meter("mailwire"))
			if err != nil {
				return fmt.Errorf("initializing metrics: %w", err)
			}
			delegate := instrumentation.NewDelegate(ctx,
				&upload.RetryDelegate{MaxRetries: maxRetries, Chunk: chunkSize},
				metrics, otel.Tracer("mailwire"))

			svc := mailapi.NewService(&upload.Uploader{
				Tokens:   auth.StaticTokenProvider{AccessToken: token},
				Delegate: delegate,
				Logger:   logger,
			})
			svc.BaseURL = endpoint

			var msg *mailapi.Message
			if insert {
				msg, err = svc.InsertMessage(ctx, user, nil, media, contentType,
					&mailapi.InsertOptions{Resumable: resumable})
			} else {
				msg, err = svc.ImportMessage(ctx, user, nil, media, contentType,
					&mailapi.ImportOptions{Resumable: resumable})
			}
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			fmt.Printf("Uploaded message %s (thread %s)\n", msg.ID, msg.ThreadID)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the RFC 822 message file to upload (required)")
	cmd.Flags().StringVar(&user, "user", "me", "Mailbox to upload into")
	cmd.Flags().StringVar(&token, "token", os.Getenv("MAILWIRE_TOKEN"), "Bearer token (default: $MAILWIRE_TOKEN)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "API endpoint override (default: production)")
	cmd.Flags().StringVar(&contentType, "content-type", "message/rfc822", "MIME type of the media")
	cmd.Flags().BoolVar(&resumable, "resumable", false, "Use the resumable chunked upload protocol")
	cmd.Flags().BoolVar(&insert, "insert", false, "Insert directly instead of importing")
	cmd.Flags().Int64Var(&chunkSize, "chunk-size", 0, "Resumable chunk size in bytes (0 sends everything in one chunk)")
	cmd.Flags().IntVar(&maxRetries, "max-retries", upload.DefaultMaxRetries, "Maximum delegate-authorized retries")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// newLogger builds the process logger; debug level when verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
