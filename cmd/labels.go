package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mailwire/mailwire/internal/auth"
	"github.com/mailwire/mailwire/internal/mailapi"
	"github.com/mailwire/mailwire/internal/upload"
)

func newLabelsCmd() *cobra.Command {
	var (
		user     string
		token    string
		endpoint string
	)

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "List the labels of a mailbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("no token: set --token or the MAILWIRE_TOKEN environment variable")
			}

			svc := mailapi.NewService(&upload.Uploader{
				Tokens: auth.StaticTokenProvider{AccessToken: token},
			})
			svc.BaseURL = endpoint

			labels, err := svc.ListLabels(context.Background(), user)
			if err != nil {
				return fmt.Errorf("listing labels: %w", err)
			}
			for _, label := range labels {
				fmt.Printf("%s\t%s\n", label.ID, label.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "me", "Mailbox to list labels for")
	cmd.Flags().StringVar(&token, "token", os.Getenv("MAILWIRE_TOKEN"), "Bearer token (default: $MAILWIRE_TOKEN)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "API endpoint override (default: production)")

	return cmd
}
