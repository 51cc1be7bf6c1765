package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mailwire application
var rootCmd = &cobra.Command{
	Use:   "mailwire",
	Short: "A client for the mail service REST API with resumable media uploads",
	Long: `mailwire talks to the mail service REST API. Its centerpiece is the
media upload engine: message payloads travel either as a single
multipart request or as a resumable, chunked transfer that survives
interruptions and resumes without re-sending accepted bytes.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mailwire version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newLabelsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
