// Package logging provides structured logging utilities for mailwire.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "mail.users.messages.import")
//	logger.Info("upload complete",
//	    logging.Status("success"),
//	    logging.Bytes(n))
//
// # Security Considerations
//
// Bearer tokens are never logged directly; use SanitizeToken when a token
// must appear in diagnostics.
package logging
