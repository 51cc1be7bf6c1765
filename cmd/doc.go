// Package cmd implements the command-line interface for mailwire.
//
// This package provides the following commands:
//   - upload: Upload an RFC 822 message file into a mailbox via the
//     multipart or resumable media protocol
//   - labels: List the labels of a mailbox
//   - version: Display version information
package cmd
