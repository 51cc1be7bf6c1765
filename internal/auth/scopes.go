package auth

// OAuth scopes for the mail service API.
//
// The scopes provide access to:
//   - full mailbox access (read, write, send)
//   - message insertion only
//   - mailbox modification without deletion
//   - read-only access
const (
	// ScopeMailFull grants full mailbox access, including send.
	ScopeMailFull = "https://mail.google.com/"

	// ScopeInsert grants inserting and importing messages only.
	ScopeInsert = "https://www.googleapis.com/auth/gmail.insert"

	// ScopeModify grants all read/write operations except permanent
	// deletion.
	ScopeModify = "https://www.googleapis.com/auth/gmail.modify"

	// ScopeReadonly grants reading messages, threads, labels and
	// settings.
	ScopeReadonly = "https://www.googleapis.com/auth/gmail.readonly"
)

// DefaultScopes is applied when an operation does not name its own
// scope set.
var DefaultScopes = []string{ScopeMailFull}
