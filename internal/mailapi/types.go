package mailapi

// DefaultBaseURL is the production API endpoint. The upload paths live
// under /upload on the same host.
const DefaultBaseURL = "https://gmail.googleapis.com"

// Per-operation media upload limits, enforced client-side before any
// network call.
const (
	// MaxMessageSize bounds media for messages.insert, messages.send
	// and the draft operations.
	MaxMessageSize = 36 * 1024 * 1024

	// MaxImportSize bounds media for messages.import.
	MaxImportSize = 50 * 1024 * 1024
)

// AcceptedMediaType is the MIME pattern upload operations accept.
// The server validates it; clients only declare the concrete type.
const AcceptedMediaType = "message/*"

// Message is a single mail message.
type Message struct {
	ID           string       `json:"id,omitempty"`
	ThreadID     string       `json:"threadId,omitempty"`
	LabelIDs     []string     `json:"labelIds,omitempty"`
	Snippet      string       `json:"snippet,omitempty"`
	HistoryID    string       `json:"historyId,omitempty"`
	InternalDate string       `json:"internalDate,omitempty"`
	SizeEstimate int64        `json:"sizeEstimate,omitempty"`
	Raw          string       `json:"raw,omitempty"`
	Payload      *MessagePart `json:"payload,omitempty"`
}

// MessagePart is one node of a message's MIME tree.
type MessagePart struct {
	PartID   string           `json:"partId,omitempty"`
	MimeType string           `json:"mimeType,omitempty"`
	Filename string           `json:"filename,omitempty"`
	Headers  []*Header        `json:"headers,omitempty"`
	Body     *MessagePartBody `json:"body,omitempty"`
	Parts    []*MessagePart   `json:"parts,omitempty"`
}

// Header is a single message header.
type Header struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// MessagePartBody carries the data of a MIME part, or a reference to it
// when it is stored as an attachment.
type MessagePartBody struct {
	AttachmentID string `json:"attachmentId,omitempty"`
	Size         int64  `json:"size,omitempty"`
	Data         string `json:"data,omitempty"`
}

// Thread is a conversation of messages.
type Thread struct {
	ID        string     `json:"id,omitempty"`
	Snippet   string     `json:"snippet,omitempty"`
	HistoryID string     `json:"historyId,omitempty"`
	Messages  []*Message `json:"messages,omitempty"`
}

// Label organizes messages and threads.
type Label struct {
	ID                    string `json:"id,omitempty"`
	Name                  string `json:"name,omitempty"`
	Type                  string `json:"type,omitempty"`
	MessageListVisibility string `json:"messageListVisibility,omitempty"`
	LabelListVisibility   string `json:"labelListVisibility,omitempty"`
	MessagesTotal         int64  `json:"messagesTotal,omitempty"`
	MessagesUnread        int64  `json:"messagesUnread,omitempty"`
	ThreadsTotal          int64  `json:"threadsTotal,omitempty"`
	ThreadsUnread         int64  `json:"threadsUnread,omitempty"`
}

// Filter routes incoming messages matching its criteria through its
// action.
type Filter struct {
	ID       string          `json:"id,omitempty"`
	Criteria *FilterCriteria `json:"criteria,omitempty"`
	Action   *FilterAction   `json:"action,omitempty"`
}

// FilterCriteria matches incoming messages.
type FilterCriteria struct {
	From           string `json:"from,omitempty"`
	To             string `json:"to,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Query          string `json:"query,omitempty"`
	NegatedQuery   string `json:"negatedQuery,omitempty"`
	HasAttachment  bool   `json:"hasAttachment,omitempty"`
	ExcludeChats   bool   `json:"excludeChats,omitempty"`
	Size           int64  `json:"size,omitempty"`
	SizeComparison string `json:"sizeComparison,omitempty"`
}

// FilterAction is applied to messages a filter matched.
type FilterAction struct {
	AddLabelIDs    []string `json:"addLabelIds,omitempty"`
	RemoveLabelIDs []string `json:"removeLabelIds,omitempty"`
	Forward        string   `json:"forward,omitempty"`
}

// Draft is an unsent message.
type Draft struct {
	ID      string   `json:"id,omitempty"`
	Message *Message `json:"message,omitempty"`
}

// Profile describes a mailbox.
type Profile struct {
	EmailAddress  string `json:"emailAddress,omitempty"`
	MessagesTotal int64  `json:"messagesTotal,omitempty"`
	ThreadsTotal  int64  `json:"threadsTotal,omitempty"`
	HistoryID     string `json:"historyId,omitempty"`
}

// ListLabelsResponse wraps the labels.list result.
type ListLabelsResponse struct {
	Labels []*Label `json:"labels,omitempty"`
}
