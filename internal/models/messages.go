package models

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Severity tags a notification for display.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a transient event surfaced to the user, e.g. an upload result.
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	FileName string   `json:"file_name,omitempty"`
}

type SendRequest struct {
	Content string `json:"content"`
}

type SendResponse struct {
	Reply Message `json:"reply"`
	Mode  string  `json:"mode"`
}
