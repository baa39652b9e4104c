package models

// Message types accepted on the chat channel.
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeSystem = "system"
)

// Message is one chat entry, appended to the session's message list. The list
// shares the session's TTL and is re-expired after every append.
type Message struct {
	Schema    int    `json:"schema"`
	MessageID string `json:"messageId"` // timestamp plus random tie-breaker
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Type      string `json:"type"` // "text", "image" or "system"
	Message   string `json:"message,omitempty"`
	ImageData string `json:"imageData,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
