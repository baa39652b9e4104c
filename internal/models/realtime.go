package models

import "encoding/json"

// Client -> server events.
const (
	EventJoinSession    = "join_session"
	EventSendMessage    = "send_message"
	EventUpdateLocation = "update_location"
	EventGetMessages    = "get_messages"
)

// Server -> client events.
const (
	EventSessionJoined    = "session_joined"
	EventNewMessage       = "new_message"
	EventUserJoined       = "user_joined"
	EventUserDisconnected = "user_disconnected"
	EventLocationUpdated  = "location_updated"
	EventMessagesHistory  = "messages_history"
	EventError            = "error"
)

// Envelope is the frame exchanged on the websocket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinSessionRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

type SendMessageRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	ImageData string `json:"imageData,omitempty"`
}

type UpdateLocationRequest struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Location  *GeoPoint `json:"location"`
	Sharing   bool      `json:"sharing"`
}

type GetMessagesRequest struct {
	SessionID string `json:"sessionId"`
	Limit     int    `json:"limit,omitempty"`
}

type UserJoinedEvent struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Airline   string `json:"airline"`
	Timestamp int64  `json:"timestamp"`
}

type UserDisconnectedEvent struct {
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

type LocationUpdatedEvent struct {
	UserID   string          `json:"userId"`
	Location *MemberLocation `json:"location,omitempty"`
	Sharing  bool            `json:"sharing"`
}

type SessionJoinedEvent struct {
	Session *Session `json:"session"`
}

type MessagesHistoryEvent struct {
	Messages []Message `json:"messages"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
