package chathub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"layoverlink/backend/internal/config"
	"layoverlink/backend/internal/ids"
	"layoverlink/backend/internal/models"
	"layoverlink/backend/internal/session"
	"layoverlink/backend/internal/storage"
)

// InboundEvent is one decoded frame from a client, paired with the connection
// it arrived on.
type InboundEvent struct {
	Client   Client
	Envelope models.Envelope
}

// ManagerService is the realtime hub. All connection registration, event
// handling and broadcasting happens on the single Run goroutine, so the room
// and client maps need no locking. The store remains the only authoritative
// state; everything here is rebuilt from it as connections come and go.
type ManagerService struct {
	Clients map[string]Client            // connID -> client
	Rooms   map[string]map[string]Client // sessionID -> connID -> client

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan InboundEvent

	Store    storage.Storage
	Sessions *session.Service
	Limiter  *RateLimiter
}

// NewManagerService Constructor
func NewManagerService(store storage.Storage, sessions *session.Service) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		Rooms:        make(map[string]map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan InboundEvent, 64),
		Store:        store,
		Sessions:     sessions,
		Limiter:      NewRateLimiter(config.MessageRateLimit, config.MessageRateWindow),
	}
}

// Run is the hub dispatcher. Start it once, as a goroutine.
func (m *ManagerService) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client.ConnID()] = client
			log.Printf("Client connected: %s", client.ConnID())

		case client := <-m.UnregisterCh:
			m.handleDisconnect(client)

		case ev := <-m.EventCh:
			m.dispatch(ev)
		}
	}
}

func (m *ManagerService) dispatch(ev InboundEvent) {
	ctx := context.Background()

	switch ev.Envelope.Event {
	case models.EventJoinSession:
		m.handleJoinSession(ctx, ev.Client, ev.Envelope.Data)
	case models.EventSendMessage:
		m.handleSendMessage(ctx, ev.Client, ev.Envelope.Data)
	case models.EventUpdateLocation:
		m.handleUpdateLocation(ctx, ev.Client, ev.Envelope.Data)
	case models.EventGetMessages:
		m.handleGetMessages(ctx, ev.Client, ev.Envelope.Data)
	default:
		m.sendError(ev.Client, "Unknown event: "+ev.Envelope.Event)
	}
}

// handleJoinSession attaches an existing member's identity to the connection
// and subscribes it to the session's broadcast group. It validates against
// the store the same way HTTP join does, but never appends a member.
func (m *ManagerService) handleJoinSession(ctx context.Context, client Client, data json.RawMessage) {
	var req models.JoinSessionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		m.sendError(client, "Malformed join_session payload")
		return
	}

	sess, err := m.Store.GetSession(ctx, req.SessionID)
	if errors.Is(err, storage.ErrNotFound) {
		m.sendError(client, "Session not found")
		return
	}
	if err != nil {
		log.Printf("Error joining session: %v", err)
		m.sendError(client, "Failed to join session")
		return
	}

	member := sess.FindMember(req.UserID)
	if member == nil {
		m.sendError(client, "User not in session")
		return
	}

	// A connection carries at most one identity. Re-joining moves it
	// wholesale: the old subscription and rate window go away first, so a
	// later disconnect never leaves a dead client behind in a stale room.
	if oldSession, oldUser := client.Identity(); oldSession != "" {
		m.Limiter.Clear(oldSession + ":" + oldUser)
		if room := m.Rooms[oldSession]; room != nil {
			delete(room, client.ConnID())
			if len(room) == 0 {
				delete(m.Rooms, oldSession)
			}
		}
	}

	client.SetIdentity(req.SessionID, req.UserID)
	room := m.Rooms[req.SessionID]
	if room == nil {
		room = make(map[string]Client)
		m.Rooms[req.SessionID] = room
	}
	room[client.ConnID()] = client

	m.broadcastExcept(req.SessionID, client.ConnID(), models.EventUserJoined, models.UserJoinedEvent{
		UserID:    member.UserID,
		Name:      member.Name,
		Airline:   member.Airline,
		Timestamp: models.NowMillis(),
	})
	m.send(client, models.EventSessionJoined, models.SessionJoinedEvent{Session: sess})
}

// handleSendMessage accepts a chat message: rate limit first, then payload
// validation, then membership validation against the store, then append and
// fan-out. The rate window is charged before validation, exactly like the
// product behaves.
func (m *ManagerService) handleSendMessage(ctx context.Context, client Client, data json.RawMessage) {
	var req models.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		m.sendError(client, "Malformed send_message payload")
		return
	}

	if !m.Limiter.Allow(req.SessionID + ":" + req.UserID) {
		m.sendError(client, "Too many messages. Please slow down.")
		return
	}

	msgType := req.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	text := strings.TrimSpace(req.Message)
	switch msgType {
	case models.MessageTypeText:
		if text == "" {
			return
		}
	case models.MessageTypeImage:
		if req.ImageData == "" {
			return
		}
		if len(req.ImageData) > config.MaxImageBytes {
			m.sendError(client, "Image too large. Maximum 300KB.")
			return
		}
	}

	sess, err := m.Store.GetSession(ctx, req.SessionID)
	if errors.Is(err, storage.ErrNotFound) {
		m.sendError(client, "Session not found")
		return
	}
	if err != nil {
		log.Printf("Error sending message: %v", err)
		m.sendError(client, "Failed to send message")
		return
	}

	member := sess.FindMember(req.UserID)
	if member == nil {
		m.sendError(client, "User not in session")
		return
	}

	msg := models.Message{
		Schema:    models.SessionSchemaVersion,
		MessageID: newMessageID(),
		UserID:    req.UserID,
		Name:      member.Name,
		Type:      msgType,
		Timestamp: models.NowMillis(),
	}
	if msgType == models.MessageTypeImage {
		msg.ImageData = req.ImageData
		msg.Message = req.Message
	} else {
		msg.Message = truncate(text, config.MaxMessageLength)
	}

	if err := m.Store.AppendMessage(ctx, req.SessionID, msg); err != nil {
		log.Printf("Error sending message: %v", err)
		m.sendError(client, "Failed to send message")
		return
	}

	m.broadcast(req.SessionID, models.EventNewMessage, msg)
}

// handleUpdateLocation shares the lifecycle manager's validation and write
// path, then announces the member's new state to the whole group. The sharing
// flag is taken as sent; unlike the HTTP path there is no default, and
// coordinates are only recorded while sharing is on.
func (m *ManagerService) handleUpdateLocation(ctx context.Context, client Client, data json.RawMessage) {
	var req models.UpdateLocationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		m.sendError(client, "Malformed update_location payload")
		return
	}

	location := req.Location
	if !req.Sharing {
		location = nil
	}

	member, err := m.Sessions.UpdateLocation(ctx, req.SessionID, req.UserID, location, req.Sharing)
	switch {
	case errors.Is(err, session.ErrNotFound):
		m.sendError(client, "Session not found")
		return
	case errors.Is(err, session.ErrNotMember):
		m.sendError(client, "User not in session")
		return
	case err != nil:
		log.Printf("Error updating location: %v", err)
		m.sendError(client, "Failed to update location")
		return
	}

	m.broadcast(req.SessionID, models.EventLocationUpdated, models.LocationUpdatedEvent{
		UserID:   req.UserID,
		Location: member.LastLocation,
		Sharing:  member.LocationSharing,
	})
}

// handleGetMessages returns the most recent messages, in append order, to the
// requesting connection only.
func (m *ManagerService) handleGetMessages(ctx context.Context, client Client, data json.RawMessage) {
	var req models.GetMessagesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		m.sendError(client, "Malformed get_messages payload")
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = config.DefaultHistoryLimit
	}

	messages, err := m.Store.RecentMessages(ctx, req.SessionID, limit)
	if err != nil {
		log.Printf("Error fetching messages: %v", err)
		m.sendError(client, "Failed to fetch messages")
		return
	}

	m.send(client, models.EventMessagesHistory, models.MessagesHistoryEvent{Messages: messages})
}

// handleDisconnect releases all per-connection bookkeeping: the rate window,
// the room subscription, and the client entry. The rest of the group is told
// the member's connection went away.
func (m *ManagerService) handleDisconnect(client Client) {
	connID := client.ConnID()
	if _, ok := m.Clients[connID]; !ok {
		return
	}
	delete(m.Clients, connID)

	sessionID, userID := client.Identity()
	if sessionID != "" && userID != "" {
		m.Limiter.Clear(sessionID + ":" + userID)

		if room := m.Rooms[sessionID]; room != nil {
			delete(room, connID)
			if len(room) == 0 {
				delete(m.Rooms, sessionID)
			}
		}

		m.broadcast(sessionID, models.EventUserDisconnected, models.UserDisconnectedEvent{
			UserID:    userID,
			Timestamp: models.NowMillis(),
		})
	}

	client.Close()
	log.Printf("Client disconnected: %s", connID)
}

// send delivers one event to a single client. A client whose send buffer is
// full misses the event; it holds no authoritative state and can re-sync from
// the store.
func (m *ManagerService) send(client Client, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error encoding %s event: %v", event, err)
		return
	}

	select {
	case client.GetSendChannel() <- models.Envelope{Event: event, Data: payload}:
	default:
		log.Printf("Dropping %s event for slow client %s", event, client.ConnID())
	}
}

func (m *ManagerService) sendError(client Client, message string) {
	m.send(client, models.EventError, models.ErrorEvent{Message: message})
}

// broadcast fans an event out to every connection in the session's group,
// in acceptance order, sender included.
func (m *ManagerService) broadcast(sessionID, event string, data any) {
	for _, client := range m.Rooms[sessionID] {
		m.send(client, event, data)
	}
}

func (m *ManagerService) broadcastExcept(sessionID, exceptConnID, event string, data any) {
	for connID, client := range m.Rooms[sessionID] {
		if connID == exceptConnID {
			continue
		}
		m.send(client, event, data)
	}
}

// newMessageID builds an ID that both orders and dedupes within a session:
// millisecond timestamp plus a random tie-breaker.
func newMessageID() string {
	suffix, err := ids.New(6)
	if err != nil {
		suffix = "000000"
	}
	return fmt.Sprintf("%d-%s", models.NowMillis(), suffix)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
