package chathub_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"layoverlink/backend/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockStorage) PutSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	args := m.Called(session, ttl)
	return args.Error(0)
}

func (m *MockStorage) SessionTTL(ctx context.Context, sessionID string) (time.Duration, error) {
	args := m.Called(sessionID)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockStorage) AppendMessage(ctx context.Context, sessionID string, msg models.Message) error {
	args := m.Called(sessionID, msg)
	return args.Error(0)
}

func (m *MockStorage) RecentMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	args := m.Called(sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	args := m.Called(profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockStorage) PutProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error {
	args := m.Called(profile, ttl)
	return args.Error(0)
}

func (m *MockStorage) ProfileExists(ctx context.Context, profileID string) (bool, error) {
	args := m.Called(profileID)
	return args.Bool(0), args.Error(1)
}

// mockClient is an in-memory chathub.Client with a buffered send channel the
// tests can drain.
type mockClient struct {
	id        string
	sessionID string
	userID    string
	send      chan models.Envelope
	closed    bool
}

func newMockClient(id string) *mockClient {
	return &mockClient{id: id, send: make(chan models.Envelope, 16)}
}

func (c *mockClient) ConnID() string                         { return c.id }
func (c *mockClient) Identity() (string, string)             { return c.sessionID, c.userID }
func (c *mockClient) SetIdentity(sessionID, userID string)   { c.sessionID, c.userID = sessionID, userID }
func (c *mockClient) GetSendChannel() chan<- models.Envelope { return c.send }
func (c *mockClient) Run()                                   {}

// Close matches the real client: the send channel closes, so any later hub
// send to this client would panic the dispatcher.
func (c *mockClient) Close() {
	c.closed = true
	close(c.send)
}

// recv waits for the next envelope delivered to the client.
func (c *mockClient) recv(t *testing.T) models.Envelope {
	t.Helper()
	select {
	case env := <-c.send:
		return env
	case <-time.After(time.Second):
		t.Fatalf("client %s received no event", c.id)
		return models.Envelope{}
	}
}

// recvNothing asserts no event arrives within a short grace period.
func (c *mockClient) recvNothing(t *testing.T) {
	t.Helper()
	select {
	case env := <-c.send:
		t.Fatalf("client %s unexpectedly received %s", c.id, env.Event)
	case <-time.After(150 * time.Millisecond):
	}
}

func decodeEvent[T any](t *testing.T, env models.Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func encodeEvent(t *testing.T, event string, data any) models.Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return models.Envelope{Event: event, Data: raw}
}
