package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"layoverlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a record is absent, which covers both "never
// existed" and "already expired" — Redis cannot tell them apart.
var ErrNotFound = errors.New("storage: record not found")

// Storage is the persistence surface shared by the HTTP facade, the realtime
// hub and the profile service. Every record carries a TTL; expiry is the only
// destruction mechanism.
type Storage interface {
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	PutSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	SessionTTL(ctx context.Context, sessionID string) (time.Duration, error)

	AppendMessage(ctx context.Context, sessionID string, msg models.Message) error
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error)

	GetProfile(ctx context.Context, profileID string) (*models.Profile, error)
	PutProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error
	ProfileExists(ctx context.Context, profileID string) (bool, error)
}

// Service is the Redis-backed Storage implementation.
type Service struct {
	Redis *redis.Client
}

// NewService Constructor
func NewService(rdb *redis.Client) *Service {
	return &Service{Redis: rdb}
}

func sessionKey(id string) string  { return "session:" + id }
func messagesKey(id string) string { return "messages:" + id }
func profileKey(id string) string  { return "profile:" + id }

// GetSession loads and decodes the session record.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	val, err := s.Redis.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("storage: failed to decode session %s: %w", sessionID, err)
	}
	if session.Schema != models.SessionSchemaVersion {
		return nil, fmt.Errorf("storage: session %s has unsupported schema %d", sessionID, session.Schema)
	}
	return &session, nil
}

// PutSession writes the session record with the given TTL. Callers on the
// mutation path must pass the TTL they captured before mutating, never the
// full duration, so joins and location updates cannot extend a session.
func (s *Service) PutSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("storage: refusing to write session %s with ttl %v", session.SessionID, ttl)
	}
	if session.Schema == 0 {
		session.Schema = models.SessionSchemaVersion
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("storage: failed to encode session %s: %w", session.SessionID, err)
	}
	return s.Redis.Set(ctx, sessionKey(session.SessionID), data, ttl).Err()
}

// SessionTTL returns the remaining lifetime of the session record.
func (s *Service) SessionTTL(ctx context.Context, sessionID string) (time.Duration, error) {
	ttl, err := s.Redis.TTL(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return 0, err
	}
	// -2: key missing, -1: key without expiry (never written by us)
	if ttl < 0 {
		return 0, ErrNotFound
	}
	return ttl, nil
}

// AppendMessage pushes the message onto the session's log and re-syncs the
// log's expiry to the session's current remaining TTL, so messages never
// outlive the session. The TTL is read first: an append against an expired
// session fails with ErrNotFound instead of recreating the log without an
// expiry.
func (s *Service) AppendMessage(ctx context.Context, sessionID string, msg models.Message) error {
	if msg.Schema == 0 {
		msg.Schema = models.SessionSchemaVersion
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("storage: failed to encode message: %w", err)
	}

	ttl, err := s.SessionTTL(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.Redis.RPush(ctx, messagesKey(sessionID), data).Err(); err != nil {
		return err
	}
	return s.Redis.Expire(ctx, messagesKey(sessionID), ttl).Err()
}

// RecentMessages returns the last limit messages in original append order.
// limit <= 0 returns the whole log.
func (s *Service) RecentMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := s.Redis.LRange(ctx, messagesKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(raw))
	for _, item := range raw {
		var msg models.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("storage: failed to decode message in %s: %w", sessionID, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// GetProfile loads a crew profile by its normalized ID.
func (s *Service) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	val, err := s.Redis.Get(ctx, profileKey(profileID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		return nil, fmt.Errorf("storage: failed to decode profile %s: %w", profileID, err)
	}
	return &profile, nil
}

// PutProfile writes a crew profile with the given TTL.
func (s *Service) PutProfile(ctx context.Context, profile *models.Profile, ttl time.Duration) error {
	if profile.Schema == 0 {
		profile.Schema = models.SessionSchemaVersion
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("storage: failed to encode profile %s: %w", profile.ProfileID, err)
	}
	return s.Redis.Set(ctx, profileKey(profile.ProfileID), data, ttl).Err()
}

// ProfileExists reports whether a profile is stored under the given ID.
func (s *Service) ProfileExists(ctx context.Context, profileID string) (bool, error) {
	n, err := s.Redis.Exists(ctx, profileKey(profileID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ScanSessionIDs walks the keyspace and returns the IDs of all live sessions.
// Used by the admin CLI, not by request paths.
func (s *Service) ScanSessionIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := s.Redis.Scan(ctx, cursor, "session:*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			ids = append(ids, key[len("session:"):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}
