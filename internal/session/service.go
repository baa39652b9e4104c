package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"layoverlink/backend/internal/flights"
	"layoverlink/backend/internal/ids"
	"layoverlink/backend/internal/models"
	"layoverlink/backend/internal/storage"
)

// Service implements the session lifecycle: create, join, location updates
// and reads. Every mutation follows the same protocol: read the record, read
// its remaining TTL, mutate in memory, write back with the TTL captured
// before the mutation. The TTL read must happen before the mutation so a slow
// mutation cannot shorten the session.
//
// There is no cross-request isolation: two concurrent mutations of the same
// session race and the later write wins. That matches the product's tolerance
// and is covered as a documented property in the tests, not hidden behind a
// lock.
type Service struct {
	Store   storage.Storage
	Flights flights.Resolver // nil when no API key is configured
	AppURL  string           // base for join links
}

// NewService Constructor
func NewService(store storage.Storage, resolver flights.Resolver, appURL string) *Service {
	return &Service{Store: store, Flights: resolver, AppURL: appURL}
}

// CreateParams carries everything a creator may send. Either Duration or both
// flight codes must be present.
type CreateParams struct {
	CreatorName     string
	Airline         string
	PIN             string
	Location        *models.GeoPoint
	Duration        int // minutes
	ArrivalFlight   string
	DepartureFlight string
}

// CreateResult is returned to the creator.
type CreateResult struct {
	SessionID  string             `json:"sessionId"`
	UserID     string             `json:"userId"`
	ExpiresAt  int64              `json:"expiresAt"`
	JoinURL    string             `json:"joinUrl"`
	FlightInfo *models.FlightInfo `json:"flightInfo,omitempty"`
}

// Create validates the params, resolves the session window, and persists the
// new session with the creator as its first member. Exactly one store write.
//
// When a flight pair is given the window comes from the flight resolver; on
// resolver failure we fall back to the manual duration, and fail the whole
// operation only when neither is available.
func (s *Service) Create(ctx context.Context, p CreateParams) (*CreateResult, error) {
	if p.CreatorName == "" {
		return nil, ErrCreatorNameRequired
	}

	duration := p.Duration
	var (
		expiresAt  time.Time
		flightInfo *models.FlightInfo
	)

	if p.ArrivalFlight != "" && p.DepartureFlight != "" {
		if s.Flights == nil {
			// No flight data source configured counts as a lookup failure,
			// so a flight-pair-only request still gets the retry-with-
			// manual-duration signal.
			if p.Duration <= 0 {
				return nil, fmt.Errorf("%w: no flight data source configured", ErrFlightLookup)
			}
			log.Printf("no flight data source configured, using manual duration for %s/%s",
				p.ArrivalFlight, p.DepartureFlight)
		} else if result, err := s.Flights.CalculateLayover(ctx, p.ArrivalFlight, p.DepartureFlight); err == nil {
			duration = result.SessionDuration
			expiresAt = result.ExpiresAt
			flightInfo = &result.FlightInfo
		} else {
			log.Printf("flight lookup for %s/%s failed, falling back to manual duration: %v",
				p.ArrivalFlight, p.DepartureFlight, err)
			if p.Duration <= 0 {
				return nil, fmt.Errorf("%w: %w", ErrFlightLookup, err)
			}
		}
	}
	if duration <= 0 {
		return nil, ErrDurationRequired
	}

	now := time.Now()
	if expiresAt.IsZero() {
		expiresAt = now.Add(time.Duration(duration) * time.Minute)
	}

	sessionID, err := ids.NewSessionID()
	if err != nil {
		return nil, err
	}
	userID, err := ids.NewUserID()
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		Schema:     models.SessionSchemaVersion,
		SessionID:  sessionID,
		CreatedAt:  now.UnixMilli(),
		ExpiresAt:  expiresAt.UnixMilli(),
		Duration:   duration,
		CreatorID:  userID,
		PIN:        p.PIN,
		Location:   p.Location,
		FlightInfo: flightInfo,
		Members: []models.Member{{
			UserID:          userID,
			Name:            p.CreatorName,
			Airline:         p.Airline,
			JoinedAt:        now.UnixMilli(),
			LocationSharing: false,
		}},
	}

	ttl := time.Duration(duration) * time.Minute
	if err := s.Store.PutSession(ctx, sess, ttl); err != nil {
		return nil, err
	}

	log.Printf("Created session: id=%s creator=%s duration=%dm", sessionID, userID, duration)
	return &CreateResult{
		SessionID:  sessionID,
		UserID:     userID,
		ExpiresAt:  sess.ExpiresAt,
		JoinURL:    s.AppURL + "/join/" + sessionID,
		FlightInfo: flightInfo,
	}, nil
}

// JoinResult is returned to a joining member.
type JoinResult struct {
	UserID  string             `json:"userId"`
	Session models.SessionView `json:"session"`
}

// Join appends a new member to the session. The supplied PIN must match by
// plain string equality when the session has one set. The write reuses the
// remaining TTL captured before the mutation; joining never resets the
// session to its full duration.
func (s *Service) Join(ctx context.Context, sessionID, name, airline, pin string) (*JoinResult, error) {
	if sessionID == "" || name == "" {
		return nil, ErrNameRequired
	}

	sess, err := s.Store.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if sess.PIN != "" && sess.PIN != pin {
		return nil, ErrInvalidPIN
	}

	ttl, err := s.Store.SessionTTL(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	userID, err := ids.NewUserID()
	if err != nil {
		return nil, err
	}

	sess.Members = append(sess.Members, models.Member{
		UserID:          userID,
		Name:            name,
		Airline:         airline,
		JoinedAt:        models.NowMillis(),
		LocationSharing: false,
	})

	if err := s.Store.PutSession(ctx, sess, ttl); err != nil {
		return nil, err
	}

	log.Printf("Member joined session: session=%s user=%s members=%d", sessionID, userID, len(sess.Members))
	return &JoinResult{UserID: userID, Session: sess.View()}, nil
}

// UpdateLocation flips the member's sharing flag and, when coordinates are
// supplied, overwrites the member's last location with a fresh timestamp.
// Returns the updated member so callers can broadcast the new state.
func (s *Service) UpdateLocation(ctx context.Context, sessionID, userID string, location *models.GeoPoint, sharing bool) (*models.Member, error) {
	sess, err := s.Store.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	member := sess.FindMember(userID)
	if member == nil {
		return nil, ErrNotMember
	}

	ttl, err := s.Store.SessionTTL(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	member.LocationSharing = sharing
	if location != nil {
		member.LastLocation = &models.MemberLocation{
			Lat:       location.Lat,
			Lng:       location.Lng,
			UpdatedAt: models.NowMillis(),
		}
	}

	if err := s.Store.PutSession(ctx, sess, ttl); err != nil {
		return nil, err
	}

	updated := *member
	return &updated, nil
}

// Get returns the full session record plus its remaining TTL in seconds, for
// the client-side expiry countdown.
func (s *Service) Get(ctx context.Context, sessionID string) (*models.Session, int64, error) {
	sess, err := s.Store.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	ttl, err := s.Store.SessionTTL(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	return sess, int64(ttl / time.Second), nil
}
