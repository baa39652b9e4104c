package models

import "time"

// SessionSchemaVersion is bumped whenever the stored Session shape changes.
// Decoders reject records with an unknown version instead of guessing.
const SessionSchemaVersion = 1

// Session is the single mutable record for one layover session. It is stored
// as one JSON value whose TTL equals the remaining session lifetime, so the
// record disappears on its own at ExpiresAt.
type Session struct {
	// Schema is the serialization version of this record.
	Schema int `json:"schema"`
	// SessionID is the opaque identifier generated at creation.
	SessionID string `json:"sessionId"`
	// CreatedAt and ExpiresAt are unix-millisecond timestamps. ExpiresAt is
	// fixed at creation and never moves afterwards.
	CreatedAt int64 `json:"createdAt"`
	ExpiresAt int64 `json:"expiresAt"`
	// Duration is the session length in minutes.
	Duration int `json:"duration"`
	// CreatorID is the userId of the member who created the session.
	CreatorID string `json:"creatorId"`
	// PIN is the optional 4-character join secret. Empty means open join.
	// Stored in plaintext on purpose: it is a low-friction room lock, not a
	// credential (crew profiles hash their PIN separately).
	PIN string `json:"pin,omitempty"`
	// Location is the optional geographic anchor set at creation.
	Location *GeoPoint `json:"location,omitempty"`
	// FlightInfo holds derived layover metadata when the session was created
	// from a flight pair. Informational only.
	FlightInfo *FlightInfo `json:"flightInfo,omitempty"`
	// Members is the append-only roster, in join order. Members are never
	// removed for the lifetime of the session.
	Members []Member `json:"members"`
}

// Member is one participant of a session.
type Member struct {
	UserID          string          `json:"userId"`
	Name            string          `json:"name"`
	Airline         string          `json:"airline"`
	JoinedAt        int64           `json:"joinedAt"`
	LocationSharing bool            `json:"locationSharing"`
	LastLocation    *MemberLocation `json:"lastLocation,omitempty"`
}

// GeoPoint is a plain lat/lng pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MemberLocation is a member's last reported position. It is overwritten on
// every update, never appended.
type MemberLocation struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	UpdatedAt int64   `json:"updatedAt"`
}

// FlightInfo is the layover computed from an arrival/departure flight pair.
type FlightInfo struct {
	Arrival        FlightLeg `json:"arrival"`
	Departure      FlightLeg `json:"departure"`
	LayoverMinutes int       `json:"layoverMinutes"`
}

// FlightLeg describes one end of a layover.
type FlightLeg struct {
	Flight   string `json:"flight"`
	Airport  string `json:"airport"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

// SessionView is the trimmed session shape returned to joining members.
type SessionView struct {
	SessionID string    `json:"sessionId"`
	ExpiresAt int64     `json:"expiresAt"`
	Members   []Member  `json:"members"`
	Location  *GeoPoint `json:"location,omitempty"`
}

// FindMember returns a pointer into the roster so callers can mutate the
// member's locationSharing/lastLocation fields in place. Nil if the userId is
// not part of the session.
func (s *Session) FindMember(userID string) *Member {
	for i := range s.Members {
		if s.Members[i].UserID == userID {
			return &s.Members[i]
		}
	}
	return nil
}

// View returns the trimmed shape handed out on join.
func (s *Session) View() SessionView {
	return SessionView{
		SessionID: s.SessionID,
		ExpiresAt: s.ExpiresAt,
		Members:   s.Members,
		Location:  s.Location,
	}
}

// NowMillis is the timestamp format used throughout stored records.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
