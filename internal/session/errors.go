package session

import "errors"

// Error taxonomy for session operations. Handlers and the realtime hub map
// these onto their own failure signaling (HTTP status codes, error events).
var (
	ErrCreatorNameRequired = errors.New("duration and creator name required")
	ErrDurationRequired    = errors.New("duration or flight pair required")
	ErrNameRequired        = errors.New("session ID and name required")
	ErrLocationRequired    = errors.New("user ID and location required")
	ErrNotFound            = errors.New("session not found or expired")
	ErrInvalidPIN          = errors.New("invalid PIN")
	ErrNotMember           = errors.New("user not in session")
	ErrFlightLookup        = errors.New("flight lookup failed")
)
