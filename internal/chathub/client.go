package chathub

import "layoverlink/backend/internal/models"

// Client is the interface for one live connection. It abstracts the
// underlying transport so the hub can manage connections uniformly and tests
// can substitute in-memory clients.
type Client interface {
	// ConnID returns the unique identifier of this connection.
	ConnID() string

	// Identity returns the (sessionID, userID) pair attached to this
	// connection after a successful join_session, empty strings before.
	Identity() (sessionID, userID string)
	// SetIdentity attaches an existing member's identity to the connection.
	SetIdentity(sessionID, userID string)

	// GetSendChannel returns the channel the hub writes outbound events to.
	GetSendChannel() chan<- models.Envelope

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and channels.
	Close()
}
