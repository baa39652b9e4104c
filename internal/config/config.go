package config

import "time"

const (
	// Sessions
	MinSessionMinutes     = 30
	DepartureSafetyMargin = 30 * time.Minute

	// Chat
	MessageRateLimit    = 10
	MessageRateWindow   = time.Minute
	MaxMessageLength    = 500
	MaxImageBytes       = 300000
	DefaultHistoryLimit = 100

	// Profiles
	ProfileTTL = 90 * 24 * time.Hour

	DefaultAppURL = "http://localhost:3000"
)
