package handler

import (
	"layoverlink/backend/internal/chathub"
	"layoverlink/backend/internal/profile"
	"layoverlink/backend/internal/session"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	Hub      *chathub.ManagerService
	Sessions *session.Service
	Profiles *profile.Service
}

func NewHandler(hub *chathub.ManagerService, sessions *session.Service, profiles *profile.Service) *Handler {
	return &Handler{Hub: hub, Sessions: sessions, Profiles: profiles}
}
