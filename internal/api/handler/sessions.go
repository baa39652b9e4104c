package handler

import (
	"errors"
	"log"
	"net/http"

	"layoverlink/backend/internal/models"
	"layoverlink/backend/internal/session"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Duration        int              `json:"duration"`
	Location        *models.GeoPoint `json:"location"`
	CreatorName     string           `json:"creatorName"`
	Airline         string           `json:"airline"`
	PIN             string           `json:"pin"`
	ArrivalFlight   string           `json:"arrivalFlight"`
	DepartureFlight string           `json:"departureFlight"`
}

// CreateSession handles POST /api/sessions/create.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.Sessions.Create(c.Request.Context(), session.CreateParams{
		CreatorName:     req.CreatorName,
		Airline:         req.Airline,
		PIN:             req.PIN,
		Location:        req.Location,
		Duration:        req.Duration,
		ArrivalFlight:   req.ArrivalFlight,
		DepartureFlight: req.DepartureFlight,
	})
	switch {
	case errors.Is(err, session.ErrCreatorNameRequired), errors.Is(err, session.ErrDurationRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, session.ErrFlightLookup):
		// Distinguishable flag so the client can retry with a manual duration.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "flightLookupFailed": true})
		return
	case err != nil:
		log.Printf("Error creating session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type joinSessionRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Airline   string `json:"airline"`
	PIN       string `json:"pin"`
}

// JoinSession handles POST /api/sessions/join.
func (h *Handler) JoinSession(c *gin.Context) {
	var req joinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.Sessions.Join(c.Request.Context(), req.SessionID, req.Name, req.Airline, req.PIN)
	switch {
	case errors.Is(err, session.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
		return
	case errors.Is(err, session.ErrInvalidPIN):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid PIN"})
		return
	case err != nil:
		log.Printf("Error joining session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join session"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type sessionResponse struct {
	*models.Session
	RemainingTime int64 `json:"remainingTime"`
}

// GetSession handles GET /api/sessions/:sessionId. The response is the full
// record plus the remaining TTL in seconds for the expiry countdown.
func (h *Handler) GetSession(c *gin.Context) {
	sess, remaining, err := h.Sessions.Get(c.Request.Context(), c.Param("sessionId"))
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	case err != nil:
		log.Printf("Error fetching session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch session"})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Session: sess, RemainingTime: remaining})
}

type updateLocationRequest struct {
	UserID   string           `json:"userId"`
	Location *models.GeoPoint `json:"location"`
	Sharing  *bool            `json:"sharing"`
}

// UpdateLocation handles POST /api/sessions/:sessionId/location. Sharing
// defaults to true when omitted; the realtime path takes the flag as sent.
func (h *Handler) UpdateLocation(c *gin.Context) {
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.UserID == "" || req.Location == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and location required"})
		return
	}

	sharing := true
	if req.Sharing != nil {
		sharing = *req.Sharing
	}

	_, err := h.Sessions.UpdateLocation(c.Request.Context(), c.Param("sessionId"), req.UserID, req.Location, sharing)
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	case errors.Is(err, session.ErrNotMember):
		c.JSON(http.StatusForbidden, gin.H{"error": "User not in session"})
		return
	case err != nil:
		log.Printf("Error updating location: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
