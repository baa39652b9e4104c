package handler

import (
	"errors"
	"log"
	"net/http"

	"layoverlink/backend/internal/profile"

	"github.com/gin-gonic/gin"
)

type saveProfileRequest struct {
	PIN                 string `json:"pin"`
	Name                string `json:"name"`
	Airline             string `json:"airline"`
	Bio                 string `json:"bio"`
	Photo               string `json:"photo"`
	DietaryRestrictions string `json:"dietaryRestrictions"`
	Interests           string `json:"interests"`
}

// SaveProfile handles POST /api/profiles/save.
func (h *Handler) SaveProfile(c *gin.Context) {
	var req saveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	prof, err := h.Profiles.Save(c.Request.Context(), profile.SaveParams{
		PIN:                 req.PIN,
		Name:                req.Name,
		Airline:             req.Airline,
		Bio:                 req.Bio,
		Photo:               req.Photo,
		DietaryRestrictions: req.DietaryRestrictions,
		Interests:           req.Interests,
	})
	switch {
	case errors.Is(err, profile.ErrPINAndNameRequired), errors.Is(err, profile.ErrInvalidPINFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, profile.ErrInvalidPIN):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid PIN for this profile"})
		return
	case err != nil:
		log.Printf("Error saving profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, prof)
}

type getProfileRequest struct {
	PIN  string `json:"pin"`
	Name string `json:"name"`
}

// GetProfile handles POST /api/profiles/get. POST so the PIN stays out of
// URLs and access logs.
func (h *Handler) GetProfile(c *gin.Context) {
	var req getProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	prof, err := h.Profiles.Get(c.Request.Context(), req.Name, req.PIN)
	switch {
	case errors.Is(err, profile.ErrPINAndNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, profile.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	case errors.Is(err, profile.ErrInvalidPIN):
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid PIN"})
		return
	case err != nil:
		log.Printf("Error getting profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, prof)
}

type profileExistsRequest struct {
	Name string `json:"name"`
}

// ProfileExists handles POST /api/profiles/exists.
func (h *Handler) ProfileExists(c *gin.Context) {
	var req profileExistsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name required"})
		return
	}

	exists, err := h.Profiles.Exists(c.Request.Context(), req.Name)
	if err != nil {
		log.Printf("Error checking profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}
