package profile

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"layoverlink/backend/internal/config"
	"layoverlink/backend/internal/models"
	"layoverlink/backend/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPINAndNameRequired = errors.New("PIN and name required")
	ErrInvalidPINFormat   = errors.New("PIN must be 4 digits")
	ErrNotFound           = errors.New("profile not found")
	ErrInvalidPIN         = errors.New("invalid PIN")
)

var (
	pinPattern      = regexp.MustCompile(`^\d{4}$`)
	notAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)
)

// Service manages reusable crew profiles. Profiles live under a 90-day TTL
// and are guarded by a bcrypt-hashed 4-digit PIN - unlike the session PIN,
// which is a plaintext room lock.
type Service struct {
	Store storage.Storage
}

// NewService Constructor
func NewService(store storage.Storage) *Service {
	return &Service{Store: store}
}

// NormalizeID derives the storage ID from a display name: lowercased with
// everything but letters and digits stripped.
func NormalizeID(name string) string {
	return notAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
}

// SaveParams carries a profile create/update request.
type SaveParams struct {
	PIN                 string
	Name                string
	Airline             string
	Bio                 string
	Photo               string
	DietaryRestrictions string
	Interests           string
}

// Save creates or updates a profile. Updating an existing profile requires
// the PIN to match the stored hash first.
func (s *Service) Save(ctx context.Context, p SaveParams) (*models.Profile, error) {
	if p.PIN == "" || p.Name == "" {
		return nil, ErrPINAndNameRequired
	}
	if !pinPattern.MatchString(p.PIN) {
		return nil, ErrInvalidPINFormat
	}

	profileID := NormalizeID(p.Name)

	existing, err := s.Store.GetProfile(ctx, profileID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if bcrypt.CompareHashAndPassword([]byte(existing.HashedPIN), []byte(p.PIN)) != nil {
			return nil, ErrInvalidPIN
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.PIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	prof := &models.Profile{
		Schema:              models.SessionSchemaVersion,
		ProfileID:           profileID,
		Name:                p.Name,
		Airline:             p.Airline,
		Bio:                 p.Bio,
		Photo:               p.Photo,
		DietaryRestrictions: p.DietaryRestrictions,
		Interests:           p.Interests,
		HashedPIN:           string(hash),
		UpdatedAt:           models.NowMillis(),
	}

	if err := s.Store.PutProfile(ctx, prof, config.ProfileTTL); err != nil {
		return nil, err
	}

	public := prof.Public()
	return &public, nil
}

// Get returns the profile for name after verifying the PIN.
func (s *Service) Get(ctx context.Context, name, pin string) (*models.Profile, error) {
	if pin == "" || name == "" {
		return nil, ErrPINAndNameRequired
	}

	prof, err := s.Store.GetProfile(ctx, NormalizeID(name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(prof.HashedPIN), []byte(pin)) != nil {
		return nil, ErrInvalidPIN
	}

	public := prof.Public()
	return &public, nil
}

// Exists reports whether a profile is stored for name.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, ErrPINAndNameRequired
	}
	return s.Store.ProfileExists(ctx, NormalizeID(name))
}
