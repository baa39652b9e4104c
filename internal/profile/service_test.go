package profile_test

import (
	"context"
	"testing"
	"time"

	"layoverlink/backend/internal/config"
	"layoverlink/backend/internal/models"
	"layoverlink/backend/internal/profile"
	"layoverlink/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// profileStore is an in-memory Storage covering just the profile operations.
type profileStore struct {
	profiles map[string]*models.Profile
	ttls     map[string]time.Duration
}

func newProfileStore() *profileStore {
	return &profileStore{
		profiles: make(map[string]*models.Profile),
		ttls:     make(map[string]time.Duration),
	}
}

func (f *profileStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *profileStore) PutProfile(ctx context.Context, p *models.Profile, ttl time.Duration) error {
	f.profiles[p.ProfileID] = p
	f.ttls[p.ProfileID] = ttl
	return nil
}

func (f *profileStore) ProfileExists(ctx context.Context, id string) (bool, error) {
	_, ok := f.profiles[id]
	return ok, nil
}

func (f *profileStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return nil, storage.ErrNotFound
}

func (f *profileStore) PutSession(ctx context.Context, s *models.Session, ttl time.Duration) error {
	return nil
}

func (f *profileStore) SessionTTL(ctx context.Context, id string) (time.Duration, error) {
	return 0, storage.ErrNotFound
}

func (f *profileStore) AppendMessage(ctx context.Context, id string, msg models.Message) error {
	return nil
}

func (f *profileStore) RecentMessages(ctx context.Context, id string, limit int) ([]models.Message, error) {
	return nil, nil
}

var _ storage.Storage = (*profileStore)(nil)

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "anagarcia", profile.NormalizeID("Ana Garcia"))
	assert.Equal(t, "ohare22", profile.NormalizeID("  O'Hare-22!  "))
}

func TestSave_NewProfile(t *testing.T) {
	store := newProfileStore()
	svc := profile.NewService(store)

	got, err := svc.Save(context.Background(), profile.SaveParams{
		PIN:      "1234",
		Name:     "Ana Garcia",
		Airline:  "UA",
		Bio:      "SFO based",
		Interests: "coffee",
	})
	require.NoError(t, err)

	// The response never carries the hash.
	assert.Empty(t, got.HashedPIN)
	assert.Equal(t, "anagarcia", got.ProfileID)

	stored := store.profiles["anagarcia"]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPIN), []byte("1234")))
	assert.Equal(t, config.ProfileTTL, store.ttls["anagarcia"])
}

func TestSave_Validation(t *testing.T) {
	svc := profile.NewService(newProfileStore())

	_, err := svc.Save(context.Background(), profile.SaveParams{Name: "Ana"})
	assert.ErrorIs(t, err, profile.ErrPINAndNameRequired)

	_, err = svc.Save(context.Background(), profile.SaveParams{PIN: "12ab", Name: "Ana"})
	assert.ErrorIs(t, err, profile.ErrInvalidPINFormat)

	_, err = svc.Save(context.Background(), profile.SaveParams{PIN: "12345", Name: "Ana"})
	assert.ErrorIs(t, err, profile.ErrInvalidPINFormat)
}

func TestSave_UpdateRequiresMatchingPIN(t *testing.T) {
	store := newProfileStore()
	svc := profile.NewService(store)

	_, err := svc.Save(context.Background(), profile.SaveParams{PIN: "1234", Name: "Ana"})
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), profile.SaveParams{PIN: "9999", Name: "Ana", Bio: "hijacked"})
	assert.ErrorIs(t, err, profile.ErrInvalidPIN)

	updated, err := svc.Save(context.Background(), profile.SaveParams{PIN: "1234", Name: "Ana", Bio: "updated"})
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Bio)
}

func TestGet(t *testing.T) {
	store := newProfileStore()
	svc := profile.NewService(store)

	_, err := svc.Save(context.Background(), profile.SaveParams{PIN: "1234", Name: "Ana", Airline: "UA"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "Ana", "1234")
	require.NoError(t, err)
	assert.Equal(t, "UA", got.Airline)
	assert.Empty(t, got.HashedPIN)

	_, err = svc.Get(context.Background(), "Ana", "0000")
	assert.ErrorIs(t, err, profile.ErrInvalidPIN)

	_, err = svc.Get(context.Background(), "Nobody", "1234")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestExists(t *testing.T) {
	store := newProfileStore()
	svc := profile.NewService(store)

	exists, err := svc.Exists(context.Background(), "Ana")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.Save(context.Background(), profile.SaveParams{PIN: "1234", Name: "Ana"})
	require.NoError(t, err)

	exists, err = svc.Exists(context.Background(), "ana")
	require.NoError(t, err)
	assert.True(t, exists)
}
