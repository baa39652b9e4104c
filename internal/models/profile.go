package models

// Profile is a reusable crew profile, stored independently of any session
// under a 90-day TTL. Unlike the session PIN, the profile PIN is bcrypt-hashed
// before storage.
type Profile struct {
	Schema              int    `json:"schema"`
	ProfileID           string `json:"profileId"`
	Name                string `json:"name"`
	Airline             string `json:"airline"`
	Bio                 string `json:"bio"`
	Photo               string `json:"photo,omitempty"`
	DietaryRestrictions string `json:"dietaryRestrictions"`
	Interests           string `json:"interests"`
	HashedPIN           string `json:"hashedPin"`
	UpdatedAt           int64  `json:"updatedAt"`
}

// Public returns a copy of the profile with the PIN hash stripped, safe to
// hand back to clients.
func (p Profile) Public() Profile {
	p.HashedPIN = ""
	return p
}
