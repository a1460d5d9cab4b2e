package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProviderTracker identifies the time-tracking SaaS the portal proxies.
const ProviderTracker = "tracker"

// ProviderToken holds the OAuth token pair a user obtained from an external
// provider, plus the absolute expiry computed when the pair was issued.
type ProviderToken struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Provider     string     `json:"provider"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ProviderTokenRepository persists provider tokens keyed by (user, provider).
// Upsert must write access token, refresh token and expiry in a single
// statement: a partially persisted pair leaves a stale refresh token next to
// a newer access token and breaks every refresh after that.
type ProviderTokenRepository interface {
	Upsert(token *ProviderToken) error
	GetByUserID(userID uuid.UUID, provider string) (*ProviderToken, error)
	DeleteByUserID(userID uuid.UUID, provider string) error
}
