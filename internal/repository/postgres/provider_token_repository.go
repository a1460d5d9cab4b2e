package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/consultport/backend/internal/domain"
)

type ProviderTokenRepository struct {
	db *pgxpool.Pool
}

func NewProviderTokenRepository(db *pgxpool.Pool) *ProviderTokenRepository {
	return &ProviderTokenRepository{db: db}
}

// Upsert writes the full token pair and its expiry in a single statement.
// Access token, refresh token and expiry must never be persisted separately:
// a mismatched pair would make later refreshes replay a stale refresh token.
func (r *ProviderTokenRepository) Upsert(token *domain.ProviderToken) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO provider_tokens (id, user_id, provider, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	now := time.Now()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	token.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Provider,
		token.AccessToken,
		token.RefreshToken,
		token.ExpiresAt,
		token.CreatedAt,
		token.UpdatedAt,
	)
	return err
}

func (r *ProviderTokenRepository) GetByUserID(userID uuid.UUID, provider string) (*domain.ProviderToken, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, provider, access_token, refresh_token, expires_at, created_at, updated_at
		FROM provider_tokens WHERE user_id = $1 AND provider = $2
	`

	token := &domain.ProviderToken{}
	err := r.db.QueryRow(ctx, query, userID, provider).Scan(
		&token.ID,
		&token.UserID,
		&token.Provider,
		&token.AccessToken,
		&token.RefreshToken,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *ProviderTokenRepository) DeleteByUserID(userID uuid.UUID, provider string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `DELETE FROM provider_tokens WHERE user_id = $1 AND provider = $2`
	_, err := r.db.Exec(ctx, query, userID, provider)
	return err
}
