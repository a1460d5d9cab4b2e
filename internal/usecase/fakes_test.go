package usecase

import (
	"sync"

	"github.com/google/uuid"

	"github.com/consultport/backend/internal/domain"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = domain.RoleConsultant
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdateRole(id uuid.UUID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(id uuid.UUID) error { return nil }

func (r *fakeUserRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ListAll(limit, offset int) ([]*domain.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []*domain.User
	for _, u := range r.users {
		clone := *u
		users = append(users, &clone)
	}
	return users, len(r.users), nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	clone := *token
	r.tokens[token.TokenHash] = &clone
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[tokenHash]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeRefreshTokenRepo) DeleteByUserID(userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, hash)
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByTokenHash(tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, tokenHash)
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired() error { return nil }

type providerKey struct {
	userID   uuid.UUID
	provider string
}

type fakeProviderTokenRepo struct {
	mu     sync.Mutex
	tokens map[providerKey]*domain.ProviderToken
}

func newFakeProviderTokenRepo() *fakeProviderTokenRepo {
	return &fakeProviderTokenRepo{tokens: make(map[providerKey]*domain.ProviderToken)}
}

func (r *fakeProviderTokenRepo) Upsert(token *domain.ProviderToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	clone := *token
	r.tokens[providerKey{token.UserID, token.Provider}] = &clone
	return nil
}

func (r *fakeProviderTokenRepo) GetByUserID(userID uuid.UUID, provider string) (*domain.ProviderToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[providerKey{userID, provider}]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeProviderTokenRepo) DeleteByUserID(userID uuid.UUID, provider string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, providerKey{userID, provider})
	return nil
}
