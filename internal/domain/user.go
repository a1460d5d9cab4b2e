package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name,omitempty"`
	Role         string     `json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UserRepository interface {
	Create(user *User) error
	GetByID(id uuid.UUID) (*User, error)
	GetByEmail(email string) (*User, error)
	Update(user *User) error
	UpdateRole(id uuid.UUID, role string) error
	UpdateLastLogin(id uuid.UUID) error
	Delete(id uuid.UUID) error
	ListAll(limit, offset int) ([]*User, int, error)
}
