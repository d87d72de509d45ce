package accounts

import (
	"context"
	"errors"
	"time"
)

// User is an account holder. An owner's user id doubles as the
// owner_id on houses.
type User struct {
	UserID       string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID string) (*User, error)
	ListOwners(ctx context.Context) ([]User, error)
}

var (
	// ErrEmailTaken is returned when registering a duplicate email.
	ErrEmailTaken = errors.New("accounts: email already registered")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("accounts: invalid credentials")
)
