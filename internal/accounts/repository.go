package accounts

import (
	"context"
	"database/sql"
	"errors"
)

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a user.
func (r *Repository) Create(ctx context.Context, user *User) error {
	if r == nil || r.db == nil {
		return errors.New("accounts repo: nil db")
	}
	if user == nil {
		return errors.New("accounts repo: nil user")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (user_id, email, name, password_hash, role, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
		user.UserID, user.Email, user.Name, user.PasswordHash, user.Role, user.CreatedAt,
	)
	return err
}

// GetByEmail returns one user by email, or nil when absent.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("accounts repo: nil db")
	}
	return r.getOne(ctx, `
SELECT user_id, email, name, password_hash, role, created_at
FROM users
WHERE email = $1
LIMIT 1`, email)
}

// GetByID returns one user by id, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, userID string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("accounts repo: nil db")
	}
	return r.getOne(ctx, `
SELECT user_id, email, name, password_hash, role, created_at
FROM users
WHERE user_id = $1
LIMIT 1`, userID)
}

// ListOwners returns all owner accounts, oldest first.
func (r *Repository) ListOwners(ctx context.Context) ([]User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("accounts repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, email, name, password_hash, role, created_at
FROM users
WHERE role = 'owner'
ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.UserID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.CreatedAt = u.CreatedAt.UTC()
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.UserID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
