package accounts

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rentroll-cloud/internal/auth"
)

const tokenTTL = 24 * time.Hour

// Service handles registration and login.
type Service struct {
	users     UserRepository
	jwtSecret []byte
	logger    *log.Logger
}

// NewService constructs a service.
func NewService(users UserRepository, jwtSecret []byte, logger *log.Logger) (*Service, error) {
	if users == nil {
		return nil, errors.New("accounts service: nil user repo")
	}
	if len(jwtSecret) == 0 {
		return nil, errors.New("accounts service: empty jwt secret")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{users: users, jwtSecret: jwtSecret, logger: logger}, nil
}

// Register creates an owner account and returns the user with a token.
func (s *Service) Register(ctx context.Context, email, name, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", errors.New("accounts service: invalid email")
	}
	if len(password) < 8 {
		return nil, "", errors.New("accounts service: password too short")
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := &User{
		UserID:       "owner-" + uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         string(auth.RoleOwner),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := auth.IssueJWT(s.jwtSecret, user.UserID, auth.Role(user.Role), user.Email, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Printf("user registered user_id=%s", user.UserID)
	return user, token, nil
}

// Login verifies credentials and returns the user with a token.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := auth.IssueJWT(s.jwtSecret, user.UserID, auth.Role(user.Role), user.Email, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
