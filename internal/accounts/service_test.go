package accounts

import (
	"context"
	"errors"
	"log"
	"os"
	"sort"
	"testing"

	"rentroll-cloud/internal/auth"
)

type memoryUsers struct {
	byEmail map[string]*User
	byID    map[string]*User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: make(map[string]*User), byID: make(map[string]*User)}
}

func (m *memoryUsers) Create(_ context.Context, user *User) error {
	u := *user
	m.byEmail[u.Email] = &u
	m.byID[u.UserID] = &u
	return nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	return m.byEmail[email], nil
}

func (m *memoryUsers) GetByID(_ context.Context, userID string) (*User, error) {
	return m.byID[userID], nil
}

func (m *memoryUsers) ListOwners(_ context.Context) ([]User, error) {
	var result []User
	for _, u := range m.byID {
		if u.Role == string(auth.RoleOwner) {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(newMemoryUsers(), []byte("test-secret"), log.New(os.Stderr, "", 0))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Owner@Example.com", "Owner", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "owner@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Role != string(auth.RoleOwner) {
		t.Fatalf("expected owner role, got %q", user.Role)
	}
	if user.PasswordHash == "password123" {
		t.Fatalf("password stored in clear")
	}

	claims, err := auth.ParseJWT(token, []byte("test-secret"))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.OwnerID != user.UserID {
		t.Fatalf("token owner mismatch: %q vs %q", claims.OwnerID, user.UserID)
	}

	logged, _, err := svc.Login(ctx, "owner@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.UserID != user.UserID {
		t.Fatalf("login returned wrong user")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "owner@example.com", "Owner", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := svc.Login(ctx, "owner@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "owner@example.com", "Owner", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := svc.Register(ctx, "owner@example.com", "Other", "password456")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestService(t)
	if _, _, err := svc.Register(context.Background(), "owner@example.com", "Owner", "short"); err == nil {
		t.Fatalf("expected error for short password")
	}
}
