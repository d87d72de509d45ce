package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_OwnerForbiddenAdminRoutes(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "owner-a", "owner")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_OwnerAllowedInvoices(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "owner-a", "owner")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	var gotOwner string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner = OwnerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotOwner != "owner-a" {
		t.Fatalf("expected owner-a in context, got %q", gotOwner)
	}
}

func TestAuthMiddleware_ExemptHealthz(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy([]string{"/healthz"}, []string{"/api/v1/auth/"})
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/api/v1/auth/login"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, resp.Code)
		}
	}
}

func TestResolveOwnerScope(t *testing.T) {
	ownerCtx := WithIdentity(context.Background(), "owner-a", RoleOwner, "user-1")
	if got := ResolveOwnerScope(ownerCtx, "owner-b"); got != "owner-a" {
		t.Fatalf("owner must stay pinned to own id, got %q", got)
	}
	if got := ResolveOwnerScope(ownerCtx, ""); got != "owner-a" {
		t.Fatalf("owner without request must stay pinned, got %q", got)
	}

	adminCtx := WithIdentity(context.Background(), "admin-1", RoleAdmin, "user-2")
	if got := ResolveOwnerScope(adminCtx, "owner-b"); got != "owner-b" {
		t.Fatalf("admin must be able to name an owner, got %q", got)
	}
	if got := ResolveOwnerScope(adminCtx, ""); got != "" {
		t.Fatalf("admin without request must get system-wide scope, got %q", got)
	}
}

func TestIssueParseRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueJWT(secret, "owner-7", RoleAdmin, "user-7", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.OwnerID != "owner-7" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func mustToken(t *testing.T, secret []byte, ownerID, role string) string {
	t.Helper()
	claims := Claims{
		OwnerID: ownerID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
