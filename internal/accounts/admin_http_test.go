package accounts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rentroll-cloud/internal/auth"
)

func TestAdminHandler_ListsOwnersOnly(t *testing.T) {
	users := newMemoryUsers()
	ctx := context.Background()
	now := time.Now().UTC()
	_ = users.Create(ctx, &User{UserID: "owner-1", Email: "a@example.com", Name: "A", Role: string(auth.RoleOwner), CreatedAt: now})
	_ = users.Create(ctx, &User{UserID: "owner-2", Email: "b@example.com", Name: "B", Role: string(auth.RoleOwner), CreatedAt: now})
	_ = users.Create(ctx, &User{UserID: "admin-1", Email: "root@example.com", Name: "Root", Role: string(auth.RoleAdmin), CreatedAt: now})

	handler, err := NewAdminHandler(users, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/owners", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var items []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 owners, got %d", len(items))
	}
	for _, item := range items {
		if item["user_id"] == "admin-1" {
			t.Fatalf("admin account listed as owner: %v", item)
		}
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password material leaked: %s", rec.Body.String())
	}
}

func TestAdminHandler_StatisticsWithoutReports(t *testing.T) {
	handler, err := NewAdminHandler(newMemoryUsers(), nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/statistics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
