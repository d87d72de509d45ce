package audit

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.9:4431"
	if got := ClientIP(req); got != "10.0.0.9" {
		t.Fatalf("expected peer host, got %q", got)
	}

	req.Header.Set("X-Real-IP", "203.0.113.7")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", " 198.51.100.2 , 10.0.0.1")
	if got := ClientIP(req); got != "198.51.100.2" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}

	if got := ClientIP(nil); got != "" {
		t.Fatalf("expected empty for nil request, got %q", got)
	}
}
