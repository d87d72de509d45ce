package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	reportapp "rentroll-cloud/internal/reports/application"
)

// AdminHandler handles admin routes under /api/v1/admin. The route
// policy restricts these paths to the admin role before they are
// reached.
type AdminHandler struct {
	users   UserRepository
	reports *reportapp.ReportService
}

// NewAdminHandler constructs a handler. The report service may be nil;
// the statistics route then responds 503.
func NewAdminHandler(users UserRepository, reports *reportapp.ReportService) (*AdminHandler, error) {
	if users == nil {
		return nil, errors.New("admin handler: nil user repository")
	}
	return &AdminHandler{users: users, reports: reports}, nil
}

// ServeHTTP handles admin routes.
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/admin/owners":
		h.handleOwners(w, r)
	case "/api/v1/admin/statistics":
		h.handleStatistics(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AdminHandler) handleOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.users.ListOwners(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	items := make([]map[string]any, 0, len(owners))
	for i := range owners {
		u := &owners[i]
		items = append(items, map[string]any{
			"user_id":    u.UserID,
			"email":      u.Email,
			"name":       u.Name,
			"created_at": u.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (h *AdminHandler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		http.Error(w, "reports unavailable", http.StatusServiceUnavailable)
		return
	}
	owners, err := h.users.ListOwners(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	overview, err := h.reports.Overview(r.Context(), "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"owners":   len(owners),
		"overview": overview,
	})
}
