package assistant

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentroll-cloud/internal/auth"
)

// Handler handles assistant APIs.
type Handler struct {
	service *Service
}

// NewHandler constructs a handler.
func NewHandler(service *Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("assistant handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles assistant routes under /api/v1/assistant.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ownerID := auth.OwnerIDFromContext(r.Context())
	switch r.URL.Path {
	case "/api/v1/assistant/chat":
		var req struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		answer, err := h.service.Chat(r.Context(), ownerID, req.Question)
		if err != nil {
			respondAssistantError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": answer})
	case "/api/v1/assistant/revenue-report":
		narrative, err := h.service.RevenueNarration(r.Context(), ownerID)
		if err != nil {
			respondAssistantError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"narrative": narrative})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// respondAssistantError passes gateway failures through with their
// original status code.
func respondAssistantError(w http.ResponseWriter, err error) {
	var gw *GatewayError
	if errors.As(err, &gw) {
		http.Error(w, gw.Message, gw.StatusCode)
		return
	}
	http.Error(w, err.Error(), http.StatusBadGateway)
}
