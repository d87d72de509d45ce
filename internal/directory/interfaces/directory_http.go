package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"rentroll-cloud/internal/audit"
	"rentroll-cloud/internal/auth"
	directoryapp "rentroll-cloud/internal/directory/application"
	directory "rentroll-cloud/internal/directory/domain"
)

// DirectoryHandler handles house, room and contract APIs.
type DirectoryHandler struct {
	service      *directoryapp.DirectoryService
	ownerChecker auth.OwnerResourceChecker
	auditLogger  audit.Logger
}

// NewDirectoryHandler constructs a handler.
func NewDirectoryHandler(service *directoryapp.DirectoryService, ownerChecker auth.OwnerResourceChecker, auditLogger audit.Logger) (*DirectoryHandler, error) {
	if service == nil {
		return nil, errors.New("directory handler: nil service")
	}
	return &DirectoryHandler{service: service, ownerChecker: ownerChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP handles directory routes under /api/v1/houses, /api/v1/rooms
// and /api/v1/contracts.
func (h *DirectoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/houses":
		h.handleHouses(w, r)
	case strings.HasPrefix(path, "/api/v1/houses/"):
		h.handleHouseByID(w, r, strings.TrimPrefix(path, "/api/v1/houses/"))
	case path == "/api/v1/rooms":
		h.handleRooms(w, r)
	case strings.HasPrefix(path, "/api/v1/rooms/"):
		h.handleRoomByID(w, r, strings.TrimPrefix(path, "/api/v1/rooms/"))
	case path == "/api/v1/contracts":
		h.handleContracts(w, r)
	case strings.HasPrefix(path, "/api/v1/contracts/"):
		h.handleContractByID(w, r, strings.TrimPrefix(path, "/api/v1/contracts/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *DirectoryHandler) handleHouses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		house, err := h.service.CreateHouse(r.Context(), auth.OwnerIDFromContext(r.Context()), req.Name, req.Address)
		if err != nil {
			respondDirectoryError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(houseResponse(house))
		h.logAudit(r, "house", house.HouseID, "", "house.create", map[string]any{"name": house.Name})
	case http.MethodGet:
		houses, err := h.service.ListHouses(r.Context(), auth.ResolveOwnerScope(r.Context(), r.URL.Query().Get("owner_id")))
		if err != nil {
			respondDirectoryError(w, err)
			return
		}
		items := make([]map[string]any, 0, len(houses))
		for i := range houses {
			items = append(items, houseResponse(&houses[i]))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DirectoryHandler) handleHouseByID(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := h.ensureOwner(r, func(ownerID string) error {
		return h.ownerChecker.EnsureHouseOwner(r.Context(), ownerID, id)
	}); err != nil {
		respondOwnerError(w, err)
		return
	}
	if len(parts) == 2 && parts[1] == "rooms" && r.Method == http.MethodGet {
		rooms, err := h.service.ListRooms(r.Context(), id)
		if err != nil {
			respondDirectoryError(w, err)
			return
		}
		items := make([]map[string]any, 0, len(rooms))
		for i := range rooms {
			items = append(items, roomResponse(&rooms[i]))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
		return
	}
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		house, err := h.service.GetHouse(r.Context(), id)
		if err != nil {
			respondDirectoryError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(houseResponse(house))
	case http.MethodDelete:
		if err := h.service.DeleteHouse(r.Context(), id); err != nil {
			respondDirectoryError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		h.logAudit(r, "house", id, "", "house.delete", nil)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DirectoryHandler) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		HouseID string  `json:"house_id"`
		Name    string  `json:"name"`
		Floor   int     `json:"floor"`
		AreaM2  float64 `json:"area_m2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.ensureOwner(r, func(ownerID string) error {
		return h.ownerChecker.EnsureHouseOwner(r.Context(), ownerID, req.HouseID)
	}); err != nil {
		respondOwnerError(w, err)
		return
	}
	room, err := h.service.CreateRoom(r.Context(), directoryapp.CreateRoomInput{
		HouseID: req.HouseID,
		Name:    req.Name,
		Floor:   req.Floor,
		AreaM2:  req.AreaM2,
	})
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(roomResponse(room))
	h.logAudit(r, "room", room.RoomID, "", "room.create", map[string]any{"house_id": room.HouseID})
}

func (h *DirectoryHandler) handleRoomByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" || strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := rest
	if err := h.ensureOwner(r, func(ownerID string) error {
		return h.ownerChecker.EnsureRoomOwner(r.Context(), ownerID, id)
	}); err != nil {
		respondOwnerError(w, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		room, err := h.service.GetRoom(r.Context(), id)
		if err != nil {
			respondDirectoryError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(roomResponse(room))
	case http.MethodDelete:
		if err := h.service.DeleteRoom(r.Context(), id); err != nil {
			respondDirectoryError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		h.logAudit(r, "room", id, "", "room.delete", nil)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DirectoryHandler) handleContracts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			RoomID                string   `json:"room_id"`
			TenantName            string   `json:"tenant_name"`
			TenantPhone           string   `json:"tenant_phone"`
			StartDate             string   `json:"start_date"`
			EndDate               string   `json:"end_date"`
			MonthlyRent           float64  `json:"monthly_rent"`
			ElectricityPrice      *float64 `json:"electricity_price"`
			WaterPrice            *float64 `json:"water_price"`
			InternetPrice         *float64 `json:"internet_price"`
			GeneralPrice          *float64 `json:"general_price"`
			InitialElectricityNum float64  `json:"initial_electricity_num"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := h.ensureOwner(r, func(ownerID string) error {
			return h.ownerChecker.EnsureRoomOwner(r.Context(), ownerID, req.RoomID)
		}); err != nil {
			respondOwnerError(w, err)
			return
		}
		startDate, err := parseDate(req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
			return
		}
		var endDate time.Time
		if req.EndDate != "" {
			endDate, err = parseDate(req.EndDate)
			if err != nil {
				http.Error(w, "end_date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
				return
			}
		}
		contract, err := h.service.CreateContract(r.Context(), directoryapp.CreateContractInput{
			RoomID:                req.RoomID,
			TenantName:            req.TenantName,
			TenantPhone:           req.TenantPhone,
			StartDate:             startDate,
			EndDate:               endDate,
			MonthlyRent:           req.MonthlyRent,
			ElectricityPrice:      req.ElectricityPrice,
			WaterPrice:            req.WaterPrice,
			InternetPrice:         req.InternetPrice,
			GeneralPrice:          req.GeneralPrice,
			InitialElectricityNum: req.InitialElectricityNum,
		})
		if err != nil {
			respondDirectoryError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(contractResponse(contract))
		h.logAudit(r, "contract", contract.RRID, contract.RRID, "contract.create", map[string]any{
			"room_id": contract.RoomID,
		})
	case http.MethodGet:
		activeOnly := r.URL.Query().Get("active") == "true"
		contracts, err := h.service.ListContracts(r.Context(), auth.ResolveOwnerScope(r.Context(), r.URL.Query().Get("owner_id")), activeOnly)
		if err != nil {
			respondDirectoryError(w, err)
			return
		}
		items := make([]map[string]any, 0, len(contracts))
		for i := range contracts {
			items = append(items, contractResponse(&contracts[i]))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DirectoryHandler) handleContractByID(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := h.ensureOwner(r, func(ownerID string) error {
		return h.ownerChecker.EnsureContractOwner(r.Context(), ownerID, id)
	}); err != nil {
		respondOwnerError(w, err)
		return
	}
	if len(parts) == 2 && parts[1] == "terminate" && r.Method == http.MethodPost {
		contract, err := h.service.TerminateContract(r.Context(), id)
		if err != nil {
			respondDirectoryError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(contractResponse(contract))
		h.logAudit(r, "contract", id, id, "contract.terminate", nil)
		return
	}
	if len(parts) == 1 && r.Method == http.MethodGet {
		contract, err := h.service.GetContract(r.Context(), id)
		if err != nil {
			respondDirectoryError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(contractResponse(contract))
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *DirectoryHandler) ensureOwner(r *http.Request, check func(ownerID string) error) error {
	if h.ownerChecker == nil {
		return nil
	}
	if auth.RoleAtLeast(auth.RoleFromContext(r.Context()), auth.RoleAdmin) {
		return nil
	}
	return check(auth.OwnerIDFromContext(r.Context()))
}

func (h *DirectoryHandler) logAudit(r *http.Request, resourceType, resourceID, contractID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	ownerID := auth.OwnerIDFromContext(r.Context())
	if ownerID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		OwnerID:      ownerID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ContractID:   contractID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func houseResponse(h *directory.House) map[string]any {
	return map[string]any{
		"house_id":   h.HouseID,
		"owner_id":   h.OwnerID,
		"name":       h.Name,
		"address":    h.Address,
		"created_at": h.CreatedAt.Format(time.RFC3339),
	}
}

func roomResponse(r *directory.Room) map[string]any {
	return map[string]any{
		"room_id":     r.RoomID,
		"house_id":    r.HouseID,
		"name":        r.Name,
		"floor":       r.Floor,
		"area_m2":     r.AreaM2,
		"is_occupied": r.IsOccupied,
		"created_at":  r.CreatedAt.Format(time.RFC3339),
	}
}

func contractResponse(c *directory.Contract) map[string]any {
	resp := map[string]any{
		"rr_id":                   c.RRID,
		"room_id":                 c.RoomID,
		"tenant_name":             c.TenantName,
		"tenant_phone":            c.TenantPhone,
		"start_date":              c.StartDate.Format("2006-01-02"),
		"monthly_rent":            c.MonthlyRent,
		"electricity_price":       c.ElectricityPrice,
		"water_price":             c.WaterPrice,
		"internet_price":          c.InternetPrice,
		"general_price":           c.GeneralPrice,
		"initial_electricity_num": c.InitialElectricityNum,
		"is_active":               c.IsActive,
		"created_at":              c.CreatedAt.Format(time.RFC3339),
	}
	if !c.EndDate.IsZero() {
		resp["end_date"] = c.EndDate.Format("2006-01-02")
	}
	return resp
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func respondOwnerError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, auth.ErrOwnerMismatch) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, auth.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "owner check failed", http.StatusInternalServerError)
}

func respondDirectoryError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, directory.ErrHouseNotFound),
		errors.Is(err, directory.ErrRoomNotFound),
		errors.Is(err, directory.ErrContractNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, directory.ErrRoomOccupied):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
