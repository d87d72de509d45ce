package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentroll-cloud/internal/audit"
	"rentroll-cloud/internal/auth"
	billingapp "rentroll-cloud/internal/billing/application"
	billing "rentroll-cloud/internal/billing/domain"
	"rentroll-cloud/internal/observability/metrics"
)

// InvoiceHandler handles invoice APIs.
type InvoiceHandler struct {
	service      *billingapp.InvoiceService
	ownerChecker auth.OwnerResourceChecker
	auditLogger  audit.Logger
}

// NewInvoiceHandler constructs a handler.
func NewInvoiceHandler(service *billingapp.InvoiceService, ownerChecker auth.OwnerResourceChecker, auditLogger audit.Logger) (*InvoiceHandler, error) {
	if service == nil {
		return nil, errors.New("invoice handler: nil service")
	}
	return &InvoiceHandler{service: service, ownerChecker: ownerChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP handles invoice routes under /api/v1/invoices.
func (h *InvoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/invoices" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
			return
		case http.MethodGet:
			h.handleList(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if path == "/api/v1/invoices/monthly" && r.Method == http.MethodPost {
		h.handleMonthly(w, r)
		return
	}
	if path == "/api/v1/invoices/export.csv" && r.Method == http.MethodGet {
		h.handleExportCSV(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/v1/invoices/") {
		rest := strings.TrimPrefix(path, "/api/v1/invoices/")
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

type invoicePayload struct {
	RRID                  string   `json:"rr_id"`
	Price                 *float64 `json:"price"`
	WaterPrice            *float64 `json:"water_price"`
	InternetPrice         *float64 `json:"internet_price"`
	GeneralPrice          *float64 `json:"general_price"`
	CurrentElectricityNum *float64 `json:"current_electricity_num"`
	DueDate               string   `json:"due_date"`
}

func (h *InvoiceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req invoicePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.ensureContractOwner(r, req.RRID); err != nil {
		respondOwnerError(w, err)
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		http.Error(w, "due_date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
		return
	}
	inv, err := h.service.Create(r.Context(), billingapp.CreateInvoiceInput{
		RRID:                  req.RRID,
		Price:                 req.Price,
		WaterPrice:            req.WaterPrice,
		InternetPrice:         req.InternetPrice,
		GeneralPrice:          req.GeneralPrice,
		CurrentElectricityNum: req.CurrentElectricityNum,
		DueDate:               dueDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(invoiceResponse(inv))
	h.logAudit(r, inv, "invoice.create", map[string]any{
		"rr_id":    inv.RRID,
		"due_date": inv.DueDate.Format("2006-01-02"),
	})
}

func (h *InvoiceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if rrID := q.Get("rr_id"); rrID != "" {
		if err := h.ensureContractOwner(r, rrID); err != nil {
			respondOwnerError(w, err)
			return
		}
		list, err := h.service.ListByContract(r.Context(), rrID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		writeInvoiceList(w, list)
		return
	}
	ownerID := auth.ResolveOwnerScope(r.Context(), q.Get("owner_id"))
	onlyPending := q.Get("pending") == "true"
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	list, err := h.service.ListByOwner(r.Context(), ownerID, onlyPending, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeInvoiceList(w, list)
}

func (h *InvoiceHandler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DueDate string `json:"due_date"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	var dueDate time.Time
	if req.DueDate != "" {
		var err error
		dueDate, err = parseDate(req.DueDate)
		if err != nil {
			http.Error(w, "due_date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
			return
		}
	}
	ownerID := auth.ResolveOwnerScope(r.Context(), r.URL.Query().Get("owner_id"))
	drafts, err := h.service.GenerateMonthlyDrafts(r.Context(), ownerID, dueDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"created": len(drafts),
	})
	h.logAudit(r, nil, "invoice.monthly_drafts", map[string]any{
		"count": len(drafts),
	})
}

func (h *InvoiceHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if err := h.ensureInvoiceOwner(r, id); err != nil {
		respondOwnerError(w, err)
		return
	}
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
			return
		case http.MethodPut:
			h.handleUpdate(w, r, id)
			return
		case http.MethodDelete:
			h.handleDelete(w, r, id)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "pay":
			if r.Method == http.MethodPost {
				h.handlePay(w, r, id)
				return
			}
		case "readings":
			if r.Method == http.MethodGet {
				h.handleReadings(w, r, id)
				return
			}
		case "export.pdf":
			if r.Method == http.MethodGet {
				h.handleExportPDF(w, r, id)
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *InvoiceHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(invoiceResponse(inv))
}

func (h *InvoiceHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req invoicePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := parseDate(req.DueDate)
		if err != nil {
			http.Error(w, "due_date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
			return
		}
		dueDate = &parsed
	}
	inv, err := h.service.Update(r.Context(), id, billingapp.UpdateInvoiceInput{
		Price:                 req.Price,
		WaterPrice:            req.WaterPrice,
		InternetPrice:         req.InternetPrice,
		GeneralPrice:          req.GeneralPrice,
		CurrentElectricityNum: req.CurrentElectricityNum,
		DueDate:               dueDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(invoiceResponse(inv))
	h.logAudit(r, inv, "invoice.update", map[string]any{
		"reading_changed": req.CurrentElectricityNum != nil,
	})
}

func (h *InvoiceHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, &billing.Invoice{InvoiceID: id}, "invoice.delete", nil)
}

func (h *InvoiceHandler) handlePay(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		PaymentDate string `json:"payment_date"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	var paymentDate time.Time
	if req.PaymentDate != "" {
		var err error
		paymentDate, err = parseDate(req.PaymentDate)
		if err != nil {
			http.Error(w, "payment_date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
			return
		}
	}
	inv, err := h.service.MarkPaid(r.Context(), id, paymentDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(invoiceResponse(inv))
	h.logAudit(r, inv, "invoice.pay", map[string]any{
		"payment_date": inv.PaymentDate.Format("2006-01-02"),
	})
}

func (h *InvoiceHandler) handleReadings(w http.ResponseWriter, r *http.Request, id string) {
	readings, err := h.service.ReadingsForEdit(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"previous_electricity_num": readings.Previous,
		"current_electricity_num":  readings.Current,
		"unverified":               readings.Unverified,
	})
}

func (h *InvoiceHandler) handleExportPDF(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", result, time.Since(start))
	}()

	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	readings, err := h.service.ReadingsForEdit(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	data, err := BuildInvoicePDF(inv, readings)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, inv, "invoice.export", map[string]any{"format": "pdf"})
}

func (h *InvoiceHandler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("csv", result, time.Since(start))
	}()

	ownerID := auth.ResolveOwnerScope(r.Context(), r.URL.Query().Get("owner_id"))
	onlyPending := r.URL.Query().Get("pending") == "true"
	list, err := h.service.ListByOwner(r.Context(), ownerID, onlyPending, 10000, 0)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.csv"`)
	if err := WriteInvoicesCSV(w, list); err != nil {
		result = metrics.ResultError
		return
	}
	h.logAudit(r, nil, "invoice.export", map[string]any{"format": "csv", "count": len(list)})
}

func (h *InvoiceHandler) ensureContractOwner(r *http.Request, rrID string) error {
	if h.ownerChecker == nil || rrID == "" {
		return nil
	}
	if auth.RoleAtLeast(auth.RoleFromContext(r.Context()), auth.RoleAdmin) {
		return nil
	}
	return h.ownerChecker.EnsureContractOwner(r.Context(), auth.OwnerIDFromContext(r.Context()), rrID)
}

func (h *InvoiceHandler) ensureInvoiceOwner(r *http.Request, invoiceID string) error {
	if h.ownerChecker == nil || invoiceID == "" {
		return nil
	}
	if auth.RoleAtLeast(auth.RoleFromContext(r.Context()), auth.RoleAdmin) {
		return nil
	}
	return h.ownerChecker.EnsureInvoiceOwner(r.Context(), auth.OwnerIDFromContext(r.Context()), invoiceID)
}

func (h *InvoiceHandler) logAudit(r *http.Request, inv *billing.Invoice, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	ownerID := auth.OwnerIDFromContext(r.Context())
	if ownerID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	entry := audit.Entry{
		OwnerID:      ownerID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "invoice",
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if inv != nil {
		entry.ResourceID = inv.InvoiceID
		entry.ContractID = inv.RRID
	}
	_ = h.auditLogger.Log(r.Context(), entry)
}

func invoiceResponse(inv *billing.Invoice) map[string]any {
	resp := map[string]any{
		"invoice_id":        inv.InvoiceID,
		"rr_id":             inv.RRID,
		"price":             inv.Price,
		"water_price":       inv.WaterPrice,
		"internet_price":    inv.InternetPrice,
		"general_price":     inv.GeneralPrice,
		"electricity_price": inv.ElectricityPrice,
		"electricity_num":   inv.ElectricityNum,
		"total":             billing.Total(*inv),
		"due_date":          inv.DueDate.Format("2006-01-02"),
		"is_paid":           inv.IsPaid,
		"created_at":        inv.CreatedAt.Format(time.RFC3339),
	}
	if !inv.PaymentDate.IsZero() {
		resp["payment_date"] = inv.PaymentDate.Format("2006-01-02")
	}
	return resp
}

func writeInvoiceList(w http.ResponseWriter, list []billing.Invoice) {
	items := make([]map[string]any, 0, len(list))
	for i := range list {
		items = append(items, invoiceResponse(&list[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
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

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, auth.ErrOwnerMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, billing.ErrInvoiceNotFound),
		errors.Is(err, billing.ErrContractNotFound),
		errors.Is(err, auth.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, billing.ErrReadingBelowPrevious):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
