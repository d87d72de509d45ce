package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rentroll-cloud/internal/auth"
	"rentroll-cloud/internal/observability/metrics"
	reportapp "rentroll-cloud/internal/reports/application"
)

// ReportHandler handles reporting APIs.
type ReportHandler struct {
	service *reportapp.ReportService
}

// NewReportHandler constructs a handler.
func NewReportHandler(service *reportapp.ReportService) (*ReportHandler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	return &ReportHandler{service: service}, nil
}

// ServeHTTP handles report routes under /api/v1/reports.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ownerID := auth.ResolveOwnerScope(r.Context(), r.URL.Query().Get("owner_id"))
	switch r.URL.Path {
	case "/api/v1/reports/revenue-stats":
		stats, err := h.service.RevenueStats(r.Context(), ownerID)
		respondReport(w, stats, err)
	case "/api/v1/reports/revenue":
		months, _ := strconv.Atoi(r.URL.Query().Get("months"))
		list, err := h.service.RevenueByMonth(r.Context(), ownerID, months)
		respondReport(w, list, err)
	case "/api/v1/reports/occupancy":
		list, err := h.service.OccupancyByHouse(r.Context(), ownerID)
		respondReport(w, list, err)
	case "/api/v1/reports/tenants":
		list, err := h.service.TenantListing(r.Context(), ownerID)
		respondReport(w, list, err)
	case "/api/v1/reports/overview":
		overview, err := h.service.Overview(r.Context(), ownerID)
		respondReport(w, overview, err)
	case "/api/v1/reports/export.xlsx":
		h.handleExportXLSX(w, r, ownerID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ReportHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request, ownerID string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	stats, err := h.service.RevenueStats(r.Context(), ownerID)
	if err != nil {
		result = metrics.ResultError
		respondReportError(w, err)
		return
	}
	revenue, err := h.service.RevenueByMonth(r.Context(), ownerID, 12)
	if err != nil {
		result = metrics.ResultError
		respondReportError(w, err)
		return
	}
	occupancy, err := h.service.OccupancyByHouse(r.Context(), ownerID)
	if err != nil {
		result = metrics.ResultError
		respondReportError(w, err)
		return
	}
	tenants, err := h.service.TenantListing(r.Context(), ownerID)
	if err != nil {
		result = metrics.ResultError
		respondReportError(w, err)
		return
	}
	data, err := BuildReportXLSX(stats, revenue, occupancy, tenants)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func respondReport(w http.ResponseWriter, payload any, err error) {
	if err != nil {
		respondReportError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func respondReportError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}
