package application

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"rentroll-cloud/internal/observability/metrics"
)

// RevenueStats summarizes invoice revenue for an owner.
type RevenueStats struct {
	TotalRevenue          float64 `json:"total_revenue"`
	PaidCount             int     `json:"paid_count"`
	PendingCount          int     `json:"pending_count"`
	PendingAmount         float64 `json:"pending_amount"`
	AverageMonthlyRevenue float64 `json:"average_monthly_revenue"`
}

// MonthRevenue is one month's collected revenue.
type MonthRevenue struct {
	Month        string  `json:"month"`
	Revenue      float64 `json:"revenue"`
	InvoiceCount int     `json:"invoice_count"`
}

// HouseOccupancy is one house's room occupancy.
type HouseOccupancy struct {
	HouseID       string  `json:"house_id"`
	HouseName     string  `json:"house_name"`
	TotalRooms    int     `json:"total_rooms"`
	OccupiedRooms int     `json:"occupied_rooms"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// TenantRow is one active tenancy.
type TenantRow struct {
	RRID        string  `json:"rr_id"`
	TenantName  string  `json:"tenant_name"`
	TenantPhone string  `json:"tenant_phone"`
	RoomName    string  `json:"room_name"`
	HouseName   string  `json:"house_name"`
	MonthlyRent float64 `json:"monthly_rent"`
	StartDate   string  `json:"start_date"`
}

// SystemOverview is the owner's portfolio snapshot.
type SystemOverview struct {
	Houses              int     `json:"houses"`
	Rooms               int     `json:"rooms"`
	OccupiedRooms       int     `json:"occupied_rooms"`
	OccupancyRate       float64 `json:"occupancy_rate"`
	ActiveContracts     int     `json:"active_contracts"`
	PendingInvoices     int     `json:"pending_invoices"`
	CurrentMonthRevenue float64 `json:"current_month_revenue"`
}

// InvoiceTotalExpr computes an invoice's grand total in SQL, mirroring
// the domain Total. Every SQL total in the repo goes through this one
// expression so the two can never drift apart.
const InvoiceTotalExpr = `(i.price + i.water_price + i.internet_price + i.general_price + i.electricity_price)`

// An empty owner id spans all owners. Handlers only hand that scope to
// admins (auth.ResolveOwnerScope).
const ownerInvoiceJoin = `
FROM invoices i
JOIN contracts rr ON i.rr_id = rr.rr_id
JOIN rooms r ON rr.room_id = r.room_id
JOIN houses h ON r.house_id = h.house_id
WHERE ($1 = '' OR h.owner_id = $1)`

// ReportService runs owner-scoped reporting queries.
type ReportService struct {
	db     *sql.DB
	logger *log.Logger
}

// NewReportService constructs a service.
func NewReportService(db *sql.DB, logger *log.Logger) (*ReportService, error) {
	if db == nil {
		return nil, errors.New("report service: nil db")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ReportService{db: db, logger: logger}, nil
}

// RevenueStats returns revenue totals and counts for an owner, or for
// all owners when ownerID is empty.
func (s *ReportService) RevenueStats(ctx context.Context, ownerID string) (*RevenueStats, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportGenerate("revenue_stats", result, time.Since(start))
	}()

	var stats RevenueStats
	var months int
	err := s.db.QueryRowContext(ctx, `
SELECT
	COALESCE(SUM(CASE WHEN i.is_paid THEN `+InvoiceTotalExpr+` ELSE 0 END), 0),
	COUNT(*) FILTER (WHERE i.is_paid),
	COUNT(*) FILTER (WHERE NOT i.is_paid),
	COALESCE(SUM(CASE WHEN NOT i.is_paid THEN `+InvoiceTotalExpr+` ELSE 0 END), 0),
	COUNT(DISTINCT date_trunc('month', i.due_date)) FILTER (WHERE i.is_paid)
`+ownerInvoiceJoin, ownerID).Scan(
		&stats.TotalRevenue,
		&stats.PaidCount,
		&stats.PendingCount,
		&stats.PendingAmount,
		&months,
	)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if months > 0 {
		stats.AverageMonthlyRevenue = stats.TotalRevenue / float64(months)
	}
	return &stats, nil
}

// RevenueByMonth returns paid revenue per due month, most recent first.
func (s *ReportService) RevenueByMonth(ctx context.Context, ownerID string, months int) ([]MonthRevenue, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportGenerate("revenue", result, time.Since(start))
	}()

	if months <= 0 {
		months = 12
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT
	to_char(date_trunc('month', i.due_date), 'YYYY-MM'),
	COALESCE(SUM(`+InvoiceTotalExpr+`), 0),
	COUNT(*)
`+ownerInvoiceJoin+` AND i.is_paid
GROUP BY 1
ORDER BY 1 DESC
LIMIT $2`, ownerID, months)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	defer rows.Close()
	var list []MonthRevenue
	for rows.Next() {
		var row MonthRevenue
		if err := rows.Scan(&row.Month, &row.Revenue, &row.InvoiceCount); err != nil {
			result = metrics.ResultError
			return nil, err
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return list, nil
}

// OccupancyByHouse returns per-house room occupancy.
func (s *ReportService) OccupancyByHouse(ctx context.Context, ownerID string) ([]HouseOccupancy, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportGenerate("occupancy", result, time.Since(start))
	}()

	rows, err := s.db.QueryContext(ctx, `
SELECT h.house_id, h.name,
	COUNT(r.room_id),
	COUNT(r.room_id) FILTER (WHERE r.is_occupied)
FROM houses h
LEFT JOIN rooms r ON r.house_id = h.house_id
WHERE ($1 = '' OR h.owner_id = $1)
GROUP BY h.house_id, h.name
ORDER BY h.name`, ownerID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	defer rows.Close()
	var list []HouseOccupancy
	for rows.Next() {
		var row HouseOccupancy
		if err := rows.Scan(&row.HouseID, &row.HouseName, &row.TotalRooms, &row.OccupiedRooms); err != nil {
			result = metrics.ResultError
			return nil, err
		}
		if row.TotalRooms > 0 {
			row.OccupancyRate = float64(row.OccupiedRooms) / float64(row.TotalRooms)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return list, nil
}

// TenantListing returns active tenancies within the owner scope.
func (s *ReportService) TenantListing(ctx context.Context, ownerID string) ([]TenantRow, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportGenerate("tenant", result, time.Since(start))
	}()

	rows, err := s.db.QueryContext(ctx, `
SELECT rr.rr_id, rr.tenant_name, rr.tenant_phone, r.name, h.name, rr.monthly_rent, rr.start_date
FROM contracts rr
JOIN rooms r ON rr.room_id = r.room_id
JOIN houses h ON r.house_id = h.house_id
WHERE ($1 = '' OR h.owner_id = $1) AND rr.is_active = TRUE
ORDER BY h.name, r.name`, ownerID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	defer rows.Close()
	var list []TenantRow
	for rows.Next() {
		var row TenantRow
		var startDate time.Time
		if err := rows.Scan(&row.RRID, &row.TenantName, &row.TenantPhone, &row.RoomName, &row.HouseName, &row.MonthlyRent, &startDate); err != nil {
			result = metrics.ResultError
			return nil, err
		}
		row.StartDate = startDate.UTC().Format("2006-01-02")
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return list, nil
}

// Overview returns the owner's portfolio snapshot, or the system-wide
// snapshot when ownerID is empty.
func (s *ReportService) Overview(ctx context.Context, ownerID string) (*SystemOverview, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportGenerate("overview", result, time.Since(start))
	}()

	var overview SystemOverview
	err := s.db.QueryRowContext(ctx, `
SELECT
	COUNT(DISTINCT h.house_id),
	COUNT(r.room_id),
	COUNT(r.room_id) FILTER (WHERE r.is_occupied)
FROM houses h
LEFT JOIN rooms r ON r.house_id = h.house_id
WHERE ($1 = '' OR h.owner_id = $1)`, ownerID).Scan(
		&overview.Houses,
		&overview.Rooms,
		&overview.OccupiedRooms,
	)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if overview.Rooms > 0 {
		overview.OccupancyRate = float64(overview.OccupiedRooms) / float64(overview.Rooms)
	}

	err = s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM contracts rr
JOIN rooms r ON rr.room_id = r.room_id
JOIN houses h ON r.house_id = h.house_id
WHERE ($1 = '' OR h.owner_id = $1) AND rr.is_active = TRUE`, ownerID).Scan(&overview.ActiveContracts)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	monthStart := time.Now().UTC()
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	err = s.db.QueryRowContext(ctx, `
SELECT
	COUNT(*) FILTER (WHERE NOT i.is_paid),
	COALESCE(SUM(CASE WHEN i.is_paid AND i.due_date >= $2 THEN `+InvoiceTotalExpr+` ELSE 0 END), 0)
`+ownerInvoiceJoin, ownerID, monthStart).Scan(
		&overview.PendingInvoices,
		&overview.CurrentMonthRevenue,
	)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return &overview, nil
}
