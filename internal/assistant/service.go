package assistant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rentroll-cloud/internal/observability/metrics"
	reportapp "rentroll-cloud/internal/reports/application"
)

// Service composes database context for the owner's portfolio before
// forwarding questions to the AI backend.
type Service struct {
	client  *Client
	reports *reportapp.ReportService
	db      *sql.DB
	logger  *log.Logger
}

// NewService constructs a service.
func NewService(client *Client, reports *reportapp.ReportService, db *sql.DB, logger *log.Logger) (*Service, error) {
	if client == nil {
		return nil, errors.New("assistant service: nil client")
	}
	if reports == nil {
		return nil, errors.New("assistant service: nil reports")
	}
	if db == nil {
		return nil, errors.New("assistant service: nil db")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{client: client, reports: reports, db: db, logger: logger}, nil
}

// Chat answers a free-form question with portfolio context attached.
// Gateway errors pass through unchanged.
func (s *Service) Chat(ctx context.Context, ownerID, question string) (string, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveAssistant(result, time.Since(start))
	}()

	contextText, err := s.composeContext(ctx, ownerID)
	if err != nil {
		result = metrics.ResultError
		return "", err
	}
	answer, err := s.client.Ask(ctx, question, contextText)
	if err != nil {
		result = metrics.ResultError
		return "", err
	}
	return answer, nil
}

// RevenueNarration returns an AI narrative over the owner's revenue
// report.
func (s *Service) RevenueNarration(ctx context.Context, ownerID string) (string, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveAssistant(result, time.Since(start))
	}()

	stats, err := s.reports.RevenueStats(ctx, ownerID)
	if err != nil {
		result = metrics.ResultError
		return "", err
	}
	revenue, err := s.reports.RevenueByMonth(ctx, ownerID, 12)
	if err != nil {
		result = metrics.ResultError
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Total revenue: %.0f. Paid invoices: %d. Pending invoices: %d (%.0f outstanding).\n",
		stats.TotalRevenue, stats.PaidCount, stats.PendingCount, stats.PendingAmount)
	for _, row := range revenue {
		fmt.Fprintf(&b, "%s: %.0f across %d invoices\n", row.Month, row.Revenue, row.InvoiceCount)
	}
	narrative, err := s.client.Narrate(ctx, "revenue", b.String())
	if err != nil {
		result = metrics.ResultError
		return "", err
	}
	return narrative, nil
}

// composeContext builds the portfolio summary sent alongside questions:
// overview stats, available rooms and pending invoices.
func (s *Service) composeContext(ctx context.Context, ownerID string) (string, error) {
	overview, err := s.reports.Overview(ctx, ownerID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio: %d houses, %d rooms (%d occupied, %.0f%% occupancy), %d active contracts.\n",
		overview.Houses, overview.Rooms, overview.OccupiedRooms, overview.OccupancyRate*100, overview.ActiveContracts)
	fmt.Fprintf(&b, "Pending invoices: %d. Current month revenue: %.0f.\n",
		overview.PendingInvoices, overview.CurrentMonthRevenue)

	available, err := s.availableRooms(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if len(available) > 0 {
		fmt.Fprintf(&b, "Available rooms: %s.\n", strings.Join(available, ", "))
	}

	pending, err := s.pendingInvoiceLines(ctx, ownerID)
	if err != nil {
		return "", err
	}
	for _, line := range pending {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func (s *Service) availableRooms(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT h.name, r.name
FROM rooms r
JOIN houses h ON r.house_id = h.house_id
WHERE h.owner_id = $1 AND r.is_occupied = FALSE
ORDER BY h.name, r.name
LIMIT 50`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []string
	for rows.Next() {
		var houseName, roomName string
		if err := rows.Scan(&houseName, &roomName); err != nil {
			return nil, err
		}
		result = append(result, houseName+"/"+roomName)
	}
	return result, rows.Err()
}

func (s *Service) pendingInvoiceLines(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT rr.tenant_name, i.due_date, `+reportapp.InvoiceTotalExpr+`
FROM invoices i
JOIN contracts rr ON i.rr_id = rr.rr_id
JOIN rooms r ON rr.room_id = r.room_id
JOIN houses h ON r.house_id = h.house_id
WHERE h.owner_id = $1 AND i.is_paid = FALSE
ORDER BY i.due_date
LIMIT 20`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []string
	for rows.Next() {
		var tenant string
		var due time.Time
		var total float64
		if err := rows.Scan(&tenant, &due, &total); err != nil {
			return nil, err
		}
		result = append(result, fmt.Sprintf("Pending: %s owes %.0f due %s", tenant, total, due.UTC().Format("2006-01-02")))
	}
	return result, rows.Err()
}
