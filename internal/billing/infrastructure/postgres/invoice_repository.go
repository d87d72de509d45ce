package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	billing "rentroll-cloud/internal/billing/domain"
)

// InvoiceRepository persists invoices.
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `
invoice_id, rr_id, price, water_price, internet_price, general_price,
electricity_price, electricity_num, due_date, is_paid, payment_date, created_at`

// Create inserts an invoice.
func (r *InvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	if inv == nil {
		return errors.New("invoice repo: nil invoice")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO invoices (
	invoice_id, rr_id, price, water_price, internet_price, general_price,
	electricity_price, electricity_num, due_date, is_paid, payment_date, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)`,
		inv.InvoiceID, inv.RRID, inv.Price, inv.WaterPrice, inv.InternetPrice, inv.GeneralPrice,
		inv.ElectricityPrice, inv.ElectricityNum, inv.DueDate, inv.IsPaid, nullTime(inv.PaymentDate), inv.CreatedAt,
	)
	return err
}

// Update overwrites invoice fields.
func (r *InvoiceRepository) Update(ctx context.Context, inv *billing.Invoice) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	if inv == nil {
		return errors.New("invoice repo: nil invoice")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE invoices
SET price = $1, water_price = $2, internet_price = $3, general_price = $4,
	electricity_price = $5, electricity_num = $6, due_date = $7,
	is_paid = $8, payment_date = $9
WHERE invoice_id = $10`,
		inv.Price, inv.WaterPrice, inv.InternetPrice, inv.GeneralPrice,
		inv.ElectricityPrice, inv.ElectricityNum, inv.DueDate,
		inv.IsPaid, nullTime(inv.PaymentDate), inv.InvoiceID,
	)
	return err
}

// Delete removes an invoice.
func (r *InvoiceRepository) Delete(ctx context.Context, invoiceID string) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE invoice_id = $1`, invoiceID)
	return err
}

// GetByID fetches one invoice.
func (r *InvoiceRepository) GetByID(ctx context.Context, invoiceID string) (*billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+invoiceColumns+`
FROM invoices
WHERE invoice_id = $1
LIMIT 1`, invoiceID)
	return scanInvoice(row)
}

// ListByContract returns all invoices for a contract, unsorted; callers
// sort chronologically in the domain.
func (r *InvoiceRepository) ListByContract(ctx context.Context, rrID string) ([]billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+invoiceColumns+`
FROM invoices
WHERE rr_id = $1`, rrID)
	if err != nil {
		return nil, err
	}
	return collectInvoices(rows)
}

// ListByOwner returns invoices across the owner's houses. An empty
// ownerID spans all owners (admin scope).
func (r *InvoiceRepository) ListByOwner(ctx context.Context, ownerID string, onlyPending bool, limit, offset int) ([]billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	if limit <= 0 {
		limit = 100
	}
	query := `
SELECT i.invoice_id, i.rr_id, i.price, i.water_price, i.internet_price, i.general_price,
	i.electricity_price, i.electricity_num, i.due_date, i.is_paid, i.payment_date, i.created_at
FROM invoices i
JOIN contracts rr ON i.rr_id = rr.rr_id
JOIN rooms r ON rr.room_id = r.room_id
JOIN houses h ON r.house_id = h.house_id
WHERE ($1 = '' OR h.owner_id = $1)`
	if onlyPending {
		query += ` AND i.is_paid = FALSE`
	}
	query += `
ORDER BY i.due_date DESC, i.created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectInvoices(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*billing.Invoice, error) {
	var inv billing.Invoice
	var paymentDate sql.NullTime
	err := row.Scan(
		&inv.InvoiceID,
		&inv.RRID,
		&inv.Price,
		&inv.WaterPrice,
		&inv.InternetPrice,
		&inv.GeneralPrice,
		&inv.ElectricityPrice,
		&inv.ElectricityNum,
		&inv.DueDate,
		&inv.IsPaid,
		&paymentDate,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if paymentDate.Valid {
		inv.PaymentDate = paymentDate.Time.UTC()
	}
	inv.DueDate = inv.DueDate.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	return &inv, nil
}

func collectInvoices(rows *sql.Rows) ([]billing.Invoice, error) {
	defer rows.Close()
	var result []billing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		if inv != nil {
			result = append(result, *inv)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
