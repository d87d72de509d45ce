package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	directory "rentroll-cloud/internal/directory/domain"
)

// ContractRepository persists contracts.
type ContractRepository struct {
	db *sql.DB
}

// NewContractRepository constructs a repository.
func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

const contractColumns = `
rr_id, room_id, tenant_name, tenant_phone, start_date, end_date,
monthly_rent, electricity_price, water_price, internet_price, general_price,
initial_electricity_num, is_active, created_at`

// Save upserts a contract.
func (r *ContractRepository) Save(ctx context.Context, contract *directory.Contract) error {
	if r == nil || r.db == nil {
		return errors.New("contract repo: nil db")
	}
	if contract == nil {
		return errors.New("contract repo: nil contract")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO contracts (
	rr_id, room_id, tenant_name, tenant_phone, start_date, end_date,
	monthly_rent, electricity_price, water_price, internet_price, general_price,
	initial_electricity_num, is_active, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)
ON CONFLICT (rr_id) DO UPDATE
SET tenant_name = EXCLUDED.tenant_name, tenant_phone = EXCLUDED.tenant_phone,
	end_date = EXCLUDED.end_date, monthly_rent = EXCLUDED.monthly_rent,
	electricity_price = EXCLUDED.electricity_price, water_price = EXCLUDED.water_price,
	internet_price = EXCLUDED.internet_price, general_price = EXCLUDED.general_price,
	is_active = EXCLUDED.is_active`,
		contract.RRID, contract.RoomID, contract.TenantName, contract.TenantPhone,
		contract.StartDate, nullTime(contract.EndDate),
		contract.MonthlyRent, contract.ElectricityPrice, contract.WaterPrice,
		contract.InternetPrice, contract.GeneralPrice,
		contract.InitialElectricityNum, contract.IsActive, contract.CreatedAt,
	)
	return err
}

// GetByID returns one contract, or nil when absent.
func (r *ContractRepository) GetByID(ctx context.Context, rrID string) (*directory.Contract, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+contractColumns+`
FROM contracts
WHERE rr_id = $1
LIMIT 1`, rrID)
	return scanContract(row)
}

// ListByOwner returns contracts across the owner's houses. An empty
// ownerID spans all owners (admin scope).
func (r *ContractRepository) ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]directory.Contract, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract repo: nil db")
	}
	query := `
SELECT rr.rr_id, rr.room_id, rr.tenant_name, rr.tenant_phone, rr.start_date, rr.end_date,
	rr.monthly_rent, rr.electricity_price, rr.water_price, rr.internet_price, rr.general_price,
	rr.initial_electricity_num, rr.is_active, rr.created_at
FROM contracts rr
JOIN rooms r ON rr.room_id = r.room_id
JOIN houses h ON r.house_id = h.house_id
WHERE ($1 = '' OR h.owner_id = $1)`
	if activeOnly {
		query += ` AND rr.is_active = TRUE`
	}
	query += `
ORDER BY rr.created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []directory.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		if c != nil {
			result = append(result, *c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ActiveByRoom returns the room's active contract, or nil.
func (r *ContractRepository) ActiveByRoom(ctx context.Context, roomID string) (*directory.Contract, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+contractColumns+`
FROM contracts
WHERE room_id = $1 AND is_active = TRUE
LIMIT 1`, roomID)
	return scanContract(row)
}

// SetActive flips the active flag.
func (r *ContractRepository) SetActive(ctx context.Context, rrID string, active bool) error {
	if r == nil || r.db == nil {
		return errors.New("contract repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `UPDATE contracts SET is_active = $1 WHERE rr_id = $2`, active, rrID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*directory.Contract, error) {
	var c directory.Contract
	var endDate sql.NullTime
	err := row.Scan(
		&c.RRID,
		&c.RoomID,
		&c.TenantName,
		&c.TenantPhone,
		&c.StartDate,
		&endDate,
		&c.MonthlyRent,
		&c.ElectricityPrice,
		&c.WaterPrice,
		&c.InternetPrice,
		&c.GeneralPrice,
		&c.InitialElectricityNum,
		&c.IsActive,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if endDate.Valid {
		c.EndDate = endDate.Time.UTC()
	}
	c.StartDate = c.StartDate.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
