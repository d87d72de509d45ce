package postgres

import (
	"context"
	"database/sql"
	"errors"

	billing "rentroll-cloud/internal/billing/domain"
)

// ContractReader loads the billing projection of contracts: the initial
// meter reading and the unit prices, nothing else.
type ContractReader struct {
	db *sql.DB
}

// NewContractReader constructs a reader.
func NewContractReader(db *sql.DB) *ContractReader {
	return &ContractReader{db: db}
}

const contractColumns = `
rr.rr_id, rr.initial_electricity_num, rr.electricity_price, rr.monthly_rent,
rr.water_price, rr.internet_price, rr.general_price`

// BillingContract returns one contract projection, or nil when absent.
func (r *ContractReader) BillingContract(ctx context.Context, rrID string) (*billing.Contract, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract reader: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+contractColumns+`
FROM contracts rr
WHERE rr.rr_id = $1
LIMIT 1`, rrID)
	return scanContract(row)
}

// ListActiveBillingContracts returns projections of every active
// contract across the owner's houses.
func (r *ContractReader) ListActiveBillingContracts(ctx context.Context, ownerID string) ([]billing.Contract, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract reader: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+contractColumns+`
FROM contracts rr
JOIN rooms r ON rr.room_id = r.room_id
JOIN houses h ON r.house_id = h.house_id
WHERE h.owner_id = $1 AND rr.is_active = TRUE
ORDER BY rr.rr_id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []billing.Contract
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

func scanContract(row rowScanner) (*billing.Contract, error) {
	var c billing.Contract
	err := row.Scan(
		&c.RRID,
		&c.InitialElectricityNum,
		&c.ElectricityUnitPrice,
		&c.MonthlyRent,
		&c.WaterPrice,
		&c.InternetPrice,
		&c.GeneralPrice,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
