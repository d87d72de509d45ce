package postgres

import (
	"context"
	"database/sql"
	"errors"

	directory "rentroll-cloud/internal/directory/domain"
)

// HouseRepository persists houses.
type HouseRepository struct {
	db *sql.DB
}

// NewHouseRepository constructs a repository.
func NewHouseRepository(db *sql.DB) *HouseRepository {
	return &HouseRepository{db: db}
}

// Save upserts a house.
func (r *HouseRepository) Save(ctx context.Context, house *directory.House) error {
	if r == nil || r.db == nil {
		return errors.New("house repo: nil db")
	}
	if house == nil {
		return errors.New("house repo: nil house")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO houses (house_id, owner_id, name, address, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (house_id) DO UPDATE
SET name = EXCLUDED.name, address = EXCLUDED.address`,
		house.HouseID, house.OwnerID, house.Name, house.Address, house.CreatedAt,
	)
	return err
}

// GetByID returns one house, or nil when absent.
func (r *HouseRepository) GetByID(ctx context.Context, houseID string) (*directory.House, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("house repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT house_id, owner_id, name, address, created_at
FROM houses
WHERE house_id = $1
LIMIT 1`, houseID)
	var h directory.House
	err := row.Scan(&h.HouseID, &h.OwnerID, &h.Name, &h.Address, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	h.CreatedAt = h.CreatedAt.UTC()
	return &h, nil
}

// ListByOwner returns the owner's houses. An empty ownerID spans all
// owners (admin scope).
func (r *HouseRepository) ListByOwner(ctx context.Context, ownerID string) ([]directory.House, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("house repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT house_id, owner_id, name, address, created_at
FROM houses
WHERE ($1 = '' OR owner_id = $1)
ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []directory.House
	for rows.Next() {
		var h directory.House
		if err := rows.Scan(&h.HouseID, &h.OwnerID, &h.Name, &h.Address, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.CreatedAt = h.CreatedAt.UTC()
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a house.
func (r *HouseRepository) Delete(ctx context.Context, houseID string) error {
	if r == nil || r.db == nil {
		return errors.New("house repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM houses WHERE house_id = $1`, houseID)
	return err
}
