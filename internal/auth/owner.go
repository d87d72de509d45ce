package auth

import (
	"context"
	"database/sql"
	"errors"
)

// OwnerResourceChecker validates that a resource belongs to an owner.
type OwnerResourceChecker interface {
	EnsureHouseOwner(ctx context.Context, ownerID, houseID string) error
	EnsureRoomOwner(ctx context.Context, ownerID, roomID string) error
	EnsureContractOwner(ctx context.Context, ownerID, contractID string) error
	EnsureInvoiceOwner(ctx context.Context, ownerID, invoiceID string) error
}

// OwnerChecker checks resource ownership against the directory tables.
// Every resource resolves to a house, and houses carry the owner id.
type OwnerChecker struct {
	db *sql.DB
}

// NewOwnerChecker constructs an OwnerChecker.
func NewOwnerChecker(db *sql.DB) *OwnerChecker {
	if db == nil {
		return nil
	}
	return &OwnerChecker{db: db}
}

// EnsureHouseOwner verifies a house belongs to the owner.
func (c *OwnerChecker) EnsureHouseOwner(ctx context.Context, ownerID, houseID string) error {
	return c.ensure(ctx, ownerID, houseID, `
SELECT owner_id FROM houses WHERE house_id = $1`)
}

// EnsureRoomOwner verifies a room belongs to the owner.
func (c *OwnerChecker) EnsureRoomOwner(ctx context.Context, ownerID, roomID string) error {
	return c.ensure(ctx, ownerID, roomID, `
SELECT h.owner_id
FROM rooms r
JOIN houses h ON r.house_id = h.house_id
WHERE r.room_id = $1`)
}

// EnsureContractOwner verifies a contract's room belongs to the owner.
func (c *OwnerChecker) EnsureContractOwner(ctx context.Context, ownerID, contractID string) error {
	return c.ensure(ctx, ownerID, contractID, `
SELECT h.owner_id
FROM contracts rr
JOIN rooms r ON rr.room_id = r.room_id
JOIN houses h ON r.house_id = h.house_id
WHERE rr.rr_id = $1`)
}

// EnsureInvoiceOwner verifies an invoice's contract belongs to the owner.
func (c *OwnerChecker) EnsureInvoiceOwner(ctx context.Context, ownerID, invoiceID string) error {
	return c.ensure(ctx, ownerID, invoiceID, `
SELECT h.owner_id
FROM invoices i
JOIN contracts rr ON i.rr_id = rr.rr_id
JOIN rooms r ON rr.room_id = r.room_id
JOIN houses h ON r.house_id = h.house_id
WHERE i.invoice_id = $1`)
}

func (c *OwnerChecker) ensure(ctx context.Context, ownerID, resourceID, query string) error {
	if c == nil || c.db == nil {
		return nil
	}
	if ownerID == "" || resourceID == "" {
		return nil
	}
	var got string
	err := c.db.QueryRowContext(ctx, query, resourceID).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if got != ownerID {
		return ErrOwnerMismatch
	}
	return nil
}
