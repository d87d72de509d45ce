package directory

import (
	"errors"
	"time"
)

// House is an owner's rental property.
type House struct {
	HouseID   string
	OwnerID   string
	Name      string
	Address   string
	CreatedAt time.Time
}

// Validate checks required house fields.
func (h *House) Validate() error {
	if h.OwnerID == "" {
		return errors.New("directory: house owner_id required")
	}
	if h.Name == "" {
		return errors.New("directory: house name required")
	}
	return nil
}

// Room is a rentable unit inside a house.
type Room struct {
	RoomID     string
	HouseID    string
	Name       string
	Floor      int
	AreaM2     float64
	IsOccupied bool
	CreatedAt  time.Time
}

// Validate checks required room fields.
func (r *Room) Validate() error {
	if r.HouseID == "" {
		return errors.New("directory: room house_id required")
	}
	if r.Name == "" {
		return errors.New("directory: room name required")
	}
	return nil
}

// Contract is a tenancy for one room, keyed rr_id. It carries the
// utility unit prices and the meter baseline the billing module reads.
type Contract struct {
	RRID                  string
	RoomID                string
	TenantName            string
	TenantPhone           string
	StartDate             time.Time
	EndDate               time.Time
	MonthlyRent           float64
	ElectricityPrice      float64
	WaterPrice            float64
	InternetPrice         float64
	GeneralPrice          float64
	InitialElectricityNum float64
	IsActive              bool
	CreatedAt             time.Time
}

// Validate checks required contract fields.
func (c *Contract) Validate() error {
	if c.RoomID == "" {
		return errors.New("directory: contract room_id required")
	}
	if c.TenantName == "" {
		return errors.New("directory: contract tenant_name required")
	}
	if c.StartDate.IsZero() {
		return errors.New("directory: contract start_date required")
	}
	if c.MonthlyRent < 0 || c.ElectricityPrice < 0 || c.WaterPrice < 0 ||
		c.InternetPrice < 0 || c.GeneralPrice < 0 {
		return errors.New("directory: negative price")
	}
	return nil
}

var (
	// ErrHouseNotFound is returned when a house does not exist.
	ErrHouseNotFound = errors.New("directory: house not found")
	// ErrRoomNotFound is returned when a room does not exist.
	ErrRoomNotFound = errors.New("directory: room not found")
	// ErrContractNotFound is returned when a contract does not exist.
	ErrContractNotFound = errors.New("directory: contract not found")
	// ErrRoomOccupied is returned when a contract targets a room that
	// already has an active tenancy.
	ErrRoomOccupied = errors.New("directory: room already occupied")
)
