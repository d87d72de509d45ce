package directory

import "context"

// HouseRepository persists houses.
type HouseRepository interface {
	Save(ctx context.Context, house *House) error
	GetByID(ctx context.Context, houseID string) (*House, error)
	ListByOwner(ctx context.Context, ownerID string) ([]House, error)
	Delete(ctx context.Context, houseID string) error
}

// RoomRepository persists rooms.
type RoomRepository interface {
	Save(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, roomID string) (*Room, error)
	ListByHouse(ctx context.Context, houseID string) ([]Room, error)
	SetOccupied(ctx context.Context, roomID string, occupied bool) error
	Delete(ctx context.Context, roomID string) error
}

// ContractRepository persists contracts.
type ContractRepository interface {
	Save(ctx context.Context, contract *Contract) error
	GetByID(ctx context.Context, rrID string) (*Contract, error)
	ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]Contract, error)
	ActiveByRoom(ctx context.Context, roomID string) (*Contract, error)
	SetActive(ctx context.Context, rrID string, active bool) error
}
