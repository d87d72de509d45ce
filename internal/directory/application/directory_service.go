package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	directory "rentroll-cloud/internal/directory/domain"
)

// DirectoryService manages houses, rooms and contracts for an owner.
type DirectoryService struct {
	houses    directory.HouseRepository
	rooms     directory.RoomRepository
	contracts directory.ContractRepository
	defaults  ContractDefaults
	logger    *log.Logger
}

// NewDirectoryService constructs a service.
func NewDirectoryService(houses directory.HouseRepository, rooms directory.RoomRepository, contracts directory.ContractRepository, defaults ContractDefaults, logger *log.Logger) (*DirectoryService, error) {
	if houses == nil || rooms == nil || contracts == nil {
		return nil, errors.New("directory service: nil repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &DirectoryService{
		houses:    houses,
		rooms:     rooms,
		contracts: contracts,
		defaults:  defaults,
		logger:    logger,
	}, nil
}

// CreateHouse registers a house for an owner.
func (s *DirectoryService) CreateHouse(ctx context.Context, ownerID, name, address string) (*directory.House, error) {
	house := &directory.House{
		HouseID:   "house-" + uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}
	if err := house.Validate(); err != nil {
		return nil, err
	}
	if err := s.houses.Save(ctx, house); err != nil {
		return nil, err
	}
	return house, nil
}

// ListHouses returns the owner's houses. An empty ownerID spans all
// owners; handlers only grant that scope to admins.
func (s *DirectoryService) ListHouses(ctx context.Context, ownerID string) ([]directory.House, error) {
	return s.houses.ListByOwner(ctx, ownerID)
}

// GetHouse returns one house.
func (s *DirectoryService) GetHouse(ctx context.Context, houseID string) (*directory.House, error) {
	house, err := s.houses.GetByID(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if house == nil {
		return nil, directory.ErrHouseNotFound
	}
	return house, nil
}

// DeleteHouse removes a house.
func (s *DirectoryService) DeleteHouse(ctx context.Context, houseID string) error {
	house, err := s.houses.GetByID(ctx, houseID)
	if err != nil {
		return err
	}
	if house == nil {
		return directory.ErrHouseNotFound
	}
	return s.houses.Delete(ctx, houseID)
}

// CreateRoomInput carries room creation fields.
type CreateRoomInput struct {
	HouseID string
	Name    string
	Floor   int
	AreaM2  float64
}

// CreateRoom adds a room to a house.
func (s *DirectoryService) CreateRoom(ctx context.Context, in CreateRoomInput) (*directory.Room, error) {
	house, err := s.houses.GetByID(ctx, in.HouseID)
	if err != nil {
		return nil, err
	}
	if house == nil {
		return nil, directory.ErrHouseNotFound
	}
	room := &directory.Room{
		RoomID:    "room-" + uuid.NewString(),
		HouseID:   in.HouseID,
		Name:      in.Name,
		Floor:     in.Floor,
		AreaM2:    in.AreaM2,
		CreatedAt: time.Now().UTC(),
	}
	if err := room.Validate(); err != nil {
		return nil, err
	}
	if err := s.rooms.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// ListRooms returns the rooms of a house.
func (s *DirectoryService) ListRooms(ctx context.Context, houseID string) ([]directory.Room, error) {
	if houseID == "" {
		return nil, errors.New("directory service: house_id required")
	}
	return s.rooms.ListByHouse(ctx, houseID)
}

// GetRoom returns one room.
func (s *DirectoryService) GetRoom(ctx context.Context, roomID string) (*directory.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, directory.ErrRoomNotFound
	}
	return room, nil
}

// DeleteRoom removes a room.
func (s *DirectoryService) DeleteRoom(ctx context.Context, roomID string) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return directory.ErrRoomNotFound
	}
	return s.rooms.Delete(ctx, roomID)
}

// CreateContractInput carries contract creation fields. Nil prices fall
// back to the configured defaults.
type CreateContractInput struct {
	RoomID                string
	TenantName            string
	TenantPhone           string
	StartDate             time.Time
	EndDate               time.Time
	MonthlyRent           float64
	ElectricityPrice      *float64
	WaterPrice            *float64
	InternetPrice         *float64
	GeneralPrice          *float64
	InitialElectricityNum float64
}

// CreateContract opens a tenancy and marks the room occupied. A room
// with an active contract cannot take a second one.
func (s *DirectoryService) CreateContract(ctx context.Context, in CreateContractInput) (*directory.Contract, error) {
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, directory.ErrRoomNotFound
	}
	existing, err := s.contracts.ActiveByRoom(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, directory.ErrRoomOccupied
	}

	contract := &directory.Contract{
		RRID:                  "rr-" + uuid.NewString(),
		RoomID:                in.RoomID,
		TenantName:            in.TenantName,
		TenantPhone:           in.TenantPhone,
		StartDate:             in.StartDate.UTC(),
		MonthlyRent:           in.MonthlyRent,
		ElectricityPrice:      orDefault(in.ElectricityPrice, s.defaults.ElectricityPrice),
		WaterPrice:            orDefault(in.WaterPrice, s.defaults.WaterPrice),
		InternetPrice:         orDefault(in.InternetPrice, s.defaults.InternetPrice),
		GeneralPrice:          orDefault(in.GeneralPrice, s.defaults.GeneralPrice),
		InitialElectricityNum: in.InitialElectricityNum,
		IsActive:              true,
		CreatedAt:             time.Now().UTC(),
	}
	if !in.EndDate.IsZero() {
		contract.EndDate = in.EndDate.UTC()
	}
	if err := contract.Validate(); err != nil {
		return nil, err
	}
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}
	if err := s.rooms.SetOccupied(ctx, in.RoomID, true); err != nil {
		return nil, err
	}
	s.logger.Printf("contract created rr_id=%s room_id=%s", contract.RRID, contract.RoomID)
	return contract, nil
}

// GetContract returns one contract.
func (s *DirectoryService) GetContract(ctx context.Context, rrID string) (*directory.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, rrID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, directory.ErrContractNotFound
	}
	return contract, nil
}

// ListContracts returns the owner's contracts. An empty ownerID spans
// all owners.
func (s *DirectoryService) ListContracts(ctx context.Context, ownerID string, activeOnly bool) ([]directory.Contract, error) {
	return s.contracts.ListByOwner(ctx, ownerID, activeOnly)
}

// TerminateContract closes a tenancy and frees the room. Invoices stay
// untouched; termination is a soft deactivation.
func (s *DirectoryService) TerminateContract(ctx context.Context, rrID string) (*directory.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, rrID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, directory.ErrContractNotFound
	}
	if !contract.IsActive {
		return contract, nil
	}
	if err := s.contracts.SetActive(ctx, rrID, false); err != nil {
		return nil, err
	}
	if err := s.rooms.SetOccupied(ctx, contract.RoomID, false); err != nil {
		return nil, err
	}
	contract.IsActive = false
	s.logger.Printf("contract terminated rr_id=%s room_id=%s", contract.RRID, contract.RoomID)
	return contract, nil
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
