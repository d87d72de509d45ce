package memory

import (
	"context"
	"sort"
	"sync"

	directory "rentroll-cloud/internal/directory/domain"
)

// Store is an in-memory directory backing used in tests. It implements
// all three repository interfaces.
type Store struct {
	mu        sync.RWMutex
	houses    map[string]directory.House
	rooms     map[string]directory.Room
	contracts map[string]directory.Contract
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		houses:    make(map[string]directory.House),
		rooms:     make(map[string]directory.Room),
		contracts: make(map[string]directory.Contract),
	}
}

// Houses returns a repository view over houses.
func (s *Store) Houses() directory.HouseRepository { return houseView{s} }

// Rooms returns a repository view over rooms.
func (s *Store) Rooms() directory.RoomRepository { return roomView{s} }

// Contracts returns a repository view over contracts.
func (s *Store) Contracts() directory.ContractRepository { return contractView{s} }

func (s *Store) SaveHouse(_ context.Context, h *directory.House) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.houses[h.HouseID] = *h
	return nil
}

func (s *Store) SaveRoom(_ context.Context, r *directory.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.RoomID] = *r
	return nil
}

func (s *Store) SaveContract(_ context.Context, c *directory.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[c.RRID] = *c
	return nil
}

type houseView struct{ s *Store }

func (v houseView) Save(ctx context.Context, h *directory.House) error {
	return v.s.SaveHouse(ctx, h)
}

func (v houseView) GetByID(_ context.Context, houseID string) (*directory.House, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	h, ok := v.s.houses[houseID]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (v houseView) ListByOwner(_ context.Context, ownerID string) ([]directory.House, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var result []directory.House
	for _, h := range v.s.houses {
		if ownerID == "" || h.OwnerID == ownerID {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (v houseView) Delete(_ context.Context, houseID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.houses, houseID)
	return nil
}

type roomView struct{ s *Store }

func (v roomView) Save(ctx context.Context, r *directory.Room) error {
	return v.s.SaveRoom(ctx, r)
}

func (v roomView) GetByID(_ context.Context, roomID string) (*directory.Room, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	r, ok := v.s.rooms[roomID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (v roomView) ListByHouse(_ context.Context, houseID string) ([]directory.Room, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var result []directory.Room
	for _, r := range v.s.rooms {
		if r.HouseID == houseID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (v roomView) SetOccupied(_ context.Context, roomID string, occupied bool) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.rooms[roomID]
	if !ok {
		return directory.ErrRoomNotFound
	}
	r.IsOccupied = occupied
	v.s.rooms[roomID] = r
	return nil
}

func (v roomView) Delete(_ context.Context, roomID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.rooms, roomID)
	return nil
}

type contractView struct{ s *Store }

func (v contractView) Save(ctx context.Context, c *directory.Contract) error {
	return v.s.SaveContract(ctx, c)
}

func (v contractView) GetByID(_ context.Context, rrID string) (*directory.Contract, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	c, ok := v.s.contracts[rrID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (v contractView) ListByOwner(_ context.Context, ownerID string, activeOnly bool) ([]directory.Contract, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var result []directory.Contract
	for _, c := range v.s.contracts {
		room, ok := v.s.rooms[c.RoomID]
		if !ok {
			continue
		}
		house, ok := v.s.houses[room.HouseID]
		if !ok {
			continue
		}
		if ownerID != "" && house.OwnerID != ownerID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (v contractView) ActiveByRoom(_ context.Context, roomID string) (*directory.Contract, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, c := range v.s.contracts {
		if c.RoomID == roomID && c.IsActive {
			contract := c
			return &contract, nil
		}
	}
	return nil, nil
}

func (v contractView) SetActive(_ context.Context, rrID string, active bool) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c, ok := v.s.contracts[rrID]
	if !ok {
		return directory.ErrContractNotFound
	}
	c.IsActive = active
	v.s.contracts[rrID] = c
	return nil
}
