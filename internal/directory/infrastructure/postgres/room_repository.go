package postgres

import (
	"context"
	"database/sql"
	"errors"

	directory "rentroll-cloud/internal/directory/domain"
)

// RoomRepository persists rooms.
type RoomRepository struct {
	db *sql.DB
}

// NewRoomRepository constructs a repository.
func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Save upserts a room.
func (r *RoomRepository) Save(ctx context.Context, room *directory.Room) error {
	if r == nil || r.db == nil {
		return errors.New("room repo: nil db")
	}
	if room == nil {
		return errors.New("room repo: nil room")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO rooms (room_id, house_id, name, floor, area_m2, is_occupied, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (room_id) DO UPDATE
SET name = EXCLUDED.name, floor = EXCLUDED.floor, area_m2 = EXCLUDED.area_m2`,
		room.RoomID, room.HouseID, room.Name, room.Floor, room.AreaM2, room.IsOccupied, room.CreatedAt,
	)
	return err
}

// GetByID returns one room, or nil when absent.
func (r *RoomRepository) GetByID(ctx context.Context, roomID string) (*directory.Room, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("room repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT room_id, house_id, name, floor, area_m2, is_occupied, created_at
FROM rooms
WHERE room_id = $1
LIMIT 1`, roomID)
	var rm directory.Room
	err := row.Scan(&rm.RoomID, &rm.HouseID, &rm.Name, &rm.Floor, &rm.AreaM2, &rm.IsOccupied, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rm.CreatedAt = rm.CreatedAt.UTC()
	return &rm, nil
}

// ListByHouse returns the rooms of a house.
func (r *RoomRepository) ListByHouse(ctx context.Context, houseID string) ([]directory.Room, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("room repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT room_id, house_id, name, floor, area_m2, is_occupied, created_at
FROM rooms
WHERE house_id = $1
ORDER BY name`, houseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []directory.Room
	for rows.Next() {
		var rm directory.Room
		if err := rows.Scan(&rm.RoomID, &rm.HouseID, &rm.Name, &rm.Floor, &rm.AreaM2, &rm.IsOccupied, &rm.CreatedAt); err != nil {
			return nil, err
		}
		rm.CreatedAt = rm.CreatedAt.UTC()
		result = append(result, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetOccupied flips the occupancy flag.
func (r *RoomRepository) SetOccupied(ctx context.Context, roomID string, occupied bool) error {
	if r == nil || r.db == nil {
		return errors.New("room repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `UPDATE rooms SET is_occupied = $1 WHERE room_id = $2`, occupied, roomID)
	return err
}

// Delete removes a room.
func (r *RoomRepository) Delete(ctx context.Context, roomID string) error {
	if r == nil || r.db == nil {
		return errors.New("room repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id = $1`, roomID)
	return err
}
