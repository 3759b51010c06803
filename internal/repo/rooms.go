package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ListRooms returns every room on the board.
func (r *Repository) ListRooms(ctx context.Context) ([]Room, error) {
	const q = `
SELECT id, room_number, room_type_id, floor, status, created_at, updated_at
FROM rooms
ORDER BY room_number;
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()
	return collectRooms(rows)
}

// ListAvailableRooms returns available rooms, optionally restricted to a
// room type.
func (r *Repository) ListAvailableRooms(ctx context.Context, roomTypeID string) ([]Room, error) {
	const q = `
SELECT id, room_number, room_type_id, floor, status, created_at, updated_at
FROM rooms
WHERE status = $1 AND ($2 = '' OR room_type_id = $2)
ORDER BY room_number;
`
	rows, err := r.pool.Query(ctx, q, RoomAvailable, roomTypeID)
	if err != nil {
		return nil, fmt.Errorf("list available rooms: %w", err)
	}
	defer rows.Close()
	return collectRooms(rows)
}

func collectRooms(rows pgx.Rows) ([]Room, error) {
	var rooms []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.RoomNumber, &room.RoomTypeID, &room.Floor, &room.Status, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, nil
}

// GetRoom returns a room by id.
func (r *Repository) GetRoom(ctx context.Context, id string) (*Room, error) {
	const q = `
SELECT id, room_number, room_type_id, floor, status, created_at, updated_at
FROM rooms
WHERE id = $1
LIMIT 1;
`
	var room Room
	err := r.pool.QueryRow(ctx, q, id).Scan(&room.ID, &room.RoomNumber, &room.RoomTypeID, &room.Floor, &room.Status, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

// UpdateRoomStatus moves a room to a new board status.
func (r *Repository) UpdateRoomStatus(ctx context.Context, id, status string) error {
	const q = `UPDATE rooms SET status = $2, updated_at = NOW() WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, q, id, status)
	if err != nil {
		return fmt.Errorf("update room status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRoomType returns a room type by id.
func (r *Repository) GetRoomType(ctx context.Context, id string) (*RoomType, error) {
	const q = `
SELECT id, name, description, base_price, created_at
FROM room_types
WHERE id = $1
LIMIT 1;
`
	var rt RoomType
	err := r.pool.QueryRow(ctx, q, id).Scan(&rt.ID, &rt.Name, &rt.Description, &rt.BasePrice, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room type: %w", err)
	}
	return &rt, nil
}

// ListRoomTypes returns every room type.
func (r *Repository) ListRoomTypes(ctx context.Context) ([]RoomType, error) {
	const q = `
SELECT id, name, description, base_price, created_at
FROM room_types
ORDER BY base_price;
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list room types: %w", err)
	}
	defer rows.Close()

	var types []RoomType
	for rows.Next() {
		var rt RoomType
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Description, &rt.BasePrice, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room type: %w", err)
		}
		types = append(types, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room types: %w", err)
	}
	return types, nil
}
