package repo

import (
	"context"
	"fmt"
	"time"
)

// InsertReservation creates a new reservation record.
func (r *Repository) InsertReservation(ctx context.Context, res Reservation) (*Reservation, error) {
	const q = `
INSERT INTO reservations (client_id, room_id, check_in_date, check_out_date, number_of_days, total_price, status, notes, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at;
`
	var id string
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, q,
		res.ClientID,
		res.RoomID,
		res.CheckInDate,
		res.CheckOutDate,
		res.NumberOfDays,
		res.TotalPrice,
		res.Status,
		res.Notes,
		res.CreatedBy,
	).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	res.ID = id
	res.CreatedAt = createdAt
	return &res, nil
}

// ListClientReservations returns a client's reservation history, newest first.
func (r *Repository) ListClientReservations(ctx context.Context, clientID string) ([]Reservation, error) {
	const q = `
SELECT id, client_id, room_id, check_in_date, check_out_date, number_of_days, total_price, status, notes, created_by, created_at, updated_at
FROM reservations
WHERE client_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client reservations: %w", err)
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(&res.ID, &res.ClientID, &res.RoomID, &res.CheckInDate, &res.CheckOutDate, &res.NumberOfDays, &res.TotalPrice, &res.Status, &res.Notes, &res.CreatedBy, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return reservations, nil
}
