package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

func randomUUID() string {
	return uuid.NewString()
}

// Tags are stored as a JSON array in a TEXT column; SQLite has no native
// array type.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

// -- Clients --

const sqliteClientColumns = `
id, nom, postnom, prenom, full_name, matricule, date_naissance, adresse,
pays_origine, phone_number, whatsapp_number, whatsapp_country_code, email,
nationality, document_type, commentaire, total_sejours, total_nuits,
fidelite_score, tags, statut, attribue_par, is_vip, is_duplicate,
created_at, updated_at`

type sqliteRow interface {
	Scan(dest ...any) error
}

func scanSQLiteClient(row sqliteRow) (*Client, error) {
	var c Client
	var tagsRaw string
	err := row.Scan(
		&c.ID, &c.Nom, &c.Postnom, &c.Prenom, &c.FullName, &c.Matricule,
		&c.DateNaissance, &c.Adresse, &c.PaysOrigine, &c.PhoneNumber,
		&c.WhatsappNumber, &c.WhatsappCountryCode, &c.Email, &c.Nationality,
		&c.DocumentType, &c.Commentaire, &c.TotalSejours, &c.TotalNuits,
		&c.FideliteScore, &tagsRaw, &c.Statut, &c.AttribuePar, &c.IsVIP,
		&c.IsDuplicate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tags, err := decodeTags(tagsRaw)
	if err != nil {
		return nil, err
	}
	c.Tags = tags
	return &c, nil
}

func (r *SQLiteRepository) InsertClient(ctx context.Context, c Client) (*Client, error) {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return nil, err
	}
	id := randomUUID()
	const q = `
INSERT INTO clients (
    id, nom, postnom, prenom, full_name, matricule, date_naissance, adresse,
    pays_origine, phone_number, whatsapp_number, whatsapp_country_code, email,
    nationality, document_type, commentaire, total_sejours, total_nuits,
    fidelite_score, tags, statut, attribue_par, is_vip, is_duplicate
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + sqliteClientColumns + `;`

	row := r.db.QueryRowContext(ctx, q,
		id, c.Nom, c.Postnom, c.Prenom, c.FullName, c.Matricule,
		c.DateNaissance, c.Adresse, c.PaysOrigine, c.PhoneNumber,
		c.WhatsappNumber, c.WhatsappCountryCode, c.Email, c.Nationality,
		c.DocumentType, c.Commentaire, c.TotalSejours, c.TotalNuits,
		c.FideliteScore, tags, c.Statut, c.AttribuePar, c.IsVIP, c.IsDuplicate,
	)
	inserted, err := scanSQLiteClient(row)
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return inserted, nil
}

func (r *SQLiteRepository) GetClientByID(ctx context.Context, id string) (*Client, error) {
	q := `SELECT ` + sqliteClientColumns + ` FROM clients WHERE id = ? LIMIT 1;`
	c, err := scanSQLiteClient(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get client by id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) FindClientByPhone(ctx context.Context, number, countryCode string) (*Client, error) {
	q := `
SELECT ` + sqliteClientColumns + `
FROM clients
WHERE whatsapp_number = ?
   OR phone_number = ?
   OR phone_number = ?
ORDER BY created_at DESC
LIMIT 1;`
	c, err := scanSQLiteClient(r.db.QueryRowContext(ctx, q, number, number, countryCode+number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find client by phone: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) FindReturningClient(ctx context.Context, whatsappNumber, surname string) (*Client, error) {
	q := `
SELECT ` + sqliteClientColumns + `
FROM clients
WHERE whatsapp_number = ?
   OR lower(full_name) LIKE '%' || lower(?) || '%'
ORDER BY created_at ASC
LIMIT 1;`
	c, err := scanSQLiteClient(r.db.QueryRowContext(ctx, q, whatsappNumber, surname))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find returning client: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]Client, error) {
	q := `SELECT ` + sqliteClientColumns + ` FROM clients ORDER BY created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanSQLiteClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

// -- Rooms --

func (r *SQLiteRepository) ListRooms(ctx context.Context) ([]Room, error) {
	const q = `
SELECT id, room_number, room_type_id, floor, status, created_at, updated_at
FROM rooms
ORDER BY room_number;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()
	return collectSQLiteRooms(rows)
}

func (r *SQLiteRepository) ListAvailableRooms(ctx context.Context, roomTypeID string) ([]Room, error) {
	const q = `
SELECT id, room_number, room_type_id, floor, status, created_at, updated_at
FROM rooms
WHERE status = ? AND (? = '' OR room_type_id = ?)
ORDER BY room_number;
`
	rows, err := r.db.QueryContext(ctx, q, RoomAvailable, roomTypeID, roomTypeID)
	if err != nil {
		return nil, fmt.Errorf("list available rooms: %w", err)
	}
	defer rows.Close()
	return collectSQLiteRooms(rows)
}

func collectSQLiteRooms(rows *sql.Rows) ([]Room, error) {
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

func (r *SQLiteRepository) GetRoom(ctx context.Context, id string) (*Room, error) {
	const q = `
SELECT id, room_number, room_type_id, floor, status, created_at, updated_at
FROM rooms
WHERE id = ?
LIMIT 1;
`
	var room Room
	err := r.db.QueryRowContext(ctx, q, id).Scan(&room.ID, &room.RoomNumber, &room.RoomTypeID, &room.Floor, &room.Status, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

func (r *SQLiteRepository) UpdateRoomStatus(ctx context.Context, id, status string) error {
	const q = `UPDATE rooms SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return fmt.Errorf("update room status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update room status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetRoomType(ctx context.Context, id string) (*RoomType, error) {
	const q = `
SELECT id, name, description, base_price, created_at
FROM room_types
WHERE id = ?
LIMIT 1;
`
	var rt RoomType
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rt.ID, &rt.Name, &rt.Description, &rt.BasePrice, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room type: %w", err)
	}
	return &rt, nil
}

func (r *SQLiteRepository) ListRoomTypes(ctx context.Context) ([]RoomType, error) {
	const q = `
SELECT id, name, description, base_price, created_at
FROM room_types
ORDER BY base_price;
`
	rows, err := r.db.QueryContext(ctx, q)
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

// -- Reservations --

func (r *SQLiteRepository) InsertReservation(ctx context.Context, res Reservation) (*Reservation, error) {
	id := randomUUID()
	const q = `
INSERT INTO reservations (id, client_id, room_id, check_in_date, check_out_date, number_of_days, total_price, status, notes, created_by)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING created_at;
`
	err := r.db.QueryRowContext(ctx, q,
		id, res.ClientID, res.RoomID, res.CheckInDate, res.CheckOutDate,
		res.NumberOfDays, res.TotalPrice, res.Status, res.Notes, res.CreatedBy,
	).Scan(&res.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	res.ID = id
	return &res, nil
}

func (r *SQLiteRepository) ListClientReservations(ctx context.Context, clientID string) ([]Reservation, error) {
	const q = `
SELECT id, client_id, room_id, check_in_date, check_out_date, number_of_days, total_price, status, notes, created_by, created_at, updated_at
FROM reservations
WHERE client_id = ?
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, clientID)
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

// -- Notifications --

func (r *SQLiteRepository) InsertNotification(ctx context.Context, n Notification) error {
	const q = `
INSERT INTO notifications (id, titre, body, client_id, type, lu, lien)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err := r.db.ExecContext(ctx, q, randomUUID(), n.Titre, n.Body, n.ClientID, n.Type, n.Lu, n.Lien)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, titre, body, client_id, type, lu, lien, created_at
FROM notifications
ORDER BY created_at DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Titre, &n.Body, &n.ClientID, &n.Type, &n.Lu, &n.Lien, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifs = append(notifs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifs, nil
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, id string) error {
	const q = `UPDATE notifications SET lu = 1 WHERE id = ?;`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// -- Outbound messaging --

func (r *SQLiteRepository) ListActiveTemplates(ctx context.Context, trigger string) ([]MessageTemplate, error) {
	const q = `
SELECT id, name, content, "trigger", days_threshold, is_active, created_at
FROM message_templates
WHERE is_active = 1 AND (? = '' OR "trigger" = ?)
ORDER BY name;
`
	rows, err := r.db.QueryContext(ctx, q, trigger, trigger)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}
	defer rows.Close()

	var templates []MessageTemplate
	for rows.Next() {
		var t MessageTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Content, &t.Trigger, &t.DaysThreshold, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

func (r *SQLiteRepository) InsertMessageLog(ctx context.Context, l MessageLog) error {
	const q = `
INSERT INTO message_logs (id, client_id, template_id, canal, statut, content)
VALUES (?, ?, ?, ?, ?, ?);
`
	_, err := r.db.ExecContext(ctx, q, randomUUID(), l.ClientID, l.TemplateID, l.Canal, l.Statut, l.Content)
	if err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListClientMessageLogs(ctx context.Context, clientID string, limit int) ([]MessageLog, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, client_id, template_id, canal, statut, content, created_at
FROM message_logs
WHERE client_id = ?
ORDER BY created_at DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list message logs: %w", err)
	}
	defer rows.Close()

	var logs []MessageLog
	for rows.Next() {
		var l MessageLog
		if err := rows.Scan(&l.ID, &l.ClientID, &l.TemplateID, &l.Canal, &l.Statut, &l.Content, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message logs: %w", err)
	}
	return logs, nil
}
