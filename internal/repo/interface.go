package repo

import (
	"context"
	"errors"
	"io/fs"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("repo: not found")

// Store defines the interface for data persistence. Both the Postgres
// (Supabase) and the standalone SQLite implementations satisfy it.
type Store interface {
	// Lifecycle
	Close()
	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context, filesystem fs.FS) error

	// Admins
	IsAdminPhone(ctx context.Context, phone string) (bool, error)

	// Clients
	InsertClient(ctx context.Context, c Client) (*Client, error)
	GetClientByID(ctx context.Context, id string) (*Client, error)
	FindClientByPhone(ctx context.Context, number, countryCode string) (*Client, error)
	FindReturningClient(ctx context.Context, whatsappNumber, surname string) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)

	// Rooms
	ListRooms(ctx context.Context) ([]Room, error)
	ListAvailableRooms(ctx context.Context, roomTypeID string) ([]Room, error)
	GetRoom(ctx context.Context, id string) (*Room, error)
	UpdateRoomStatus(ctx context.Context, id, status string) error
	GetRoomType(ctx context.Context, id string) (*RoomType, error)
	ListRoomTypes(ctx context.Context) ([]RoomType, error)

	// Reservations
	InsertReservation(ctx context.Context, res Reservation) (*Reservation, error)
	ListClientReservations(ctx context.Context, clientID string) ([]Reservation, error)

	// Notifications
	InsertNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, limit int) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// Outbound messaging
	ListActiveTemplates(ctx context.Context, trigger string) ([]MessageTemplate, error)
	InsertMessageLog(ctx context.Context, l MessageLog) error
	ListClientMessageLogs(ctx context.Context, clientID string, limit int) ([]MessageLog, error)
}
