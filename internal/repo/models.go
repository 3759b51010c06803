package repo

import "time"

// Admin is a row in the static admins allow-list.
type Admin struct {
	ID          string
	Name        string
	PhoneNumber string
	IsActive    bool
	CreatedAt   time.Time
}

// Client represents the clients table row.
type Client struct {
	ID                  string
	Nom                 string
	Postnom             *string
	Prenom              string
	FullName            string
	Matricule           string
	DateNaissance       *time.Time
	Adresse             *string
	PaysOrigine         *string
	PhoneNumber         *string
	WhatsappNumber      string
	WhatsappCountryCode string
	Email               *string
	Nationality         *string
	DocumentType        *string
	Commentaire         *string
	TotalSejours        int
	TotalNuits          int
	FideliteScore       int
	Tags                []string
	Statut              string
	AttribuePar         string
	IsVIP               bool
	IsDuplicate         bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasEmail reports whether the client left an email address.
func (c *Client) HasEmail() bool {
	return c.Email != nil && *c.Email != ""
}

// DisplayName returns the best available name for addressing the client.
func (c *Client) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return c.Prenom
}

// Room status values used on the board.
const (
	RoomAvailable   = "Disponible"
	RoomOccupied    = "Occupée"
	RoomCleaning    = "Nettoyage"
	RoomReserved    = "Réservée"
	RoomMaintenance = "Maintenance"
)

// Room represents the rooms table row.
type Room struct {
	ID         string
	RoomNumber string
	RoomTypeID string
	Floor      int
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RoomType represents the room_types table row.
type RoomType struct {
	ID          string
	Name        string
	Description *string
	BasePrice   float64
	CreatedAt   time.Time
}

// Reservation represents the reservations table row.
type Reservation struct {
	ID           string
	ClientID     string
	RoomID       string
	CheckInDate  time.Time
	CheckOutDate time.Time
	NumberOfDays int
	TotalPrice   float64
	Status       string
	Notes        *string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Notification type values.
const (
	NotifClientRegistered = "client_enregistre"
	NotifDuplicateFound   = "doublon_detecte"
	NotifBotSent          = "bot_envoi"
	NotifSystem           = "system"
)

// Notification represents the notifications table row.
type Notification struct {
	ID        string
	Titre     string
	Body      string
	ClientID  *string
	Type      string
	Lu        bool
	Lien      *string
	CreatedAt time.Time
}

// MessageTemplate represents the message_templates table row.
type MessageTemplate struct {
	ID            string
	Name          string
	Content       string
	Trigger       string
	DaysThreshold *int
	IsActive      bool
	CreatedAt     time.Time
}

// MessageLog records one outbound message attempt.
type MessageLog struct {
	ID         string
	ClientID   string
	TemplateID *string
	Canal      string
	Statut     string
	Content    *string
	CreatedAt  time.Time
}
