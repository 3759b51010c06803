// Package registration runs the front-desk client enrollment workflow:
// returning-client detection, loyalty carry-forward, matricule assignment,
// reservation creation and the room board update.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"hoteldesk/internal/loyalty"
	"hoteldesk/internal/metrics"
	"hoteldesk/internal/repo"
)

// Validation errors surfaced to the HTTP layer.
var (
	ErrMissingName     = errors.New("registration: nom and prenom are required")
	ErrMissingWhatsapp = errors.New("registration: whatsapp number is required")
	ErrMissingRoom     = errors.New("registration: room is required")
	ErrRoomUnavailable = errors.New("registration: room is not available")
)

// Input is the registration form payload.
type Input struct {
	Nom                 string
	Postnom             string
	Prenom              string
	DateNaissance       *time.Time
	Adresse             string
	PaysOrigine         string
	PhoneNumber         string
	WhatsappNumber      string
	WhatsappCountryCode string
	Email               string
	DocumentType        string
	Commentaire         string
	NumberOfDays        int
	RoomID              string
	ByReceptionist      bool
}

// Result reports what the workflow created.
type Result struct {
	Client      *repo.Client
	Reservation *repo.Reservation
	Returning   bool
}

// Service wires the registration workflow.
type Service struct {
	store   repo.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	pick    func(n int) int
	now     func() time.Time
}

// New builds the service. pick and now are replaceable for tests; nil picks
// the defaults.
func New(store repo.Store, metricRegistry *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		metrics: metricRegistry,
		logger:  logger.With("component", "registration"),
		pick:    rand.Intn,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithPick overrides the matricule random source. Test hook.
func (s *Service) WithPick(pick func(n int) int) *Service {
	s.pick = pick
	return s
}

// Register enrolls a client and opens their stay. A match on WhatsApp number
// or surname flags the registration as a returning visit: the previous
// counters are carried forward and incremented, and the loyalty score gets
// the flat repeat bonus, capped at 100.
func (s *Service) Register(ctx context.Context, in Input) (*Result, error) {
	if strings.TrimSpace(in.Nom) == "" || strings.TrimSpace(in.Prenom) == "" {
		return nil, ErrMissingName
	}
	if strings.TrimSpace(in.WhatsappNumber) == "" {
		return nil, ErrMissingWhatsapp
	}
	if in.RoomID == "" {
		return nil, ErrMissingRoom
	}
	if in.NumberOfDays < 1 {
		in.NumberOfDays = 1
	}

	room, err := s.store.GetRoom(ctx, in.RoomID)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room.Status != repo.RoomAvailable {
		return nil, ErrRoomUnavailable
	}
	roomType, err := s.store.GetRoomType(ctx, room.RoomTypeID)
	if err != nil {
		return nil, fmt.Errorf("load room type: %w", err)
	}

	previous, err := s.store.FindReturningClient(ctx, in.WhatsappNumber, in.Nom)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("probe returning client: %w", err)
	}
	returning := previous != nil

	fullName := strings.TrimSpace(strings.Join([]string{in.Nom, in.Postnom, in.Prenom}, " "))
	fullName = strings.Join(strings.Fields(fullName), " ")

	client := repo.Client{
		Nom:                 in.Nom,
		Postnom:             optional(in.Postnom),
		Prenom:              in.Prenom,
		FullName:            fullName,
		Matricule:           s.generateMatricule(),
		DateNaissance:       in.DateNaissance,
		Adresse:             optional(in.Adresse),
		PaysOrigine:         optional(in.PaysOrigine),
		PhoneNumber:         optional(in.PhoneNumber),
		WhatsappNumber:      in.WhatsappNumber,
		WhatsappCountryCode: countryCodeOrDefault(in.WhatsappCountryCode),
		Email:               optional(in.Email),
		Nationality:         optional(in.PaysOrigine),
		DocumentType:        optional(in.DocumentType),
		Commentaire:         optional(in.Commentaire),
		Tags:                []string{},
		Statut:              "actif",
		AttribuePar:         attributedBy(in.ByReceptionist),
		IsDuplicate:         returning,
	}

	if returning {
		client.TotalSejours = previous.TotalSejours + 1
		client.TotalNuits = previous.TotalNuits + in.NumberOfDays
		client.FideliteScore = loyalty.RepeatScore(previous.FideliteScore)
	} else {
		client.TotalSejours = 1
		client.TotalNuits = in.NumberOfDays
		client.FideliteScore = loyalty.Score(1, in.NumberOfDays, client.HasEmail())
	}

	inserted, err := s.store.InsertClient(ctx, client)
	if err != nil {
		s.metrics.Errors.WithLabelValues("registration").Inc()
		return nil, fmt.Errorf("insert client: %w", err)
	}

	checkIn := s.now().Truncate(24 * time.Hour)
	reservation := repo.Reservation{
		ClientID:     inserted.ID,
		RoomID:       room.ID,
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, in.NumberOfDays),
		NumberOfDays: in.NumberOfDays,
		TotalPrice:   roomType.BasePrice * float64(in.NumberOfDays),
		Status:       "active",
		Notes:        optional(in.Commentaire),
		CreatedBy:    attributedBy(in.ByReceptionist),
	}
	insertedRes, err := s.store.InsertReservation(ctx, reservation)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	if err := s.store.UpdateRoomStatus(ctx, room.ID, repo.RoomOccupied); err != nil {
		return nil, fmt.Errorf("occupy room: %w", err)
	}

	s.notify(ctx, inserted, room, returning)

	kind := "new"
	if returning {
		kind = "returning"
	}
	s.metrics.Registrations.WithLabelValues(kind).Inc()
	s.logger.Info("client registered",
		"client_id", inserted.ID,
		"matricule", inserted.Matricule,
		"room", room.RoomNumber,
		"returning", returning,
	)

	return &Result{Client: inserted, Reservation: insertedRes, Returning: returning}, nil
}

func (s *Service) notify(ctx context.Context, client *repo.Client, room *repo.Room, returning bool) {
	n := repo.Notification{
		ClientID: &client.ID,
	}
	if returning {
		n.Titre = "Client fidèle détecté"
		n.Body = fmt.Sprintf("%s est un client récurrent. Fidélité: %d%%", client.FullName, client.FideliteScore)
		n.Type = repo.NotifDuplicateFound
	} else {
		n.Titre = "Nouveau client enregistré"
		n.Body = fmt.Sprintf("%s a été enregistré dans la chambre %s", client.FullName, room.RoomNumber)
		n.Type = repo.NotifClientRegistered
	}
	if err := s.store.InsertNotification(ctx, n); err != nil {
		s.logger.Error("failed inserting notification", "client_id", client.ID, "error", err)
	}
}

const matriculeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateMatricule builds a reference like HT2608-K3QZ from the current
// year, month and a random suffix.
func (s *Service) generateMatricule() string {
	now := s.now()
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = matriculeCharset[s.pick(len(matriculeCharset))]
	}
	return fmt.Sprintf("HT%02d%02d-%s", now.Year()%100, int(now.Month()), suffix)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func countryCodeOrDefault(code string) string {
	if strings.TrimSpace(code) == "" {
		return "+243"
	}
	return code
}

func attributedBy(receptionist bool) string {
	if receptionist {
		return "receptionniste"
	}
	return "admin"
}
