package registration

import (
	"context"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoteldesk/internal/metrics"
	"hoteldesk/internal/repo"
)

type fakeStore struct {
	clients       map[string]*repo.Client
	rooms         map[string]*repo.Room
	roomTypes     map[string]*repo.RoomType
	reservations  []repo.Reservation
	notifications []repo.Notification
	nextID        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:   map[string]*repo.Client{},
		rooms:     map[string]*repo.Room{},
		roomTypes: map[string]*repo.RoomType{},
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return "id-" + string(rune('a'+f.nextID))
}

func (f *fakeStore) Close()                                             {}
func (f *fakeStore) Ping(context.Context) error                         { return nil }
func (f *fakeStore) RunMigrations(context.Context, fs.FS) error         { return nil }
func (f *fakeStore) IsAdminPhone(context.Context, string) (bool, error) { return false, nil }
func (f *fakeStore) GetClientByID(_ context.Context, id string) (*repo.Client, error) {
	if c, ok := f.clients[id]; ok {
		return c, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) InsertClient(_ context.Context, c repo.Client) (*repo.Client, error) {
	c.ID = f.id()
	f.clients[c.ID] = &c
	return &c, nil
}

func (f *fakeStore) FindClientByPhone(_ context.Context, number, _ string) (*repo.Client, error) {
	for _, c := range f.clients {
		if c.WhatsappNumber == number {
			return c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) FindReturningClient(_ context.Context, whatsapp, surname string) (*repo.Client, error) {
	for _, c := range f.clients {
		if c.WhatsappNumber == whatsapp {
			return c, nil
		}
		if surname != "" && strings.Contains(strings.ToLower(c.FullName), strings.ToLower(surname)) {
			return c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) ListClients(context.Context) ([]repo.Client, error) {
	out := make([]repo.Client, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) ListRooms(context.Context) ([]repo.Room, error) { return nil, nil }
func (f *fakeStore) ListAvailableRooms(context.Context, string) ([]repo.Room, error) {
	return nil, nil
}

func (f *fakeStore) GetRoom(_ context.Context, id string) (*repo.Room, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) UpdateRoomStatus(_ context.Context, id, status string) error {
	r, ok := f.rooms[id]
	if !ok {
		return repo.ErrNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeStore) GetRoomType(_ context.Context, id string) (*repo.RoomType, error) {
	if rt, ok := f.roomTypes[id]; ok {
		return rt, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) ListRoomTypes(context.Context) ([]repo.RoomType, error) { return nil, nil }

func (f *fakeStore) InsertReservation(_ context.Context, res repo.Reservation) (*repo.Reservation, error) {
	res.ID = f.id()
	f.reservations = append(f.reservations, res)
	return &res, nil
}

func (f *fakeStore) ListClientReservations(context.Context, string) ([]repo.Reservation, error) {
	return f.reservations, nil
}

func (f *fakeStore) InsertNotification(_ context.Context, n repo.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) ListNotifications(context.Context, int) ([]repo.Notification, error) {
	return f.notifications, nil
}
func (f *fakeStore) MarkNotificationRead(context.Context, string) error { return nil }
func (f *fakeStore) ListActiveTemplates(context.Context, string) ([]repo.MessageTemplate, error) {
	return nil, nil
}
func (f *fakeStore) InsertMessageLog(context.Context, repo.MessageLog) error { return nil }
func (f *fakeStore) ListClientMessageLogs(context.Context, string, int) ([]repo.MessageLog, error) {
	return nil, nil
}

func seedRoom(f *fakeStore, status string) string {
	f.roomTypes["rt-1"] = &repo.RoomType{ID: "rt-1", Name: "Standard", BasePrice: 45}
	f.rooms["room-1"] = &repo.Room{ID: "room-1", RoomNumber: "101", RoomTypeID: "rt-1", Status: status}
	return "room-1"
}

func newTestService(f *fakeStore) *Service {
	logger := slog.New(slog.NewTextHandler(testWriter{}, nil))
	svc := New(f, metrics.Registry("test"), logger)
	svc.WithClock(func() time.Time { return time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC) })
	svc.WithPick(func(int) int { return 0 })
	return svc
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestRegisterNewClient(t *testing.T) {
	store := newFakeStore()
	roomID := seedRoom(store, repo.RoomAvailable)
	svc := newTestService(store)

	res, err := svc.Register(context.Background(), Input{
		Nom:            "Kabila",
		Prenom:         "Jean",
		WhatsappNumber: "243812345678",
		Email:          "jean@example.com",
		NumberOfDays:   3,
		RoomID:         roomID,
	})
	require.NoError(t, err)

	assert.False(t, res.Returning)
	assert.Equal(t, 1, res.Client.TotalSejours)
	assert.Equal(t, 3, res.Client.TotalNuits)
	// 1 stay (10) + 3 nights (6) + email (20)
	assert.Equal(t, 36, res.Client.FideliteScore)
	assert.Equal(t, "Kabila Jean", res.Client.FullName)
	assert.Equal(t, "HT2608-AAAA", res.Client.Matricule)
	assert.False(t, res.Client.IsDuplicate)

	assert.Equal(t, 3, res.Reservation.NumberOfDays)
	assert.Equal(t, 135.0, res.Reservation.TotalPrice)
	assert.Equal(t, repo.RoomOccupied, store.rooms[roomID].Status)

	require.Len(t, store.notifications, 1)
	assert.Equal(t, repo.NotifClientRegistered, store.notifications[0].Type)
}

func TestRegisterReturningClientByWhatsapp(t *testing.T) {
	store := newFakeStore()
	roomID := seedRoom(store, repo.RoomAvailable)
	store.clients["prev"] = &repo.Client{
		ID:             "prev",
		FullName:       "Kabila Jean",
		WhatsappNumber: "243812345678",
		TotalSejours:   4,
		TotalNuits:     9,
		FideliteScore:  55,
	}
	svc := newTestService(store)

	res, err := svc.Register(context.Background(), Input{
		Nom:            "Kabila",
		Prenom:         "Jean",
		WhatsappNumber: "243812345678",
		NumberOfDays:   2,
		RoomID:         roomID,
	})
	require.NoError(t, err)

	assert.True(t, res.Returning)
	assert.True(t, res.Client.IsDuplicate)
	assert.Equal(t, 5, res.Client.TotalSejours)
	assert.Equal(t, 11, res.Client.TotalNuits)
	assert.Equal(t, 65, res.Client.FideliteScore)

	require.Len(t, store.notifications, 1)
	assert.Equal(t, repo.NotifDuplicateFound, store.notifications[0].Type)
	assert.Contains(t, store.notifications[0].Body, "65")
}

func TestRegisterReturningClientBySurname(t *testing.T) {
	store := newFakeStore()
	roomID := seedRoom(store, repo.RoomAvailable)
	store.clients["prev"] = &repo.Client{
		ID:             "prev",
		FullName:       "Mukendi Tshibanda Alice",
		WhatsappNumber: "243990000000",
		TotalSejours:   1,
		TotalNuits:     2,
		FideliteScore:  95,
	}
	svc := newTestService(store)

	res, err := svc.Register(context.Background(), Input{
		Nom:            "mukendi",
		Prenom:         "Alice",
		WhatsappNumber: "243811111111",
		NumberOfDays:   1,
		RoomID:         roomID,
	})
	require.NoError(t, err)

	assert.True(t, res.Returning)
	// Repeat bonus clamps at 100.
	assert.Equal(t, 100, res.Client.FideliteScore)
}

func TestRegisterValidation(t *testing.T) {
	store := newFakeStore()
	roomID := seedRoom(store, repo.RoomAvailable)
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, Input{Prenom: "Jean", WhatsappNumber: "243", RoomID: roomID})
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = svc.Register(ctx, Input{Nom: "Kabila", Prenom: "Jean", RoomID: roomID})
	assert.ErrorIs(t, err, ErrMissingWhatsapp)

	_, err = svc.Register(ctx, Input{Nom: "Kabila", Prenom: "Jean", WhatsappNumber: "243"})
	assert.ErrorIs(t, err, ErrMissingRoom)
}

func TestRegisterRoomNotAvailable(t *testing.T) {
	store := newFakeStore()
	roomID := seedRoom(store, repo.RoomOccupied)
	svc := newTestService(store)

	_, err := svc.Register(context.Background(), Input{
		Nom:            "Kabila",
		Prenom:         "Jean",
		WhatsappNumber: "243812345678",
		RoomID:         roomID,
	})
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestRegisterDefaultsMinimumStay(t *testing.T) {
	store := newFakeStore()
	roomID := seedRoom(store, repo.RoomAvailable)
	svc := newTestService(store)

	res, err := svc.Register(context.Background(), Input{
		Nom:            "Kabila",
		Prenom:         "Jean",
		WhatsappNumber: "243812345678",
		NumberOfDays:   0,
		RoomID:         roomID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reservation.NumberOfDays)
	assert.Equal(t, 1, res.Client.TotalNuits)
}

func TestMatriculeFormat(t *testing.T) {
	store := newFakeStore()
	seedRoom(store, repo.RoomAvailable)
	svc := newTestService(store)

	m := svc.generateMatricule()
	assert.Regexp(t, `^HT\d{4}-[A-Z0-9]{4}$`, m)
	assert.True(t, strings.HasPrefix(m, "HT2608-"))
}
