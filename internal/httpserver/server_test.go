package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoteldesk/internal/cache"
	"hoteldesk/internal/chat"
	"hoteldesk/internal/intent"
	"hoteldesk/internal/metrics"
	"hoteldesk/internal/repo"
)

// fakeStore overrides what the handlers under test touch; the embedded nil
// interface panics on anything else.
type fakeStore struct {
	repo.Store
	admins       map[string]bool
	byNumber     map[string]*repo.Client
	byID         map[string]*repo.Client
	clients      []repo.Client
	reservations map[string][]repo.Reservation
	messageLogs  map[string][]repo.MessageLog
	roomTypes    []repo.RoomType
}

func (f *fakeStore) IsAdminPhone(_ context.Context, phone string) (bool, error) {
	return f.admins[phone], nil
}

func (f *fakeStore) FindClientByPhone(_ context.Context, number, _ string) (*repo.Client, error) {
	if c, ok := f.byNumber[number]; ok {
		return c, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) ListClients(context.Context) ([]repo.Client, error) {
	return f.clients, nil
}

func (f *fakeStore) GetClientByID(_ context.Context, id string) (*repo.Client, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) ListClientReservations(_ context.Context, clientID string) ([]repo.Reservation, error) {
	return f.reservations[clientID], nil
}

func (f *fakeStore) ListClientMessageLogs(_ context.Context, clientID string, _ int) ([]repo.MessageLog, error) {
	return f.messageLogs[clientID], nil
}

func (f *fakeStore) ListRoomTypes(context.Context) ([]repo.RoomType, error) {
	return f.roomTypes, nil
}

func newTestServer(t *testing.T, store *fakeStore, basePath string) *Server {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	redisCache := cache.New(cache.Config{Addr: mr.Addr()}, logger)
	resolver := intent.NewResolver(intent.WithPick(func(int) int { return 0 }))
	engine := chat.NewEngine(store, redisCache, resolver, metrics.Registry("test"), logger, 30*time.Minute)

	return New(":0", logger, metrics.Registry("test"), Dependencies{
		Store: store,
		Chat:  engine,
	}, basePath)
}

func doRequest(s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, "")

	rec := doRequest(s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	rec = doRequest(s, http.MethodPost, "/healthz", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBasePathMounting(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, "/hotel")

	rec := doRequest(s, http.MethodGet, "/hotel/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(s, http.MethodGet, "/hotelier/healthz", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminGate(t *testing.T) {
	store := &fakeStore{admins: map[string]bool{"+243811111111": true}}
	s := newTestServer(t, store, "")

	rec := doRequest(s, http.MethodGet, "/admin/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(s, http.MethodGet, "/admin/clients", "", map[string]string{"X-Admin-Phone": "+243999999999"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(s, http.MethodGet, "/admin/clients", "", map[string]string{"X-Admin-Phone": "+243811111111"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListClientsRecomputesScore(t *testing.T) {
	email := "alice@example.com"
	store := &fakeStore{
		admins: map[string]bool{"+243811111111": true},
		clients: []repo.Client{{
			ID:           "c-1",
			FullName:     "Mukendi Alice",
			Email:        &email,
			TotalSejours: 5,
			TotalNuits:   8,
			// Stale stored value, should not be served as-is.
			FideliteScore: 3,
		}},
	}
	s := newTestServer(t, store, "")

	rec := doRequest(s, http.MethodGet, "/admin/clients", "", map[string]string{"X-Admin-Phone": "+243811111111"})
	require.Equal(t, http.StatusOK, rec.Code)
	// 5 stays (50) + 8 nights (16, capped path unused) + email (20) = 86
	assert.Contains(t, rec.Body.String(), `"fidelite_score":86`)
	assert.Contains(t, rec.Body.String(), `"tier":"VIP"`)
}

func TestClientReservationHistory(t *testing.T) {
	store := &fakeStore{
		admins: map[string]bool{"+243811111111": true},
		byID:   map[string]*repo.Client{"c-1": {ID: "c-1", FullName: "Kabila Jean"}},
		reservations: map[string][]repo.Reservation{"c-1": {{
			ID:           "r-1",
			ClientID:     "c-1",
			RoomID:       "room-7",
			CheckInDate:  time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			CheckOutDate: time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC),
			NumberOfDays: 3,
			TotalPrice:   135,
			Status:       "active",
		}}},
	}
	s := newTestServer(t, store, "")
	headers := map[string]string{"X-Admin-Phone": "+243811111111"}

	rec := doRequest(s, http.MethodGet, "/admin/clients/c-1/reservations", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"check_in_date":"2026-08-15"`)
	assert.Contains(t, body, `"total_price":135`)
	assert.Contains(t, body, `"count":1`)

	rec = doRequest(s, http.MethodGet, "/admin/clients/c-404/reservations", "", headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientMessageHistory(t *testing.T) {
	content := "Cher(e) Kabila Jean, merci pour votre fidélité."
	store := &fakeStore{
		admins: map[string]bool{"+243811111111": true},
		byID:   map[string]*repo.Client{"c-1": {ID: "c-1", FullName: "Kabila Jean"}},
		messageLogs: map[string][]repo.MessageLog{"c-1": {{
			ID:       "log-1",
			ClientID: "c-1",
			Canal:    "whatsapp",
			Statut:   "sent",
			Content:  &content,
		}}},
	}
	s := newTestServer(t, store, "")
	headers := map[string]string{"X-Admin-Phone": "+243811111111"}

	rec := doRequest(s, http.MethodGet, "/admin/clients/c-1/messages", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"statut":"sent"`)
	assert.Contains(t, body, "Cher(e) Kabila Jean")

	// Unknown sub-resources fall through to 404.
	rec = doRequest(s, http.MethodGet, "/admin/clients/c-1/invoices", "", headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRoomTypes(t *testing.T) {
	store := &fakeStore{
		admins: map[string]bool{"+243811111111": true},
		roomTypes: []repo.RoomType{
			{ID: "rt-1", Name: "Standard", BasePrice: 45},
			{ID: "rt-2", Name: "Suite", BasePrice: 120},
		},
	}
	s := newTestServer(t, store, "")

	rec := doRequest(s, http.MethodGet, "/admin/room-types", "", map[string]string{"X-Admin-Phone": "+243811111111"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Suite")
	assert.Contains(t, rec.Body.String(), `"count":2`)
}

func TestChatAuthAndMessage(t *testing.T) {
	store := &fakeStore{byNumber: map[string]*repo.Client{
		"243812345678": {
			ID:             "c-1",
			FullName:       "Kabila Jean",
			Prenom:         "Jean",
			WhatsappNumber: "243812345678",
			FideliteScore:  45,
		},
	}}
	s := newTestServer(t, store, "")

	rec := doRequest(s, http.MethodPost, "/chat/auth", `{"whatsapp_number":"243812345678"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "session_id")
	assert.Contains(t, body, "Kabila Jean")

	var authResp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &authResp))

	rec = doRequest(s, http.MethodPost, "/chat/message",
		`{"session_id":"`+authResp.SessionID+`","message":"merci beaucoup"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"intent":"thanks"`)

	rec = doRequest(s, http.MethodGet, "/chat/session?session_id="+authResp.SessionID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// welcome + question + answer in the transcript
	assert.Equal(t, 3, strings.Count(rec.Body.String(), `"role"`))
}

func TestChatAuthUnknownNumber(t *testing.T) {
	s := newTestServer(t, &fakeStore{byNumber: map[string]*repo.Client{}}, "")

	rec := doRequest(s, http.MethodPost, "/chat/auth", `{"whatsapp_number":"243000000000"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatMessageExpiredSession(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, "")

	rec := doRequest(s, http.MethodPost, "/chat/message", `{"session_id":"gone","message":"bonjour"}`, nil)
	assert.Equal(t, http.StatusGone, rec.Code)
}
