package chat

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoteldesk/internal/cache"
	"hoteldesk/internal/intent"
	"hoteldesk/internal/metrics"
	"hoteldesk/internal/repo"
)

// stubStore implements only the lookup the engine touches; every other
// Store method panics via the embedded nil interface.
type stubStore struct {
	repo.Store
	byNumber map[string]*repo.Client
}

func (s *stubStore) FindClientByPhone(_ context.Context, number, _ string) (*repo.Client, error) {
	if c, ok := s.byNumber[number]; ok {
		return c, nil
	}
	return nil, repo.ErrNotFound
}

func newTestEngine(t *testing.T, store *stubStore) *Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	redisCache := cache.New(cache.Config{Addr: mr.Addr()}, logger)
	resolver := intent.NewResolver(intent.WithPick(func(int) int { return 0 }))
	return NewEngine(store, redisCache, resolver, metrics.Registry("test"), logger, 30*time.Minute)
}

func TestAuthenticateOpensSession(t *testing.T) {
	store := &stubStore{byNumber: map[string]*repo.Client{
		"243812345678": {
			ID:             "c-1",
			FullName:       "Kabila Jean",
			Prenom:         "Jean",
			WhatsappNumber: "243812345678",
			FideliteScore:  45,
		},
	}}
	engine := newTestEngine(t, store)

	session, welcome, err := engine.Authenticate(context.Background(), "243812345678", "+243")
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "c-1", session.ClientID)
	assert.False(t, session.IsVIP)
	assert.Contains(t, welcome, "Kabila Jean")

	loaded, err := engine.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ClientID, loaded.ClientID)
	// The welcome line is the first transcript entry.
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "bot", loaded.Messages[0].Role)
}

func TestAuthenticateVIPWelcome(t *testing.T) {
	store := &stubStore{byNumber: map[string]*repo.Client{
		"243990000000": {
			ID:             "c-2",
			FullName:       "Mukendi Alice",
			Prenom:         "Alice",
			WhatsappNumber: "243990000000",
			FideliteScore:  85,
		},
	}}
	engine := newTestEngine(t, store)

	session, welcome, err := engine.Authenticate(context.Background(), "243990000000", "+243")
	require.NoError(t, err)
	assert.True(t, session.IsVIP)
	assert.Contains(t, welcome, "VIP")
	assert.Contains(t, welcome, "85")
}

func TestAuthenticateUnknownNumber(t *testing.T) {
	engine := newTestEngine(t, &stubStore{byNumber: map[string]*repo.Client{}})

	_, _, err := engine.Authenticate(context.Background(), "243000000000", "+243")
	assert.ErrorIs(t, err, ErrUnknownNumber)
}

func TestHandleMessageResolvesAndRecords(t *testing.T) {
	store := &stubStore{byNumber: map[string]*repo.Client{
		"243812345678": {
			ID:             "c-1",
			FullName:       "Kabila Jean",
			Prenom:         "Jean",
			WhatsappNumber: "243812345678",
			FideliteScore:  45,
		},
	}}
	engine := newTestEngine(t, store)

	session, _, err := engine.Authenticate(context.Background(), "243812345678", "+243")
	require.NoError(t, err)

	reply, intentName, err := engine.HandleMessage(context.Background(), session.ID, "quel est mon score de fidélité ?")
	require.NoError(t, err)
	assert.Equal(t, "loyalty_status", intentName)
	assert.Contains(t, reply, "45")

	loaded, err := engine.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	// welcome + question + answer
	require.Len(t, loaded.Messages, 3)
	assert.Equal(t, "client", loaded.Messages[1].Role)
	assert.Equal(t, "bot", loaded.Messages[2].Role)
}

func TestHandleMessageExpiredSession(t *testing.T) {
	engine := newTestEngine(t, &stubStore{byNumber: map[string]*repo.Client{}})

	counter := engine.metrics.ChatIncomingMessages.WithLabelValues("web")
	before := testutil.ToFloat64(counter)

	_, _, err := engine.HandleMessage(context.Background(), "nope", "bonjour")
	assert.ErrorIs(t, err, ErrSessionExpired)
	// Receipt is counted even when the session is gone.
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestEndSession(t *testing.T) {
	store := &stubStore{byNumber: map[string]*repo.Client{
		"243812345678": {ID: "c-1", FullName: "Kabila Jean", WhatsappNumber: "243812345678"},
	}}
	engine := newTestEngine(t, store)

	session, _, err := engine.Authenticate(context.Background(), "243812345678", "+243")
	require.NoError(t, err)
	require.NoError(t, engine.EndSession(context.Background(), session.ID))

	_, err = engine.GetSession(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionTranscriptCap(t *testing.T) {
	s := &Session{}
	for i := 0; i < maxSessionMessages+10; i++ {
		s.append("client", "msg", time.Now())
	}
	assert.Len(t, s.Messages, maxSessionMessages)
}
