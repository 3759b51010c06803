// Package chat runs the concierge chatbot over two channels: web sessions
// stored in Redis and inbound WhatsApp messages.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hoteldesk/internal/cache"
	"hoteldesk/internal/intent"
	"hoteldesk/internal/loyalty"
	"hoteldesk/internal/metrics"
	"hoteldesk/internal/repo"
)

// Errors surfaced to the HTTP layer.
var (
	ErrUnknownNumber  = errors.New("chat: no client matches this whatsapp number")
	ErrSessionExpired = errors.New("chat: session not found or expired")
)

const (
	sessionKeyPrefix   = "chat:session:"
	maxSessionMessages = 50
)

// Message is one exchange line kept in the session transcript.
type Message struct {
	Role string    `json:"role"` // "client" or "bot"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is the authenticated web-chat state cached in Redis.
type Session struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	FullName   string    `json:"full_name"`
	GivenName  string    `json:"given_name"`
	Score      int       `json:"score"`
	IsVIP      bool      `json:"is_vip"`
	Messages   []Message `json:"messages"`
	StartedAt  time.Time `json:"started_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func (s *Session) client() *intent.Client {
	return &intent.Client{
		FullName:  s.FullName,
		GivenName: s.GivenName,
		Score:     s.Score,
	}
}

func (s *Session) append(role, text string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Text: text, At: at})
	if len(s.Messages) > maxSessionMessages {
		s.Messages = s.Messages[len(s.Messages)-maxSessionMessages:]
	}
	s.LastSeenAt = at
}

// Engine authenticates clients by WhatsApp number and answers their messages
// through the intent resolver.
type Engine struct {
	store      repo.Store
	cache      *cache.Redis
	resolver   *intent.Resolver
	metrics    *metrics.Metrics
	logger     *slog.Logger
	sessionTTL time.Duration
	now        func() time.Time
}

// NewEngine wires the chatbot engine.
func NewEngine(store repo.Store, redisCache *cache.Redis, resolver *intent.Resolver, metricRegistry *metrics.Metrics, logger *slog.Logger, sessionTTL time.Duration) *Engine {
	return &Engine{
		store:      store,
		cache:      redisCache,
		resolver:   resolver,
		metrics:    metricRegistry,
		logger:     logger.With("component", "chat"),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Authenticate opens a session for the client matching the given phone
// number. The welcome line is personalised and calls out VIP status.
func (e *Engine) Authenticate(ctx context.Context, number, countryCode string) (*Session, string, error) {
	client, err := e.store.FindClientByPhone(ctx, number, countryCode)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrUnknownNumber
		}
		return nil, "", fmt.Errorf("lookup client: %w", err)
	}

	now := e.now()
	session := &Session{
		ID:         uuid.NewString(),
		ClientID:   client.ID,
		FullName:   client.FullName,
		GivenName:  client.Prenom,
		Score:      client.FideliteScore,
		IsVIP:      client.IsVIP || loyalty.TierFor(client.FideliteScore) == loyalty.TierVIP,
		StartedAt:  now,
		LastSeenAt: now,
	}

	welcome := e.welcome(session)
	session.append("bot", welcome, now)

	if err := e.saveSession(ctx, session); err != nil {
		return nil, "", err
	}

	e.logger.Info("chat session opened", "session_id", session.ID, "client_id", client.ID)
	return session, welcome, nil
}

func (e *Engine) welcome(s *Session) string {
	name := s.FullName
	if name == "" {
		name = s.GivenName
	}
	if s.IsVIP {
		return fmt.Sprintf("Bienvenue %s ! 🌟 En tant que client VIP (fidélité %d%%), toute l'équipe est à votre disposition. Comment puis-je vous aider ?", name, s.Score)
	}
	return fmt.Sprintf("Bienvenue %s ! Je suis l'assistant virtuel de l'hôtel. Comment puis-je vous aider ?", name)
}

// HandleMessage answers one client message in an open session.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, text string) (string, string, error) {
	// Counted at receipt, like the WhatsApp channel.
	e.metrics.ChatIncomingMessages.WithLabelValues("web").Inc()

	session, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return "", "", err
	}

	intentName := e.resolver.Resolve(text)
	reply := e.resolver.Respond(intentName, session.client())

	e.metrics.IntentMatches.WithLabelValues(intentName).Inc()
	e.metrics.ChatReplies.WithLabelValues("web").Inc()

	now := e.now()
	session.append("client", text, now)
	session.append("bot", reply, now)
	if err := e.saveSession(ctx, session); err != nil {
		e.logger.Error("failed saving chat session", "session_id", sessionID, "error", err)
	}

	e.logger.Info("chat message handled", "session_id", sessionID, "intent", intentName)
	return reply, intentName, nil
}

// GetSession returns the cached session transcript and slides its TTL.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	session, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Touch(ctx, sessionKeyPrefix+sessionID, e.sessionTTL); err != nil {
		e.logger.Warn("failed extending session ttl", "session_id", sessionID, "error", err)
	}
	return session, nil
}

// EndSession drops the session from the cache.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	return e.cache.Delete(ctx, sessionKeyPrefix+sessionID)
}

func (e *Engine) saveSession(ctx context.Context, s *Session) error {
	if err := e.cache.SetJSON(ctx, sessionKeyPrefix+s.ID, s, e.sessionTTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (e *Engine) loadSession(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	found, err := e.cache.GetJSON(ctx, sessionKeyPrefix+sessionID, &session)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil, ErrSessionExpired
	}
	return &session, nil
}
