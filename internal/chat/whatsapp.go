package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"hoteldesk/internal/cache"
	"hoteldesk/internal/intent"
	"hoteldesk/internal/metrics"
	"hoteldesk/internal/repo"
	"hoteldesk/internal/wa"
)

const (
	profileKeyPrefix = "chat:profile:"
	profileTTL       = 10 * time.Minute
)

// TextSender sends a text reply to a WhatsApp JID.
type TextSender interface {
	SendText(ctx context.Context, to types.JID, text string) error
}

// WhatsAppProcessor answers inbound WhatsApp messages with the intent
// resolver. Senders whose number matches a registered client get the
// personalised treatment; everyone else chats as an anonymous visitor with
// the identification prompt on gated intents.
type WhatsAppProcessor struct {
	store    repo.Store
	cache    *cache.Redis
	resolver *intent.Resolver
	sender   TextSender
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewWhatsAppProcessor wires the WhatsApp chat channel.
func NewWhatsAppProcessor(store repo.Store, redisCache *cache.Redis, resolver *intent.Resolver, sender TextSender, metricRegistry *metrics.Metrics, logger *slog.Logger) *WhatsAppProcessor {
	return &WhatsAppProcessor{
		store:    store,
		cache:    redisCache,
		resolver: resolver,
		sender:   sender,
		metrics:  metricRegistry,
		logger:   logger.With("component", "chat_wa"),
	}
}

// cachedProfile is the slim client view cached per sender number.
type cachedProfile struct {
	Known     bool   `json:"known"`
	FullName  string `json:"full_name"`
	GivenName string `json:"given_name"`
	Score     int    `json:"score"`
}

// ProcessMessage implements wa.MessageProcessor.
func (p *WhatsAppProcessor) ProcessMessage(ctx context.Context, evt *events.Message) {
	text := wa.TextContent(evt)
	if text == "" {
		return
	}
	if evt.Info.IsFromMe || evt.Info.IsGroup {
		return
	}

	senderNumber := evt.Info.Sender.User
	client := p.lookupClient(ctx, senderNumber)

	intentName := p.resolver.Resolve(text)
	reply := p.resolver.Respond(intentName, client)
	p.metrics.IntentMatches.WithLabelValues(intentName).Inc()

	replyCtx := wa.WithReply(ctx, evt)
	if err := p.sender.SendText(replyCtx, evt.Info.Chat, reply); err != nil {
		p.metrics.Errors.WithLabelValues("chat_wa").Inc()
		p.logger.Error("failed sending chat reply", "to", senderNumber, "error", err)
		return
	}

	p.logger.Info("whatsapp chat reply sent", "to", senderNumber, "intent", intentName)
}

// lookupClient resolves the sender to a registered client, with a short
// Redis cache in front of the store. Unknown numbers are cached too so the
// store is not hit on every message of an anonymous conversation.
func (p *WhatsAppProcessor) lookupClient(ctx context.Context, number string) *intent.Client {
	key := profileKeyPrefix + number

	var cached cachedProfile
	if found, err := p.cache.GetJSON(ctx, key, &cached); err == nil && found {
		if !cached.Known {
			return nil
		}
		return &intent.Client{FullName: cached.FullName, GivenName: cached.GivenName, Score: cached.Score}
	}

	record, err := p.store.FindClientByPhone(ctx, number, "")
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			p.logger.Error("client lookup failed", "number", number, "error", err)
			return nil
		}
		if cacheErr := p.cache.SetJSON(ctx, key, cachedProfile{}, profileTTL); cacheErr != nil {
			p.logger.Warn("failed caching unknown sender", "error", cacheErr)
		}
		return nil
	}

	profile := cachedProfile{
		Known:     true,
		FullName:  record.FullName,
		GivenName: record.Prenom,
		Score:     record.FideliteScore,
	}
	if err := p.cache.SetJSON(ctx, key, profile, profileTTL); err != nil {
		p.logger.Warn("failed caching sender profile", "error", err)
	}

	return &intent.Client{FullName: profile.FullName, GivenName: profile.GivenName, Score: profile.Score}
}
