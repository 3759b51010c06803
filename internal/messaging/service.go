package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hoteldesk/internal/loyalty"
	"hoteldesk/internal/metrics"
	"hoteldesk/internal/repo"
)

// Sender delivers a rendered message to a client's WhatsApp number.
type Sender interface {
	SendToNumber(ctx context.Context, number, text string) error
}

// Service runs the outbound messaging workflow: category selection,
// template rendering, delivery and the message_logs / notifications trail.
type Service struct {
	store      repo.Store
	sender     Sender
	composer   *Composer
	metrics    *metrics.Metrics
	logger     *slog.Logger
	chatbotURL string
}

// New wires the messaging service.
func New(store repo.Store, sender Sender, composer *Composer, metricRegistry *metrics.Metrics, logger *slog.Logger, chatbotURL string) *Service {
	return &Service{
		store:      store,
		sender:     sender,
		composer:   composer,
		metrics:    metricRegistry,
		logger:     logger.With("component", "messaging"),
		chatbotURL: chatbotURL,
	}
}

// SendRequest describes one outbound send.
type SendRequest struct {
	ClientID string
	Trigger  string
	WithLink bool
}

// SendResult reports what was sent.
type SendResult struct {
	Category loyalty.Category
	Text     string
	Statut   string
}

// SendSmart picks the message category for the client, renders a text and
// delivers it over WhatsApp. Stored active templates for the category take
// precedence over the built-in texts. Every attempt is recorded in
// message_logs; successful sends also raise a bot_envoi notification.
func (s *Service) SendSmart(ctx context.Context, req SendRequest) (*SendResult, error) {
	client, err := s.store.GetClientByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}

	profile := loyalty.Profile{
		IsVIP:      client.IsVIP,
		IsDup:      client.IsDuplicate,
		Score:      client.FideliteScore,
		TotalStays: client.TotalSejours,
	}
	category := loyalty.SelectCategory(profile, req.Trigger)

	var templateID *string
	var stored []string
	rows, err := s.store.ListActiveTemplates(ctx, string(category))
	if err != nil {
		s.logger.Warn("falling back to built-in templates", "category", category, "error", err)
	} else {
		for i := range rows {
			stored = append(stored, rows[i].Content)
		}
		if len(rows) == 1 {
			templateID = &rows[0].ID
		}
	}

	text := s.composer.FromTemplates(stored, category, client.DisplayName())
	if req.WithLink {
		text = WithChatbotLink(text, s.chatbotURL)
	}

	statut := "sent"
	start := time.Now()
	sendErr := s.sender.SendToNumber(ctx, client.WhatsappNumber, text)
	if sendErr != nil {
		statut = "failed"
	}
	s.metrics.OutboundLatency.WithLabelValues(statut).Observe(time.Since(start).Seconds())
	s.metrics.OutboundMessages.WithLabelValues(string(category), statut).Inc()

	logEntry := repo.MessageLog{
		ClientID:   client.ID,
		TemplateID: templateID,
		Canal:      "whatsapp",
		Statut:     statut,
		Content:    &text,
	}
	if err := s.store.InsertMessageLog(ctx, logEntry); err != nil {
		s.logger.Error("failed recording message log", "client_id", client.ID, "error", err)
	}

	if sendErr != nil {
		s.metrics.Errors.WithLabelValues("messaging").Inc()
		return &SendResult{Category: category, Text: text, Statut: statut},
			fmt.Errorf("send whatsapp message: %w", sendErr)
	}

	notif := repo.Notification{
		Titre:    "Message envoyé",
		Body:     fmt.Sprintf("Message %q envoyé à %s", category, client.DisplayName()),
		ClientID: &client.ID,
		Type:     repo.NotifBotSent,
	}
	if err := s.store.InsertNotification(ctx, notif); err != nil {
		s.logger.Error("failed recording notification", "client_id", client.ID, "error", err)
	}

	s.logger.Info("outbound message sent", "client_id", client.ID, "category", category)
	return &SendResult{Category: category, Text: text, Statut: statut}, nil
}
