package repo

import (
	"context"
	"fmt"
)

// ListActiveTemplates returns active outbound templates, optionally filtered
// by trigger.
func (r *Repository) ListActiveTemplates(ctx context.Context, trigger string) ([]MessageTemplate, error) {
	const q = `
SELECT id, name, content, trigger, days_threshold, is_active, created_at
FROM message_templates
WHERE is_active = TRUE AND ($1 = '' OR trigger = $1)
ORDER BY name;
`
	rows, err := r.pool.Query(ctx, q, trigger)
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

// InsertMessageLog records an outbound message attempt.
func (r *Repository) InsertMessageLog(ctx context.Context, l MessageLog) error {
	const q = `
INSERT INTO message_logs (client_id, template_id, canal, statut, content)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := r.pool.Exec(ctx, q, l.ClientID, l.TemplateID, l.Canal, l.Statut, l.Content)
	if err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}
	return nil
}

// ListClientMessageLogs returns a client's outbound message history.
func (r *Repository) ListClientMessageLogs(ctx context.Context, clientID string, limit int) ([]MessageLog, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, client_id, template_id, canal, statut, content, created_at
FROM message_logs
WHERE client_id = $1
ORDER BY created_at DESC
LIMIT $2;
`
	rows, err := r.pool.Query(ctx, q, clientID, limit)
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
