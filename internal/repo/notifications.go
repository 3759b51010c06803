package repo

import (
	"context"
	"fmt"
)

// InsertNotification appends a notification to the feed.
func (r *Repository) InsertNotification(ctx context.Context, n Notification) error {
	const q = `
INSERT INTO notifications (titre, body, client_id, type, lu, lien)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := r.pool.Exec(ctx, q, n.Titre, n.Body, n.ClientID, n.Type, n.Lu, n.Lien)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the latest notifications, newest first.
func (r *Repository) ListNotifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, titre, body, client_id, type, lu, lien, created_at
FROM notifications
ORDER BY created_at DESC
LIMIT $1;
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Titre, &n.Body, &n.ClientID, &n.Type, &n.Lu, &n.Lien, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifs = append(notifs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifs, nil
}

// MarkNotificationRead flags a notification as read.
func (r *Repository) MarkNotificationRead(ctx context.Context, id string) error {
	const q = `UPDATE notifications SET lu = TRUE WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
