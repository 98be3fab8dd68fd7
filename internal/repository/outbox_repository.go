package repository

import (
	"context"
	"database/sql"

	"github.com/markethub/payment-service/internal/models"
)

// AppendOutbox writes a pending event inside the surrounding transaction.
// There is intentionally no non-transactional counterpart.
func (t *sqlTx) AppendOutbox(ctx context.Context, topic string, payload []byte) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO outbox_events (topic, payload, status)
		VALUES ($1, $2, $3)
	`, topic, payload, models.OutboxPending)
	return err
}

// FetchPending returns up to limit unpublished events in insertion order.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, payload, status, created_at, published_at
		FROM outbox_events
		WHERE status = $1
		ORDER BY id
		LIMIT $2
	`, models.OutboxPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.OutboxEvent
	for rows.Next() {
		var e models.OutboxEvent
		var publishedAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.Topic, &e.Payload, &e.Status, &e.CreatedAt, &publishedAt); err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			t := publishedAt.Time
			e.PublishedAt = &t
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) MarkPublished(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE outbox_events
		SET status = $1, published_at = NOW()
		WHERE id = $2
	`, models.OutboxPublished, id)
	return err
}
