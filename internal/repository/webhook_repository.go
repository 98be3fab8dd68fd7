package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/markethub/payment-service/internal/models"
)

// InsertWebhookEvent records a provider callback, first-seen wins. The
// unique constraint on event_id is the dedup mechanism; a conflicting insert
// touches zero rows and the method reports false.
func (t *sqlTx) InsertWebhookEvent(ctx context.Context, evt *models.WebhookEvent) (bool, error) {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO webhook_events (provider, event_id, payload, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id, received_at
	`, evt.Provider, evt.EventID, evt.Payload, models.WebhookReceived).Scan(&evt.ID, &evt.ReceivedAt)
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row for a duplicate.
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	evt.Status = models.WebhookReceived
	return true, nil
}

func (t *sqlTx) MarkWebhookProcessed(ctx context.Context, id int64) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE webhook_events
		SET status = $1, processed_at = NOW()
		WHERE id = $2
	`, models.WebhookProcessed, id)
	return err
}
