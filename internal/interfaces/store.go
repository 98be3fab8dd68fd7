package interfaces

import (
	"context"

	"github.com/markethub/payment-service/internal/models"
)

// Tx is the set of writes and transaction-consistent reads available inside
// one unit of work. Every multi-step mutation in the service layer runs
// against exactly one Tx; the outbox append is deliberately reachable only
// here so an event can never be written outside the transaction that
// produced the state change it announces.
type Tx interface {
	InsertPayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	// UpdatePaymentStatus performs a compare-and-swap on the payment status
	// and returns the number of rows changed. Zero rows means the payment
	// was no longer in the expected status.
	UpdatePaymentStatus(ctx context.Context, id int64, from, to models.PaymentStatus) (int64, error)
	TouchPayment(ctx context.Context, id int64) error

	InsertRefund(ctx context.Context, r *models.Refund) error
	GetRefund(ctx context.Context, id int64) (*models.Refund, error)

	GetIdempotencyRecord(ctx context.Context, key string) (*models.IdempotencyRecord, error)
	InsertIdempotencyRecord(ctx context.Context, rec *models.IdempotencyRecord) error

	AppendOutbox(ctx context.Context, topic string, payload []byte) error

	// InsertWebhookEvent records a provider callback. It reports false when
	// the provider event id was already seen, in which case nothing was
	// written.
	InsertWebhookEvent(ctx context.Context, evt *models.WebhookEvent) (bool, error)
	MarkWebhookProcessed(ctx context.Context, id int64) error
}

// Store hands out units of work and read-only lookups.
type Store interface {
	// WithinTx runs fn inside one database transaction. A nil return from fn
	// commits; any error rolls back every write fn performed.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
}

// OutboxQueue is the publisher-side view of the outbox table.
type OutboxQueue interface {
	// FetchPending returns pending events oldest first, up to limit.
	FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64) error
}
