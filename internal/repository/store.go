package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/markethub/payment-service/internal/interfaces"
	"github.com/markethub/payment-service/internal/models"
)

// Store owns the database handle. It is constructed once in main and passed
// down; nothing in this package keeps package-level state.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payments (
			id BIGSERIAL PRIMARY KEY,
			order_id VARCHAR(64) NOT NULL,
			amount BIGINT NOT NULL CHECK (amount > 0),
			currency VARCHAR(8) NOT NULL,
			status VARCHAR(16) NOT NULL,
			provider VARCHAR(32) NOT NULL,
			provider_ref VARCHAR(128),
			qr_url TEXT,
			checkout_url TEXT,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id)`,
		`CREATE TABLE IF NOT EXISTS refunds (
			id BIGSERIAL PRIMARY KEY,
			payment_id BIGINT NOT NULL REFERENCES payments(id),
			amount BIGINT NOT NULL CHECK (amount > 0),
			reason VARCHAR(255),
			status VARCHAR(16) NOT NULL,
			provider_ref VARCHAR(128),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refunds_payment_id ON refunds(payment_id)`,
		`CREATE TABLE IF NOT EXISTS idempotency_keys (
			id BIGSERIAL PRIMARY KEY,
			key VARCHAR(128) NOT NULL UNIQUE,
			resource_type VARCHAR(32) NOT NULL,
			resource_id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id BIGSERIAL PRIMARY KEY,
			topic VARCHAR(128) NOT NULL,
			payload JSONB NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			published_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_events_status ON outbox_events(status)`,
		`CREATE TABLE IF NOT EXISTS webhook_events (
			id BIGSERIAL PRIMARY KEY,
			provider VARCHAR(32) NOT NULL,
			event_id VARCHAR(128) NOT NULL UNIQUE,
			payload JSONB NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'received',
			received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			processed_at TIMESTAMPTZ
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTx opens one transaction, runs fn against it, and commits only when
// fn returns nil. The rollback in the deferred path also covers panics, so
// no exit leaves a transaction half-committed.
func (s *Store) WithinTx(ctx context.Context, fn func(tx interfaces.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	return scanPayment(s.db.QueryRowContext(ctx, paymentSelect+` WHERE id = $1`, id))
}

// sqlTx adapts *sql.Tx to the unit-of-work contract. It never commits or
// rolls back on its own; that stays with WithinTx.
type sqlTx struct {
	tx *sql.Tx
}
