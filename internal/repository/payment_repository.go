package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/markethub/payment-service/internal/models"
)

const paymentSelect = `
	SELECT id, order_id, amount, currency, status, provider,
	       COALESCE(provider_ref, ''), COALESCE(qr_url, ''), COALESCE(checkout_url, ''),
	       expires_at, created_at, updated_at
	FROM payments`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	var expiresAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Amount, &p.Currency, &p.Status, &p.Provider,
		&p.ProviderRef, &p.QRURL, &p.CheckoutURL,
		&expiresAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		p.ExpiresAt = &t
	}
	return &p, nil
}

func (t *sqlTx) InsertPayment(ctx context.Context, p *models.Payment) error {
	return t.tx.QueryRowContext(ctx, `
		INSERT INTO payments (order_id, amount, currency, status, provider, provider_ref, qr_url, checkout_url, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, p.OrderID, p.Amount, p.Currency, p.Status, p.Provider,
		nullString(p.ProviderRef), nullString(p.QRURL), nullString(p.CheckoutURL), nullTime(p.ExpiresAt),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (t *sqlTx) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	return scanPayment(t.tx.QueryRowContext(ctx, paymentSelect+` WHERE id = $1`, id))
}

func (t *sqlTx) UpdatePaymentStatus(ctx context.Context, id int64, from, to models.PaymentStatus) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (t *sqlTx) TouchPayment(ctx context.Context, id int64) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE payments SET updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (t *sqlTx) InsertRefund(ctx context.Context, r *models.Refund) error {
	return t.tx.QueryRowContext(ctx, `
		INSERT INTO refunds (payment_id, amount, reason, status, provider_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.PaymentID, r.Amount, nullString(r.Reason), r.Status, nullString(r.ProviderRef),
	).Scan(&r.ID, &r.CreatedAt)
}

func (t *sqlTx) GetRefund(ctx context.Context, id int64) (*models.Refund, error) {
	var r models.Refund
	var reason, providerRef sql.NullString
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, payment_id, amount, reason, status, provider_ref, created_at
		FROM refunds WHERE id = $1
	`, id).Scan(&r.ID, &r.PaymentID, &r.Amount, &reason, &r.Status, &providerRef, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Reason = reason.String
	r.ProviderRef = providerRef.String
	return &r, nil
}

func (t *sqlTx) GetIdempotencyRecord(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	var rec models.IdempotencyRecord
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, key, resource_type, resource_id, created_at
		FROM idempotency_keys WHERE key = $1
	`, key).Scan(&rec.ID, &rec.Key, &rec.ResourceType, &rec.ResourceID, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (t *sqlTx) InsertIdempotencyRecord(ctx context.Context, rec *models.IdempotencyRecord) error {
	return t.tx.QueryRowContext(ctx, `
		INSERT INTO idempotency_keys (key, resource_type, resource_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, rec.Key, rec.ResourceType, rec.ResourceID).Scan(&rec.ID, &rec.CreatedAt)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
