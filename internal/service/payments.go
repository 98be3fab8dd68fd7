package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/markethub/payment-service/internal/interfaces"
	"github.com/markethub/payment-service/internal/models"
	"github.com/markethub/payment-service/internal/telemetry"
)

// PaymentService owns the payment and refund lifecycle. Every mutation runs
// inside one store transaction: the row change, the idempotency record and
// the outbox event commit together or not at all.
type PaymentService struct {
	store    interfaces.Store
	gateway  interfaces.ProviderGateway
	provider string
	logger   *zap.Logger
}

func NewPaymentService(store interfaces.Store, gateway interfaces.ProviderGateway, provider string, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		store:    store,
		gateway:  gateway,
		provider: provider,
		logger:   logger,
	}
}

// CreatePayment initiates a payment with the provider and persists it as
// pending. A request replayed with the same idempotency key returns the
// original payment without a second provider call.
func (s *PaymentService) CreatePayment(ctx context.Context, req models.CreatePaymentRequest, idempotencyKey string) (*models.Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive integer in minor units", ErrValidation)
	}
	if req.Currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrValidation)
	}
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrValidation)
	}

	var payment *models.Payment
	err := s.store.WithinTx(ctx, func(tx interfaces.Tx) error {
		if idempotencyKey != "" {
			existing, replayed, err := s.replayIdempotent(ctx, tx, idempotencyKey, models.ResourcePayment)
			if err != nil {
				return err
			}
			if replayed {
				p, err := tx.GetPayment(ctx, existing.ResourceID)
				if err != nil {
					return err
				}
				if p == nil {
					return fmt.Errorf("idempotency key %q references missing payment %d", idempotencyKey, existing.ResourceID)
				}
				payment = p
				return nil
			}
		}

		result, err := s.gateway.CreatePayment(ctx, req.Amount, req.Currency, req.OrderID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProvider, err)
		}

		p := &models.Payment{
			OrderID:     req.OrderID,
			Amount:      req.Amount,
			Currency:    req.Currency,
			Status:      models.PaymentPending,
			Provider:    s.provider,
			ProviderRef: result.ProviderRef,
			QRURL:       result.QRURL,
			CheckoutURL: result.CheckoutURL,
			ExpiresAt:   result.ExpiresAt,
		}
		if err := tx.InsertPayment(ctx, p); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		if idempotencyKey != "" {
			rec := &models.IdempotencyRecord{
				Key:          idempotencyKey,
				ResourceType: models.ResourcePayment,
				ResourceID:   p.ID,
			}
			if err := tx.InsertIdempotencyRecord(ctx, rec); err != nil {
				return fmt.Errorf("insert idempotency record: %w", err)
			}
		}

		if err := appendEvent(ctx, tx, models.PaymentCreatedEvent{
			EventType: models.EventPaymentCreated,
			PaymentID: p.ID,
			Status:    string(p.Status),
			OrderID:   p.OrderID,
			Amount:    p.Amount,
			Currency:  p.Currency,
		}); err != nil {
			return err
		}

		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.PaymentsCreated.Inc()
	s.logger.Info("payment created",
		zap.Int64("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
		zap.Int64("amount", payment.Amount),
		zap.String("currency", payment.Currency),
		zap.String("status", string(payment.Status)),
	)
	return payment, nil
}

// CreateRefund reverses a paid payment. The refund defaults to the full
// payment amount and moves the payment to refunded in the same transaction.
func (s *PaymentService) CreateRefund(ctx context.Context, paymentID int64, req models.RefundRequest, idempotencyKey string) (*models.Refund, error) {
	var refund *models.Refund
	err := s.store.WithinTx(ctx, func(tx interfaces.Tx) error {
		if idempotencyKey != "" {
			existing, replayed, err := s.replayIdempotent(ctx, tx, idempotencyKey, models.ResourceRefund)
			if err != nil {
				return err
			}
			if replayed {
				r, err := tx.GetRefund(ctx, existing.ResourceID)
				if err != nil {
					return err
				}
				if r == nil {
					return fmt.Errorf("idempotency key %q references missing refund %d", idempotencyKey, existing.ResourceID)
				}
				refund = r
				return nil
			}
		}

		payment, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrNotFound
		}
		if payment.Status != models.PaymentPaid {
			return fmt.Errorf("%w: payment %d is %s", ErrInvalidState, payment.ID, payment.Status)
		}

		amount := req.Amount
		if amount == 0 {
			amount = payment.Amount
		}
		if amount < 0 || amount > payment.Amount {
			return fmt.Errorf("%w: refund amount %d exceeds payment amount %d", ErrValidation, amount, payment.Amount)
		}

		result, err := s.gateway.Refund(ctx, payment.ProviderRef, amount)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProvider, err)
		}

		r := &models.Refund{
			PaymentID:   payment.ID,
			Amount:      amount,
			Reason:      req.Reason,
			Status:      models.RefundSucceeded,
			ProviderRef: result.ProviderRef,
		}
		if err := tx.InsertRefund(ctx, r); err != nil {
			return fmt.Errorf("insert refund: %w", err)
		}

		rows, err := tx.UpdatePaymentStatus(ctx, payment.ID, models.PaymentPaid, models.PaymentRefunded)
		if err != nil {
			return err
		}
		if rows == 0 {
			// A concurrent transition won the race after our read.
			return fmt.Errorf("%w: payment %d left paid during refund", ErrInvalidState, payment.ID)
		}

		if idempotencyKey != "" {
			rec := &models.IdempotencyRecord{
				Key:          idempotencyKey,
				ResourceType: models.ResourceRefund,
				ResourceID:   r.ID,
			}
			if err := tx.InsertIdempotencyRecord(ctx, rec); err != nil {
				return fmt.Errorf("insert idempotency record: %w", err)
			}
		}

		if err := appendEvent(ctx, tx, models.PaymentRefundedEvent{
			EventType: models.EventPaymentRefunded,
			PaymentID: payment.ID,
			RefundID:  r.ID,
			Amount:    r.Amount,
			Currency:  payment.Currency,
		}); err != nil {
			return err
		}

		refund = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.RefundsCreated.Inc()
	s.logger.Info("refund created",
		zap.Int64("refund_id", refund.ID),
		zap.Int64("payment_id", refund.PaymentID),
		zap.Int64("amount", refund.Amount),
	)
	return refund, nil
}

// GetPayment is a transaction-consistent read for the HTTP surface.
func (s *PaymentService) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrNotFound
	}
	return payment, nil
}

// ApplyWebhookStatus moves a payment out of pending based on a
// provider-reported status. A missing payment and an unrecognized or
// already-terminal status are both no-ops, not errors.
func (s *PaymentService) ApplyWebhookStatus(ctx context.Context, paymentID int64, status string) (*models.Payment, error) {
	var payment *models.Payment
	err := s.store.WithinTx(ctx, func(tx interfaces.Tx) error {
		p, err := s.applyStatus(ctx, tx, paymentID, status)
		if err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) applyStatus(ctx context.Context, tx interfaces.Tx, paymentID int64, status string) (*models.Payment, error) {
	payment, err := tx.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, nil
	}

	next := models.PaymentStatus(status)
	switch next {
	case models.PaymentPaid, models.PaymentFailed, models.PaymentExpired:
	default:
		// Provider vocabulary grows; unknown statuses are deliberately
		// ignored rather than rejected.
		s.logger.Debug("ignoring webhook status",
			zap.Int64("payment_id", paymentID),
			zap.String("status", status),
		)
		return payment, nil
	}

	rows, err := tx.UpdatePaymentStatus(ctx, payment.ID, models.PaymentPending, next)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Already terminal. The state machine defines no transition out of
		// paid, failed, expired or refunded via webhooks.
		return payment, nil
	}
	payment.Status = next

	if err := appendEvent(ctx, tx, models.PaymentStatusUpdatedEvent{
		EventType: models.EventPaymentStatusUpdated,
		PaymentID: payment.ID,
		Status:    string(next),
	}); err != nil {
		return nil, err
	}

	s.logger.Info("payment status updated",
		zap.Int64("payment_id", payment.ID),
		zap.String("status", string(next)),
	)
	return payment, nil
}

// Reconcile re-announces the payment's current status on the event topic.
// Used by operators when downstream consumers may have missed events.
func (s *PaymentService) Reconcile(ctx context.Context, paymentID int64) (*models.Payment, error) {
	var payment *models.Payment
	err := s.store.WithinTx(ctx, func(tx interfaces.Tx) error {
		p, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrNotFound
		}
		if err := tx.TouchPayment(ctx, p.ID); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, models.PaymentReconciledEvent{
			EventType: models.EventPaymentReconciled,
			PaymentID: p.ID,
			Status:    string(p.Status),
		}); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// replayIdempotent looks the key up inside the caller's transaction. It
// reports the existing record and whether the caller should replay it; a key
// bound to a different resource type is a conflict.
func (s *PaymentService) replayIdempotent(ctx context.Context, tx interfaces.Tx, key, resourceType string) (*models.IdempotencyRecord, bool, error) {
	rec, err := tx.GetIdempotencyRecord(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, nil
	}
	if rec.ResourceType != resourceType {
		return nil, false, fmt.Errorf("%w: key bound to %s", ErrIdempotencyConflict, rec.ResourceType)
	}
	return rec, true, nil
}

func appendEvent(ctx context.Context, tx interfaces.Tx, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal outbox event: %w", err)
	}
	if err := tx.AppendOutbox(ctx, models.TopicPaymentEvents, payload); err != nil {
		return fmt.Errorf("append outbox event: %w", err)
	}
	return nil
}
