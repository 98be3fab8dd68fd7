package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/markethub/payment-service/internal/interfaces"
	"github.com/markethub/payment-service/internal/models"
	"github.com/markethub/payment-service/internal/telemetry"
)

// WebhookIngestor verifies, deduplicates and applies provider callbacks.
// Delivery from the provider is at-least-once and unordered; the unique
// event id constraint in the store is what makes ingestion safe under
// concurrent redelivery.
type WebhookIngestor struct {
	payments *PaymentService
	store    interfaces.Store
	provider string
	secret   []byte
	logger   *zap.Logger
}

func NewWebhookIngestor(payments *PaymentService, store interfaces.Store, provider, secret string, logger *zap.Logger) *WebhookIngestor {
	return &WebhookIngestor{
		payments: payments,
		store:    store,
		provider: provider,
		secret:   []byte(secret),
		logger:   logger,
	}
}

// Ingest handles one raw callback. The dedup record and the resulting state
// change commit in one transaction: if applying fails, the record rolls back
// too and the provider's redelivery gets a clean retry.
func (i *WebhookIngestor) Ingest(ctx context.Context, body []byte, signature string) error {
	if !i.verifySignature(body, signature) {
		telemetry.WebhookEvents.WithLabelValues("rejected").Inc()
		return ErrInvalidSignature
	}

	var hook models.ProviderWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if hook.EventID == "" {
		return fmt.Errorf("%w: event_id is required", ErrValidation)
	}

	duplicate := false
	err := i.store.WithinTx(ctx, func(tx interfaces.Tx) error {
		record := &models.WebhookEvent{
			Provider: i.provider,
			EventID:  hook.EventID,
			Payload:  body,
		}
		inserted, err := tx.InsertWebhookEvent(ctx, record)
		if err != nil {
			return err
		}
		if !inserted {
			duplicate = true
			return nil
		}

		if _, err := i.payments.applyStatus(ctx, tx, hook.PaymentID, hook.Status); err != nil {
			return err
		}
		return tx.MarkWebhookProcessed(ctx, record.ID)
	})
	if err != nil {
		i.logger.Error("webhook processing failed",
			zap.String("event_id", hook.EventID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrWebhookProcessing, err)
	}

	if duplicate {
		telemetry.WebhookEvents.WithLabelValues("duplicate").Inc()
		i.logger.Info("duplicate webhook acknowledged",
			zap.String("event_id", hook.EventID),
		)
		return nil
	}

	telemetry.WebhookEvents.WithLabelValues("accepted").Inc()
	i.logger.Info("webhook processed",
		zap.String("event_id", hook.EventID),
		zap.Int64("payment_id", hook.PaymentID),
		zap.String("status", hook.Status),
	)
	return nil
}

func (i *WebhookIngestor) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, i.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
