package interfaces

import (
	"context"

	"github.com/markethub/payment-service/internal/models"
)

// PaymentAPI is the handler-facing surface of the payment state machine.
type PaymentAPI interface {
	CreatePayment(ctx context.Context, req models.CreatePaymentRequest, idempotencyKey string) (*models.Payment, error)
	CreateRefund(ctx context.Context, paymentID int64, req models.RefundRequest, idempotencyKey string) (*models.Refund, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	Reconcile(ctx context.Context, id int64) (*models.Payment, error)
}

// WebhookAPI accepts raw provider callbacks.
type WebhookAPI interface {
	Ingest(ctx context.Context, body []byte, signature string) error
}
