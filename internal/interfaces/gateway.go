package interfaces

import (
	"context"

	"github.com/markethub/payment-service/internal/models"
)

// ProviderGateway wraps the external payment provider. Implementations are
// selected at construction time; both calls are bounded by the gateway's own
// timeout, and a timeout is indistinguishable from any other provider
// failure to callers.
type ProviderGateway interface {
	CreatePayment(ctx context.Context, amount int64, currency, orderID string) (*models.ProviderPaymentResult, error)
	Refund(ctx context.Context, providerRef string, amount int64) (*models.ProviderRefundResult, error)
}

// Broker accepts opaque payload bytes for a topic and delivers them
// at-least-once to its consumers. A nil return is a confirmed send.
type Broker interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}
