package models

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentExpired  PaymentStatus = "expired"
	PaymentRefunded PaymentStatus = "refunded"
)

// Terminal reports whether no further webhook-driven transition is defined
// for the status. paid is still terminal here: the only way out of paid is
// a refund, which goes through CreateRefund, not through webhook application.
func (s PaymentStatus) Terminal() bool {
	return s != PaymentPending
}

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundSucceeded RefundStatus = "succeeded"
	RefundFailed    RefundStatus = "failed"
)

// Payment is one attempt to collect money for an order. Amount is in minor
// currency units; currency never changes after creation.
type Payment struct {
	ID          int64
	OrderID     string
	Amount      int64
	Currency    string
	Status      PaymentStatus
	Provider    string
	ProviderRef string
	QRURL       string
	CheckoutURL string
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Refund reverses a paid Payment. Creating one moves the payment to
// refunded, so a payment carries at most one refund.
type Refund struct {
	ID          int64
	PaymentID   int64
	Amount      int64
	Reason      string
	Status      RefundStatus
	ProviderRef string
	CreatedAt   time.Time
}

// CreatePaymentRequest carries the validated fields of a payment creation
// call. CustomerID and ReturnURL pass through to the provider-hosted
// checkout and do not participate in any invariant.
type CreatePaymentRequest struct {
	OrderID    string
	Amount     int64
	Currency   string
	CustomerID string
	ReturnURL  string
}

// RefundRequest carries refund creation input. A zero Amount means refund
// the full payment amount.
type RefundRequest struct {
	Amount int64
	Reason string
}

// ProviderPaymentResult is what the external provider hands back when a
// payment is initiated on its side.
type ProviderPaymentResult struct {
	ProviderRef string
	QRURL       string
	CheckoutURL string
	ExpiresAt   *time.Time
}

type ProviderRefundResult struct {
	ProviderRef string
	Status      string
}
