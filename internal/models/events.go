package models

import "time"

const (
	ResourcePayment = "payment"
	ResourceRefund  = "refund"
)

// IdempotencyRecord binds a client-supplied key to the one resource it
// produced. The key is unique across resource types so cross-type reuse
// surfaces as a conflict instead of a second resource.
type IdempotencyRecord struct {
	ID           int64
	Key          string
	ResourceType string
	ResourceID   int64
	CreatedAt    time.Time
}

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxPublished OutboxStatus = "published"
)

// OutboxEvent is a domain fact awaiting publication. It is written in the
// same transaction as the state change it announces.
type OutboxEvent struct {
	ID          int64
	Topic       string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type WebhookStatus string

const (
	WebhookReceived  WebhookStatus = "received"
	WebhookProcessed WebhookStatus = "processed"
)

// WebhookEvent records one provider callback. EventID is the provider's
// event id and is unique, which is the sole dedup mechanism for the
// provider's at-least-once delivery.
type WebhookEvent struct {
	ID          int64
	Provider    string
	EventID     string
	Payload     []byte
	Status      WebhookStatus
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}

// TopicPaymentEvents is the single topic all payment domain events go to.
const TopicPaymentEvents = "payment.events"

const (
	EventPaymentCreated       = "payment_created"
	EventPaymentRefunded      = "payment_refunded"
	EventPaymentStatusUpdated = "payment_status_updated"
	EventPaymentReconciled    = "payment_reconciled"
)

type PaymentCreatedEvent struct {
	EventType string `json:"event_type"`
	PaymentID int64  `json:"payment_id"`
	Status    string `json:"status"`
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type PaymentRefundedEvent struct {
	EventType string `json:"event_type"`
	PaymentID int64  `json:"payment_id"`
	RefundID  int64  `json:"refund_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type PaymentStatusUpdatedEvent struct {
	EventType string `json:"event_type"`
	PaymentID int64  `json:"payment_id"`
	Status    string `json:"status"`
}

type PaymentReconciledEvent struct {
	EventType string `json:"event_type"`
	PaymentID int64  `json:"payment_id"`
	Status    string `json:"status"`
}

// ProviderWebhook is the shape this service reads out of an inbound provider
// callback body. Provider-defined extra fields are carried in the stored raw
// payload, not here.
type ProviderWebhook struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	PaymentID int64  `json:"payment_id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}
