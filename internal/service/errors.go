package service

import "errors"

var (
	// ErrValidation covers malformed input. Nothing is persisted for it.
	ErrValidation = errors.New("invalid request")

	// ErrIdempotencyConflict means an idempotency key was reused for a
	// different resource type than the one it originally produced.
	ErrIdempotencyConflict = errors.New("idempotency key conflict")

	// ErrInvalidState means the operation is not legal for the payment's
	// current status.
	ErrInvalidState = errors.New("operation not allowed for payment status")

	// ErrNotFound means the referenced payment does not exist.
	ErrNotFound = errors.New("payment not found")

	// ErrInvalidSignature means webhook authenticity could not be verified.
	// Such callbacks are rejected outright and never recorded.
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrProvider wraps any failure of the external provider, timeouts
	// included. The whole unit of work rolls back; the client retries with
	// its idempotency key.
	ErrProvider = errors.New("payment provider error")

	// ErrWebhookProcessing wraps an internal failure while applying an
	// authenticated webhook. The transaction, dedup record included, rolls
	// back so provider redelivery can succeed later.
	ErrWebhookProcessing = errors.New("webhook processing failed")
)
