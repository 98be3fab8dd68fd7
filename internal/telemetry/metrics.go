package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_service_payments_created_total",
		Help: "Payments successfully created",
	})

	RefundsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_service_refunds_created_total",
		Help: "Refunds successfully created",
	})

	// WebhookEvents counts inbound provider callbacks by outcome:
	// accepted, duplicate, rejected.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_service_webhook_events_total",
		Help: "Inbound provider webhook events by outcome",
	}, []string{"result"})

	OutboxPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_service_outbox_published_total",
		Help: "Outbox events confirmed published to the broker",
	})

	OutboxPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_service_outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed",
	})
)
