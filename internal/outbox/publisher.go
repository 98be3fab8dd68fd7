package outbox

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/markethub/payment-service/internal/interfaces"
	"github.com/markethub/payment-service/internal/telemetry"
)

const (
	drainLockKey = "outbox_drain_lock"
	drainTimeout = 30 * time.Second
	sendTimeout  = 5 * time.Second
)

// Locker serializes outbox draining across service instances. Acquire
// reports false when another instance holds the lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Publisher drains pending outbox events to the broker on a fixed interval.
// Delivery is at-least-once: an event is marked published only after a
// confirmed send, so a crash between send and mark redelivers on the next
// tick.
type Publisher struct {
	queue     interfaces.OutboxQueue
	broker    interfaces.Broker
	locker    Locker
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

func NewPublisher(queue interfaces.OutboxQueue, broker interfaces.Broker, locker Locker, interval time.Duration, batchSize int, logger *zap.Logger) *Publisher {
	return &Publisher{
		queue:     queue,
		broker:    broker,
		locker:    locker,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run loops until ctx is cancelled. Cancellation interrupts only the
// inter-tick wait: a tick in progress drains to completion before Run
// returns, so no send-then-mark pair straddles shutdown silently.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("outbox publisher started",
		zap.Duration("interval", p.interval),
		zap.Int("batch_size", p.batchSize),
	)

	for {
		if err := p.drain(); err != nil {
			p.logger.Error("outbox drain failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			p.logger.Info("outbox publisher stopped")
			return
		case <-ticker.C:
		}
	}
}

// drain runs one tick against a fresh context so an in-flight send is never
// cancelled mid-way by shutdown, only bounded by its own timeout. The first
// send failure ends the batch; everything marked before it stays committed
// and the rest is retried next tick.
func (p *Publisher) drain() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if p.locker != nil {
		ok, err := p.locker.Acquire(ctx, drainLockKey, drainTimeout)
		if err != nil {
			return fmt.Errorf("acquire drain lock: %w", err)
		}
		if !ok {
			return nil
		}
		defer func() {
			_ = p.locker.Release(ctx, drainLockKey)
		}()
	}

	events, err := p.queue.FetchPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("fetch pending: %w", err)
	}

	for _, event := range events {
		sendCtx, sendCancel := context.WithTimeout(ctx, sendTimeout)
		err := p.broker.Publish(sendCtx, event.Topic, []byte(strconv.FormatInt(event.ID, 10)), event.Payload)
		sendCancel()
		if err != nil {
			telemetry.OutboxPublishFailures.Inc()
			return fmt.Errorf("publish outbox event %d: %w", event.ID, err)
		}

		if err := p.queue.MarkPublished(ctx, event.ID); err != nil {
			return fmt.Errorf("mark outbox event %d published: %w", event.ID, err)
		}
		telemetry.OutboxPublished.Inc()
	}

	return nil
}
