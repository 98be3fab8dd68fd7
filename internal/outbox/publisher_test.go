package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markethub/payment-service/internal/interfaces"
	"github.com/markethub/payment-service/internal/models"
)

type QueueMock struct {
	mock.Mock
	interfaces.OutboxQueue
}

func (m *QueueMock) FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OutboxEvent), args.Error(1)
}

func (m *QueueMock) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type BrokerMock struct {
	mock.Mock
	interfaces.Broker
}

func (m *BrokerMock) Publish(ctx context.Context, topic string, key, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type LockerMock struct {
	mock.Mock
	Locker
}

func (m *LockerMock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *LockerMock) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newTestPublisher(queue *QueueMock, broker *BrokerMock, locker Locker) *Publisher {
	return NewPublisher(queue, broker, locker, time.Second, 50, zap.NewNop())
}

func TestDrain_PublishesOldestFirstAndMarks(t *testing.T) {
	queue := new(QueueMock)
	broker := new(BrokerMock)
	p := newTestPublisher(queue, broker, nil)

	events := []models.OutboxEvent{
		{ID: 1, Topic: models.TopicPaymentEvents, Payload: []byte(`{"event_type":"payment_created"}`)},
		{ID: 2, Topic: models.TopicPaymentEvents, Payload: []byte(`{"event_type":"payment_status_updated"}`)},
	}
	queue.On("FetchPending", mock.Anything, 50).Return(events, nil)

	var order []string
	broker.On("Publish", mock.Anything, models.TopicPaymentEvents, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		order = append(order, "send:"+string(args.Get(2).([]byte)))
	}).Return(nil)
	queue.On("MarkPublished", mock.Anything, mock.AnythingOfType("int64")).Run(func(args mock.Arguments) {
		order = append(order, "mark")
	}).Return(nil)

	require.NoError(t, p.drain())

	// Each event is sent, then marked, before the next is touched.
	require.Equal(t, []string{"send:1", "mark", "send:2", "mark"}, order)
}

func TestDrain_SendFailureStopsBatchWithoutMarking(t *testing.T) {
	queue := new(QueueMock)
	broker := new(BrokerMock)
	p := newTestPublisher(queue, broker, nil)

	events := []models.OutboxEvent{
		{ID: 1, Topic: models.TopicPaymentEvents, Payload: []byte(`{}`)},
		{ID: 2, Topic: models.TopicPaymentEvents, Payload: []byte(`{}`)},
	}
	queue.On("FetchPending", mock.Anything, 50).Return(events, nil)
	broker.On("Publish", mock.Anything, models.TopicPaymentEvents, mock.Anything, mock.Anything).Return(errors.New("broker unreachable"))

	err := p.drain()
	require.Error(t, err)

	// The failed event stays pending and the rest of the batch is untouched.
	queue.AssertNotCalled(t, "MarkPublished", mock.Anything, mock.Anything)
	broker.AssertNumberOfCalls(t, "Publish", 1)
}

func TestDrain_MarkFailureStopsBatch(t *testing.T) {
	queue := new(QueueMock)
	broker := new(BrokerMock)
	p := newTestPublisher(queue, broker, nil)

	events := []models.OutboxEvent{
		{ID: 1, Topic: models.TopicPaymentEvents, Payload: []byte(`{}`)},
		{ID: 2, Topic: models.TopicPaymentEvents, Payload: []byte(`{}`)},
	}
	queue.On("FetchPending", mock.Anything, 50).Return(events, nil)
	broker.On("Publish", mock.Anything, models.TopicPaymentEvents, mock.Anything, mock.Anything).Return(nil)
	queue.On("MarkPublished", mock.Anything, int64(1)).Return(errors.New("connection reset"))

	err := p.drain()
	require.Error(t, err)
	broker.AssertNumberOfCalls(t, "Publish", 1)
}

func TestDrain_SkipsWhenLockHeldElsewhere(t *testing.T) {
	queue := new(QueueMock)
	broker := new(BrokerMock)
	locker := new(LockerMock)
	p := newTestPublisher(queue, broker, locker)

	locker.On("Acquire", mock.Anything, drainLockKey, drainTimeout).Return(false, nil)

	require.NoError(t, p.drain())
	queue.AssertNotCalled(t, "FetchPending", mock.Anything, mock.Anything)
}

func TestDrain_ReleasesLockAfterTick(t *testing.T) {
	queue := new(QueueMock)
	broker := new(BrokerMock)
	locker := new(LockerMock)
	p := newTestPublisher(queue, broker, locker)

	locker.On("Acquire", mock.Anything, drainLockKey, drainTimeout).Return(true, nil)
	locker.On("Release", mock.Anything, drainLockKey).Return(nil)
	queue.On("FetchPending", mock.Anything, 50).Return([]models.OutboxEvent{}, nil)

	require.NoError(t, p.drain())
	locker.AssertExpectations(t)
}

func TestRun_StopsOnCancel(t *testing.T) {
	queue := new(QueueMock)
	broker := new(BrokerMock)
	queue.On("FetchPending", mock.Anything, 50).Return([]models.OutboxEvent{}, nil)

	p := NewPublisher(queue, broker, nil, 10*time.Millisecond, 50, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop after cancellation")
	}
}
