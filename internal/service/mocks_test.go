package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/markethub/payment-service/internal/interfaces"
	"github.com/markethub/payment-service/internal/models"
)

// StoreStub hands the test's TxMock to every unit of work. Commit/rollback
// behavior itself belongs to the repository; these tests assert what the
// services attempt inside the transaction and what errors they surface.
type StoreStub struct {
	tx       interfaces.Tx
	beginErr error
	payment  *models.Payment
	getErr   error
}

func (s *StoreStub) WithinTx(ctx context.Context, fn func(tx interfaces.Tx) error) error {
	if s.beginErr != nil {
		return s.beginErr
	}
	return fn(s.tx)
}

func (s *StoreStub) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	return s.payment, s.getErr
}

type TxMock struct {
	mock.Mock
	interfaces.Tx
}

func (m *TxMock) InsertPayment(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *TxMock) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *TxMock) UpdatePaymentStatus(ctx context.Context, id int64, from, to models.PaymentStatus) (int64, error) {
	args := m.Called(ctx, id, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TxMock) TouchPayment(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TxMock) InsertRefund(ctx context.Context, r *models.Refund) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *TxMock) GetRefund(ctx context.Context, id int64) (*models.Refund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Refund), args.Error(1)
}

func (m *TxMock) GetIdempotencyRecord(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IdempotencyRecord), args.Error(1)
}

func (m *TxMock) InsertIdempotencyRecord(ctx context.Context, rec *models.IdempotencyRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *TxMock) AppendOutbox(ctx context.Context, topic string, payload []byte) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

func (m *TxMock) InsertWebhookEvent(ctx context.Context, evt *models.WebhookEvent) (bool, error) {
	args := m.Called(ctx, evt)
	return args.Bool(0), args.Error(1)
}

func (m *TxMock) MarkWebhookProcessed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type GatewayMock struct {
	mock.Mock
	interfaces.ProviderGateway
}

func (m *GatewayMock) CreatePayment(ctx context.Context, amount int64, currency, orderID string) (*models.ProviderPaymentResult, error) {
	args := m.Called(ctx, amount, currency, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderPaymentResult), args.Error(1)
}

func (m *GatewayMock) Refund(ctx context.Context, providerRef string, amount int64) (*models.ProviderRefundResult, error) {
	args := m.Called(ctx, providerRef, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderRefundResult), args.Error(1)
}
