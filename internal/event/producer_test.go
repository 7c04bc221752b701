package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/OnlineStore/internal/domain"
	pkgkafka "github.com/utafrali/OnlineStore/pkg/kafka"
	"github.com/utafrali/OnlineStore/pkg/logger"
)

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "store.order.created", TopicOrderCreated)
	assert.Equal(t, "store.order.delivery_attached", TopicOrderDeliveryAttached)
	assert.Equal(t, "store.user.registered", TopicUserRegistered)
}

func TestPublishOrderCreated_Envelope(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, testLogger())

	var captured *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicOrderCreated, mock.AnythingOfType("*kafka.Event")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	ctx := logger.WithCorrelationID(context.Background(), "req-1")
	err := p.PublishOrderCreated(ctx, &domain.Order{ID: 40, UserID: 3, Status: "Pending"})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "40", captured.AggregateID)
	assert.Equal(t, AggregateTypeOrder, captured.AggregateType)
	assert.Equal(t, SourceOnlineStore, captured.Source)
	assert.Equal(t, "req-1", captured.CorrelationID)

	var data OrderCreatedData
	require.NoError(t, captured.UnmarshalData(&data))
	assert.Equal(t, int64(40), data.OrderID)
	assert.Equal(t, "Pending", data.Status)
	pub.AssertExpectations(t)
}

func TestPublishDeliveryAttached_CarriesCost(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, testLogger())

	var captured *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicOrderDeliveryAttached, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	d := &domain.Delivery{ID: 5, OrderID: 40, Method: "Courier", Cost: decimal.RequireFromString("8.00")}
	require.NoError(t, p.PublishDeliveryAttached(context.Background(), d))

	var data DeliveryAttachedData
	require.NoError(t, captured.UnmarshalData(&data))
	assert.Equal(t, int64(5), data.DeliveryID)
	assert.True(t, decimal.RequireFromString("8").Equal(data.Cost))
	assert.Empty(t, captured.CorrelationID)
}

func TestPublish_WrapsBrokerError(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, testLogger())
	pub.On("Publish", mock.Anything, TopicReviewCreated, mock.Anything).Return(errors.New("broker down"))

	err := p.PublishReviewCreated(context.Background(), &domain.Review{ID: 1, Rating: 5})
	assert.ErrorContains(t, err, "publish store.review.created event")
}
