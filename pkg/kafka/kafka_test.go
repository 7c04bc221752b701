package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type orderPayload struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("order.created", "42", "order", "online-store", orderPayload{OrderID: 42, Status: "Pending"})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, 1, ev.Version)
	assert.Equal(t, "42", ev.AggregateID)

	var got orderPayload
	require.NoError(t, ev.UnmarshalData(&got))
	assert.Equal(t, orderPayload{OrderID: 42, Status: "Pending"}, got)
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("x", "1", "x", "s", make(chan int))
	assert.Error(t, err)
}

func TestEvent_Builders(t *testing.T) {
	ev := (&Event{}).WithCorrelationID("corr").WithMetadata("k", "v")
	assert.Equal(t, "corr", ev.CorrelationID)
	assert.Equal(t, map[string]string{"k": "v"}, ev.Metadata)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "store.order.created", Topic("order", "created"))
}

func TestHeaderCarrier(t *testing.T) {
	var headers []kafka.Header
	c := headerCarrier{headers: &headers}

	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	c.Set("baggage", "k=v")

	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "baggage"}, c.Keys())
}

func TestBuildMessage_HeadersAndTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	ev, err := NewEvent("review.created", "7", "review", "online-store", map[string]int{"rating": 5})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-9")

	msg, err := buildMessage(ctx, Topic("review", "created"), ev)
	require.NoError(t, err)

	assert.Equal(t, "store.review.created", msg.Topic)
	assert.Equal(t, []byte("7"), msg.Key)

	carrier := headerCarrier{headers: &msg.Headers}
	assert.Equal(t, "review.created", carrier.Get("event_type"))
	assert.Equal(t, "corr-9", carrier.Get("correlation_id"))
	assert.Contains(t, carrier.Get("traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev.EventID, decoded.EventID)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))
}

func TestNewProducer_CloseWithoutWrites(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	assert.NoError(t, p.Close())
}
