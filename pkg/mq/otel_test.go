package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type capturePublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

func (c *capturePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func TestTracer_PropagatesTraceContext(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	mp := sdkmetric.NewMeterProvider()

	tr, err := newTracer("hoursguard", propagation.TraceContext{}, tp.Tracer("test"), mp.Meter("test"))
	require.NoError(t, err)

	pub := &capturePublisher{}
	err = tr.Publish(context.Background(), pub, "hoursguard.events", "clock.in", amqp.Publishing{
		Headers: amqp.Table{"device": "local"},
		Body:    []byte(`{}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "hoursguard.events", pub.exchange)
	assert.Equal(t, "clock.in", pub.key)
	assert.Equal(t, "local", pub.msg.Headers["device"])
	assert.NotEmpty(t, pub.msg.Headers["traceparent"])

	_, span := tr.Extract(context.Background(), amqp.Delivery{Headers: pub.msg.Headers, RoutingKey: "clock.in"})
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[0].SpanContext().TraceID(), spans[1].SpanContext().TraceID())
}
