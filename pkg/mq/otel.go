package mq

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Publisher amqp.Channel 的发布能力，便于测试替换
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Tracer 为 RabbitMQ 消息注入/提取追踪上下文并记录指标
type Tracer struct {
	serviceName string
	propagators propagation.TextMapPropagator
	tracer      trace.Tracer

	messagesTotal   metric.Int64Counter
	messageDuration metric.Float64Histogram
}

// NewTracer 使用全局 Provider
func NewTracer(serviceName string) (*Tracer, error) {
	return newTracer(serviceName, otel.GetTextMapPropagator(), otel.Tracer(serviceName+".rabbitmq"), otel.Meter(serviceName+".rabbitmq"))
}

func newTracer(serviceName string, prop propagation.TextMapPropagator, tracer trace.Tracer, meter metric.Meter) (*Tracer, error) {
	messagesTotal, err := meter.Int64Counter(
		"mq.messages.total",
		metric.WithDescription("Total number of RabbitMQ messages"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	messageDuration, err := meter.Float64Histogram(
		"mq.message.duration",
		metric.WithDescription("RabbitMQ publish duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return nil, err
	}

	return &Tracer{
		serviceName:     serviceName,
		propagators:     prop,
		tracer:          tracer,
		messagesTotal:   messagesTotal,
		messageDuration: messageDuration,
	}, nil
}

// Publish 发布消息并把追踪上下文写入消息头
func (t *Tracer) Publish(ctx context.Context, ch Publisher, exchange, routingKey string, msg amqp.Publishing) error {
	start := time.Now()

	ctx, span := t.tracer.Start(ctx, "rabbitmq.publish "+routingKey,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingDestinationName(exchange),
			semconv.MessagingRabbitmqDestinationRoutingKey(routingKey),
			attribute.String("service.name", t.serviceName),
		),
	)
	defer span.End()

	headers := make(amqp.Table, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	t.propagators.Inject(ctx, &MessageHeaderCarrier{Headers: headers})
	msg.Headers = headers

	err := ch.PublishWithContext(ctx, exchange, routingKey, false, false, msg)

	status := "success"
	if err != nil {
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	labels := metric.WithAttributes(
		attribute.String("messaging.operation", "publish"),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
		attribute.String("messaging.status", status),
	)
	t.messagesTotal.Add(ctx, 1, labels)
	t.messageDuration.Record(ctx, time.Since(start).Seconds(), labels)

	return err
}

// Extract 从消息头恢复上游的追踪上下文，并开启处理 Span
func (t *Tracer) Extract(ctx context.Context, msg amqp.Delivery) (context.Context, trace.Span) {
	ctx = t.propagators.Extract(ctx, &MessageHeaderCarrier{Headers: msg.Headers})
	return t.tracer.Start(ctx, "rabbitmq.process "+msg.RoutingKey,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingRabbitmqDestinationRoutingKey(msg.RoutingKey),
			semconv.MessagingMessageID(msg.MessageId),
		),
	)
}

// MessageHeaderCarrier 实现 propagation.TextMapCarrier 接口
type MessageHeaderCarrier struct {
	Headers amqp.Table
}

func (m *MessageHeaderCarrier) Get(key string) string {
	if val, ok := m.Headers[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func (m *MessageHeaderCarrier) Set(key, value string) {
	if m.Headers == nil {
		m.Headers = make(amqp.Table)
	}
	m.Headers[key] = value
}

func (m *MessageHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	return keys
}
