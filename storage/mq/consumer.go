package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"HoursGuard/pkg/logger"
)

type MessageHandler func(ctx context.Context, routingKey string, body []byte) error

type ConsumeOptions struct {
	Queue         string
	BindingKey    string // 例如 "#" 订阅全部事件
	ConsumerTag   string
	PrefetchCount int
	Handler       MessageHandler
}

// Consume 声明队列并绑定到事件 exchange，阻塞直到 ctx 结束或连接断开
func (c *Client) Consume(ctx context.Context, opts ConsumeOptions) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(opts.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", opts.Queue, err)
	}
	if err := ch.QueueBind(opts.Queue, opts.BindingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", opts.Queue, err)
	}

	if opts.PrefetchCount > 0 {
		if err := ch.Qos(opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("set QoS: %w", err)
		}
	}

	msgs, err := ch.ConsumeWithContext(ctx, opts.Queue, opts.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	logger.Logger.Info("Started consuming messages",
		zap.String("queue", opts.Queue),
		zap.String("binding_key", opts.BindingKey),
		zap.Int("prefetch_count", opts.PrefetchCount),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, opts, msg)
		}
	}
}

func (c *Client) handle(ctx context.Context, opts ConsumeOptions, msg amqp.Delivery) {
	msgCtx, span := c.tracer.Extract(ctx, msg)
	defer span.End()

	if err := opts.Handler(msgCtx, msg.RoutingKey, msg.Body); err != nil {
		logger.Logger.Error("Failed to process message",
			zap.String("queue", opts.Queue),
			zap.String("routing_key", msg.RoutingKey),
			zap.Error(err),
		)
		// 事件只用于审计，处理失败不重新入队，避免毒消息循环
		_ = msg.Nack(false, false)
		return
	}
	_ = msg.Ack(false)
}
