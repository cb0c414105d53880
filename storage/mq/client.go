package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"HoursGuard/config"
	"HoursGuard/pkg/logger"
	pkgmq "HoursGuard/pkg/mq"
)

// Client RabbitMQ 连接与发布通道
type Client struct {
	conn     *amqp.Connection
	exchange string
	tracer   *pkgmq.Tracer

	mu          sync.RWMutex // 读多写少
	publisherCh *amqp.Channel
}

// Dial 建立连接并声明事件 topic exchange
func Dial(ctx context.Context, cfg *config.Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.GetRabbitMQURL())
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(cfg.RabbitMQExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.RabbitMQExchange, err)
	}

	tracer, err := pkgmq.NewTracer(cfg.ServiceName)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Logger.Info("RabbitMQ connected",
		zap.String("addr", cfg.RabbitMQAddr),
		zap.String("exchange", cfg.RabbitMQExchange),
	)

	return &Client{conn: conn, exchange: cfg.RabbitMQExchange, tracer: tracer}, nil
}

func (c *Client) Exchange() string {
	return c.exchange
}

func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.publisherCh != nil {
		_ = c.publisherCh.Close()
		c.publisherCh = nil
	}
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- c.conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
