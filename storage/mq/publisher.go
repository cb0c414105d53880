package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"HoursGuard/pkg/logger"
)

// publisherChannel 复用发布通道，通道关闭后下次发布时重建
func (c *Client) publisherChannel() (*amqp.Channel, error) {
	c.mu.RLock()
	if c.publisherCh != nil && !c.publisherCh.IsClosed() {
		ch := c.publisherCh
		c.mu.RUnlock()
		return ch, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publisherCh != nil && !c.publisherCh.IsClosed() {
		return c.publisherCh, nil
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publish channel: %w", err)
	}
	c.publisherCh = ch

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		<-closed

		c.mu.Lock()
		if c.publisherCh == ch {
			c.publisherCh = nil
		}
		c.mu.Unlock()

		logger.Logger.Warn("Publisher channel closed, will recreate on next publish",
			zap.String("component", "rabbitmq"),
		)
	}()

	return ch, nil
}

// Publish 以 JSON 发布到事件 exchange
func (c *Client) Publish(ctx context.Context, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.publisherChannel()
	if err != nil {
		return err
	}

	return c.tracer.Publish(ctx, ch, c.exchange, routingKey, amqp.Publishing{
		ContentType:  "application/json",
		Body:         payload,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
}
