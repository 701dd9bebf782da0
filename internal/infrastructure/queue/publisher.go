package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Publisher sends JSON events to RabbitMQ. Each routing key maps to a durable
// queue of the same name on the default exchange, declared on first use.
type Publisher struct {
	conn *amqp.Connection
	log  zerolog.Logger

	mu       sync.Mutex
	ch       *amqp.Channel
	declared map[string]bool
}

// NewPublisher dials the broker at url.
func NewPublisher(url string, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, log: log, declared: make(map[string]bool)}, nil
}

// Publish marshals payload and publishes it as a persistent message.
func (p *Publisher) Publish(routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		return err
	}
	if !p.declared[routingKey] {
		if _, err := p.ch.QueueDeclare(routingKey, true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq queue declare: %w", err)
		}
		p.declared[routingKey] = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", routingKey, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	p.log.Debug().Str("routing_key", routingKey).Msg("event published")
	return nil
}

// ensureChannel reopens the channel after the broker closed it.
func (p *Publisher) ensureChannel() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	p.ch = ch
	p.declared = make(map[string]bool)
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	return p.conn.Close()
}
