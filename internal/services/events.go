package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// AnalysisEvent is published whenever an analysis changes status.
type AnalysisEvent struct {
	AnalysisID string    `json:"analysis_id"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event AnalysisEvent) error
	Close() error
}

type amqpPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	exchange string
}

// NewEventPublisher connects to RabbitMQ. An empty url yields a publisher
// that drops every event.
func NewEventPublisher(url, exchange string) (EventPublisher, error) {
	if url == "" {
		return NoopPublisher{}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &amqpPublisher{conn: conn, exchange: exchange}, nil
}

func (p *amqpPublisher) Publish(_ context.Context, event AnalysisEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return ch.Publish(
		p.exchange,
		fmt.Sprintf("analysis.%s", event.AnalysisID),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
}

func (p *amqpPublisher) Close() error {
	return p.conn.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, AnalysisEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

func publishStatus(ctx context.Context, publisher EventPublisher, id string, status string, errMsg string) {
	if publisher == nil {
		return
	}
	event := AnalysisEvent{AnalysisID: id, Status: status, Error: errMsg, Timestamp: time.Now()}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Printf("⚠️  Failed to publish %s event for %s: %v\n", status, id, err)
	}
}
