package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishEvent(event Event) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("no connection to RabbitMQ")
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CorrelationID == uuid.Nil {
		event.CorrelationID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event serialization error: %w", err)
	}

	routingKey := fmt.Sprintf("shop.%s.%s", event.Service, string(event.EventType))

	err = p.client.Channel().Publish(
		p.client.config.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.Timestamp,
			Headers: amqp.Table{
				"user_id":        event.UserID.String(),
				"order_id":       event.OrderID.String(),
				"correlation_id": event.CorrelationID.String(),
				"service":        event.Service,
				"event_type":     string(event.EventType),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("event publish error: %w", err)
	}

	log.Printf("Event published: %s -> %s", routingKey, event.EventType)
	return nil
}

// PublishWithRetry retries transient publish failures with a linear
// backoff before giving up.
func (p *Publisher) PublishWithRetry(event Event, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if err := p.PublishEvent(event); err != nil {
			lastErr = err
			log.Printf("Publish error (retry %d/%d): %v", i+1, maxRetries, err)

			if i < maxRetries-1 {
				time.Sleep(time.Second * time.Duration(i+1))
				continue
			}
		} else {
			return nil
		}
	}

	return fmt.Errorf("event publish failed after %d attempts: %w", maxRetries, lastErr)
}
