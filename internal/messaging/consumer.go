package messaging

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

type EventHandler func(event Event) error

type Consumer struct {
	client      *Client
	queueName   string
	serviceName string
}

func NewConsumer(client *Client, queueName, serviceName string) *Consumer {
	return &Consumer{
		client:      client,
		queueName:   queueName,
		serviceName: serviceName,
	}
}

// ConsumeEvents binds the queue to the given routing keys and dispatches
// deliveries to the handler. Messages are acked only after the handler
// returns nil; handler failures are nacked without requeue.
func (c *Consumer) ConsumeEvents(routingKeys []string, handler EventHandler) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("no connection to RabbitMQ")
	}

	channel := c.client.Channel()

	queue, err := channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("queue declare error: %w", err)
	}

	for _, routingKey := range routingKeys {
		err = channel.QueueBind(
			queue.Name,               // queue name
			routingKey,               // routing key
			c.client.config.Exchange, // exchange
			false,                    // no-wait
			nil,                      // arguments
		)
		if err != nil {
			return fmt.Errorf("queue bind error (%s): %w", routingKey, err)
		}
		log.Printf("Queue %s bound to routing key: %s", queue.Name, routingKey)
	}

	messages, err := channel.Consume(
		queue.Name,    // queue
		c.serviceName, // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("consume start error: %w", err)
	}

	log.Printf("Consuming events on queue: %s", queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				c.handleMessage(msg, handler)
			case <-c.client.ctx.Done():
				log.Printf("Consumer stopped: %s", c.serviceName)
				return
			}
		}
	}()

	return nil
}

func (c *Consumer) handleMessage(msg amqp.Delivery, handler EventHandler) {
	var event Event

	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Event deserialize error: %v", err)
		msg.Nack(false, false)
		return
	}

	log.Printf("Event received: %s from %s", event.EventType, event.Service)

	if err := handler(event); err != nil {
		log.Printf("Event process error: %v", err)
		msg.Nack(false, false)
		return
	}

	msg.Ack(false)
}
