package messaging

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Client owns the RabbitMQ connection and channel, reconnecting when the
// broker drops the connection.
type Client struct {
	config     *RabbitMQConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	mu         sync.RWMutex
	isClosing  bool
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewClient(config *RabbitMQConfig) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	for i := 0; i < c.config.RetryCount; i++ {
		c.connection, err = amqp.Dial(c.config.ConnectionURL())
		if err != nil {
			log.Printf("RabbitMQ connection error (attempt %d/%d): %v", i+1, c.config.RetryCount, err)
			if i < c.config.RetryCount-1 {
				time.Sleep(c.config.RetryDelay)
				continue
			}
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}

		c.channel, err = c.connection.Channel()
		if err != nil {
			c.connection.Close()
			return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
		}

		err = c.channel.ExchangeDeclare(
			c.config.Exchange, // name
			"topic",           // type
			true,              // durable
			false,             // auto-deleted
			false,             // internal
			false,             // no-wait
			nil,               // arguments
		)
		if err != nil {
			c.channel.Close()
			c.connection.Close()
			return fmt.Errorf("failed to declare exchange: %w", err)
		}

		log.Printf("Connected to RabbitMQ: %s", c.config.Host)

		go c.handleReconnection()

		return nil
	}

	return err
}

func (c *Client) handleReconnection() {
	notifyClose := make(chan *amqp.Error)
	c.connection.NotifyClose(notifyClose)

	if err := <-notifyClose; err != nil && !c.isClosing {
		log.Printf("RabbitMQ connection lost: %v. Reconnecting...", err)
		time.Sleep(time.Second * 2)
		if reconnectErr := c.Connect(); reconnectErr != nil {
			log.Printf("RabbitMQ reconnect error: %v", reconnectErr)
		}
	}
}

func (c *Client) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connection != nil && !c.connection.IsClosed()
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosing {
		return nil
	}
	c.isClosing = true
	c.cancel()

	var closeErr error

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			closeErr = fmt.Errorf("channel close error: %w", err)
		}
	}

	if c.connection != nil {
		if err := c.connection.Close(); err != nil {
			if closeErr != nil {
				closeErr = fmt.Errorf("%v; connection close error: %w", closeErr, err)
			} else {
				closeErr = fmt.Errorf("connection close error: %w", err)
			}
		}
	}

	if closeErr == nil {
		log.Println("RabbitMQ connection closed")
	}
	return closeErr
}
