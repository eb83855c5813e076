package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"productapi/internal/models"

	amqp "github.com/streadway/amqp"
)

const (
	// ProductExchange is the topic exchange product events are published to.
	ProductExchange = "products"
	// ProductQueue is bound to every product event routing key.
	ProductQueue = "product_events"
)

// ProductEvent is the message body of a product lifecycle event.
type ProductEvent struct {
	Event      string         `json:"event"`
	Product    models.Product `json:"product"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels are not safe for concurrent publishes.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, declares the product exchange and binds the
// product event queue to it.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected and %s declared.", ProductQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		ProductExchange, // name
		"topic",         // kind
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", ProductExchange, err)
	}

	_, err = ch.QueueDeclare(
		ProductQueue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", ProductQueue, err)
	}

	if err := ch.QueueBind(ProductQueue, "product.*", ProductExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", ProductQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// EncodeProductEvent builds the JSON message body for an event.
func EncodeProductEvent(event string, product models.Product, at time.Time) ([]byte, error) {
	body, err := json.Marshal(ProductEvent{Event: event, Product: product, OccurredAt: at})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event, err)
	}
	return body, nil
}

// PublishProductEvent publishes a product event using the event name as
// the routing key.
func (c *Client) PublishProductEvent(ctx context.Context, event string, product models.Product) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	body, err := EncodeProductEvent(event, product, now)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		ProductExchange, // exchange
		event,           // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Sent %s event for product %s", event, product.ID)
	return nil
}

// DecodeProductEvent parses a message body produced by PublishProductEvent.
func DecodeProductEvent(body []byte) (ProductEvent, error) {
	var evt ProductEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return ProductEvent{}, fmt.Errorf("failed to decode product event: %w", err)
	}
	return evt, nil
}

// ConsumeProductEvents starts a goroutine that hands each message on the
// product event queue to messageHandler. Messages are acked when the
// handler returns nil and rejected without requeue otherwise.
func (c *Client) ConsumeProductEvents(messageHandler func(evt ProductEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		ProductQueue, // queue
		"",           // consumer tag
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for product events on %s", ProductQueue)

	go func() {
		for msg := range msgs {
			err := handleDelivery(msg.Body, messageHandler)
			if err != nil {
				log.Printf("Error processing message %d: %v", msg.DeliveryTag, err)
				// An unparseable or failing event would loop forever if requeued.
				if nackErr := msg.Nack(false, false); nackErr != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return nil
}

func handleDelivery(body []byte, messageHandler func(evt ProductEvent) error) error {
	evt, err := DecodeProductEvent(body)
	if err != nil {
		return err
	}
	return messageHandler(evt)
}
