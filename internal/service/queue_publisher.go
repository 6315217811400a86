// Package queue_publisher publishes domain events to RabbitMQ. Errors are
// logged and returned so callers can decide whether a failed publish
// matters; the provisioning pipeline only logs them.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/mufant-museum/internal/provision"
	q "github.com/iliyamo/mufant-museum/internal/queue"
)

// Publisher sends catalog.provisioned events, dialing once per publish.
type Publisher struct {
	url string
}

// New returns a Publisher for the broker at url.
func New(url string) *Publisher { return &Publisher{url: url} }

// Provisioned implements provision.Notifier.
func (p *Publisher) Provisioned(ctx context.Context, s provision.Summary) error {
	return p.PublishProvisioned(ctx, q.NewProvisionedEvent(s))
}

// PublishProvisioned publishes event to the "catalog.provisioned" queue as
// a persistent message.
func (p *Publisher) PublishProvisioned(ctx context.Context, event q.ProvisionedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.ProvisionedQueue, // name
		true,               // durable
		false,              // autoDelete
		false,              // exclusive
		false,              // noWait
		nil,                // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    event.RunID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                 // default exchange
		q.ProvisionedQueue, // routing key = queue name
		false,              // mandatory
		false,              // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

var _ provision.Notifier = (*Publisher)(nil)
