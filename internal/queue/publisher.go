package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher submits jobs to RabbitMQ. It dials per publish, which is
// cheap enough at login frequency and keeps the publisher free of
// connection state to babysit. Errors are logged and returned so the
// caller can fall back without failing the request.
type Publisher struct {
	URL string
}

// NewPublisher returns a Publisher for the given AMQP URL. An empty
// URL yields a disabled publisher whose PublishUserActivation always
// errors, which pushes callers onto their synchronous fallback.
func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// PublishUserActivation enqueues an activation job on the durable
// user.activate queue with persistent delivery, so the job survives a
// broker restart.
func (p *Publisher) PublishUserActivation(ctx context.Context, job UserActivationJob) error {
	if p.URL == "" {
		return amqp.ErrClosed
	}
	conn, err := amqp.Dial(p.URL)
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

	// Idempotent declare; durable so jobs survive broker restarts.
	if _, err := ch.QueueDeclare(ActivationQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		log.Printf("rabbitmq: marshal job failed: %v", err)
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = ch.PublishWithContext(pubCtx, "", ActivationQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
	}
	return err
}
