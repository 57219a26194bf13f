package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-planner/internal/repository"
)

// StartActivationConsumer connects to RabbitMQ, declares the durable
// user.activate queue and applies each job through the idempotent
// UserRepository.Activate. It runs a reconnect loop with exponential
// backoff and never returns under normal operation; call it in its
// own goroutine. Malformed jobs are rejected without requeue, while
// storage failures are requeued so the promotion eventually lands
// (at-least-once semantics; the status guard in Activate absorbs
// duplicates).
func StartActivationConsumer(url string, users repository.UserRepository) error {
	if url == "" {
		return errors.New("activation consumer: no broker URL configured")
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("activation-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, users); err != nil {
			log.Printf("activation-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, users repository.UserRepository) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("activation-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(ActivationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ActivationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleActivation(d.Body, users); err != nil {
			log.Printf("activation-consumer: handle job failed: %v", err)
			// Requeue only transient failures; a job that cannot be
			// parsed will never succeed.
			var malformed *malformedJobError
			_ = d.Nack(false, !errors.As(err, &malformed))
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

type malformedJobError struct{ cause error }

func (e *malformedJobError) Error() string { return "malformed job: " + e.cause.Error() }

func handleActivation(body []byte, users repository.UserRepository) error {
	var job UserActivationJob
	if err := json.Unmarshal(body, &job); err != nil {
		return &malformedJobError{cause: err}
	}
	userID, err := uuid.Parse(job.UserID)
	if err != nil {
		return &malformedJobError{cause: err}
	}
	groupID, err := uuid.Parse(job.GroupID)
	if err != nil {
		return &malformedJobError{cause: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := users.Activate(ctx, userID, groupID); err != nil {
		return fmt.Errorf("activate user %s: %w", job.UserID, err)
	}
	log.Printf("activation-consumer: user %s activated with group %s", job.UserID, job.GroupID)
	return nil
}
