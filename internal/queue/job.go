// Package queue defines the job payloads exchanged over the message
// broker and the background consumer that applies them. The only job
// today is the first-login user activation: promoting a PENDING user
// to ACTIVE once their default group exists. Delivery is at least
// once, so the handler must stay idempotent.
package queue

import "time"

// ActivationQueueName is the durable queue carrying activation jobs.
const ActivationQueueName = "user.activate"

// UserActivationJob asks the consumer to promote a user to ACTIVE
// with the given default group. SubmittedAt is informational.
type UserActivationJob struct {
	UserID      string    `json:"user_id"`
	GroupID     string    `json:"group_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}
