package queue

import (
	"context"
	"time"
)

// MessageInterface defines the interface for queue messages
// This enables better testability by allowing mock implementations
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// Publisher enqueues jobs; the API server only needs this side
type Publisher interface {
	Enqueue(ctx context.Context, job *Job) error
	HealthCheck(ctx context.Context) error
}

// JobQueue is the interface for job queues
type JobQueue interface {
	Publisher

	// Consume returns a channel of messages from the queue
	// The caller is responsible for acknowledging each message
	// Prefetch controls how many unacknowledged messages each consumer can hold
	// The channels are closed when the context is cancelled or the connection drops
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close closes the queue connection
	Close() error
}

// DLQPurger removes dead-lettered messages older than a retention window
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}

var (
	_ JobQueue         = (*RabbitMQQueue)(nil)
	_ DLQPurger        = (*RabbitMQQueue)(nil)
	_ MessageInterface = (*Message)(nil)
)
