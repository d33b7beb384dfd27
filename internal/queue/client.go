package queue

import (
	"context"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// MaxConcurrency caps simultaneous deliveries per consumer
const MaxConcurrency = 10

// Client defines the interface for queue operations
type Client interface {
	// Publish sends a drop job to the queue
	Publish(ctx context.Context, job *models.DropJob) error

	// Consume receives jobs and runs handler on up to concurrency of them at once.
	// It returns after ctx ends and every in-flight job has finished.
	Consume(ctx context.Context, handler DropHandler, concurrency int) error

	// Close closes the queue connection
	Close() error

	// Health checks if the queue is healthy
	Health(ctx context.Context) error

	// Len returns the number of jobs waiting to be consumed
	Len(ctx context.Context) (int64, error)
}

// DropHandler is a function that processes a drop job
type DropHandler func(ctx context.Context, job *models.DropJob) error

func clampConcurrency(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}
