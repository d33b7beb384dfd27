package queue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// ErrClosed is returned when publishing to a closed in-process queue
var ErrClosed = errors.New("queue closed")

// memoryClient implements Client with an unbounded FIFO inside one process.
// Publish never blocks, so a handler may requeue into the queue it consumes.
type memoryClient struct {
	mu      sync.Mutex
	pending []models.DropJob
	ready   chan struct{}
	done    chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// NewMemoryClient creates an in-process queue; size preallocates room for waiting jobs
func NewMemoryClient(size int, logger *zap.Logger) Client {
	if size < 1 {
		size = 1024
	}
	return &memoryClient{
		pending: make([]models.DropJob, 0, size),
		ready:   make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
}

// signal wakes one waiting consumer without blocking
func (c *memoryClient) signal() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// Publish appends a job to the queue
func (c *memoryClient) Publish(ctx context.Context, job *models.DropJob) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.mu.Lock()
	c.pending = append(c.pending, *job)
	c.mu.Unlock()
	c.signal()

	c.logger.Debug("job published to queue", zap.String("drop_id", job.DropID))
	return nil
}

// pop removes the oldest job, if any
func (c *memoryClient) pop() (models.DropJob, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return models.DropJob{}, false
	}
	job := c.pending[0]
	c.pending[0] = models.DropJob{}
	c.pending = c.pending[1:]
	if len(c.pending) > 0 {
		c.signal()
	}
	return job, true
}

// next waits for a job. ok is false once ctx ends or the queue is closed.
func (c *memoryClient) next(ctx context.Context) (job models.DropJob, ok bool, err error) {
	for {
		select {
		case <-ctx.Done():
			return job, false, ctx.Err()
		case <-c.done:
			return job, false, nil
		default:
		}

		if job, ok := c.pop(); ok {
			return job, true, nil
		}

		select {
		case <-c.ready:
		case <-ctx.Done():
			return job, false, ctx.Err()
		case <-c.done:
			return job, false, nil
		}
	}
}

// Consume runs handler for each job until ctx ends or the queue is closed.
// A slot is taken before a job is dequeued, so waiting jobs stay counted by Len.
func (c *memoryClient) Consume(ctx context.Context, handler DropHandler, concurrency int) error {
	concurrency = clampConcurrency(concurrency)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	defer wg.Wait()

	for {
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		}

		job, ok, err := c.next(ctx)
		if !ok {
			<-semaphore
			return err
		}

		wg.Add(1)
		go func(job models.DropJob) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := handler(ctx, &job); err != nil {
				c.logger.Error("handler failed to process job",
					zap.String("drop_id", job.DropID),
					zap.Error(err),
				)
			}
		}(job)
	}
}

// Close stops consumers; queued jobs that were not picked up are dropped
func (c *memoryClient) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// Health reports an error once the queue is closed
func (c *memoryClient) Health(ctx context.Context) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
		return nil
	}
}

// Len returns the number of waiting jobs
func (c *memoryClient) Len(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.pending)), nil
}
