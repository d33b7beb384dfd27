package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryClient_DeliversEveryJob(t *testing.T) {
	q := NewMemoryClient(16, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	wg.Add(5)

	done := make(chan error, 1)
	go func() {
		done <- q.Consume(ctx, func(ctx context.Context, job *models.DropJob) error {
			mu.Lock()
			seen[job.DropID] = true
			mu.Unlock()
			wg.Done()
			return nil
		}, 3)
	}()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, q.Publish(ctx, &models.DropJob{DropID: id}))
	}

	wg.Wait()
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Len(t, seen, 5)
}

func TestMemoryClient_BoundsConcurrency(t *testing.T) {
	q := NewMemoryClient(32, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var running, peak int32
	var wg sync.WaitGroup
	wg.Add(12)

	go func() {
		_ = q.Consume(ctx, func(ctx context.Context, job *models.DropJob) error {
			defer wg.Done()
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}, 2)
	}()

	for i := 0; i < 12; i++ {
		require.NoError(t, q.Publish(ctx, &models.DropJob{DropID: "x"}))
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	require.NoError(t, q.Close())
}

func TestMemoryClient_Close(t *testing.T) {
	q := NewMemoryClient(1, zap.NewNop())
	require.NoError(t, q.Health(context.Background()))

	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Health(context.Background()), ErrClosed)
	assert.ErrorIs(t, q.Publish(context.Background(), &models.DropJob{DropID: "late"}), ErrClosed)

	err := q.Consume(context.Background(), func(context.Context, *models.DropJob) error { return nil }, 1)
	assert.NoError(t, err)
}

func TestClampConcurrency(t *testing.T) {
	assert.Equal(t, 1, clampConcurrency(0))
	assert.Equal(t, 4, clampConcurrency(4))
	assert.Equal(t, MaxConcurrency, clampConcurrency(50))
}

func TestMemoryClient_Len(t *testing.T) {
	q := NewMemoryClient(4, zap.NewNop())
	defer q.Close()
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, &models.DropJob{DropID: "a"}))
	require.NoError(t, q.Publish(ctx, &models.DropJob{DropID: "b"}))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryClient_RequeueFromHandlerDoesNotStall(t *testing.T) {
	q := NewMemoryClient(2, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	var originals, retries int32
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(ctx, func(ctx context.Context, job *models.DropJob) error {
			if strings.HasPrefix(job.DropID, "retry-") {
				atomic.AddInt32(&retries, 1)
				return nil
			}
			atomic.AddInt32(&originals, 1)
			return q.Publish(ctx, &models.DropJob{DropID: "retry-" + job.DropID})
		}, 1)
	}()

	publishCtx, stop := context.WithTimeout(ctx, 2*time.Second)
	defer stop()
	for i := 0; i < 20; i++ {
		require.NoError(t, q.Publish(publishCtx, &models.DropJob{DropID: fmt.Sprintf("job-%d", i)}))
	}

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&originals) == 20 && atomic.LoadInt32(&retries) == 20
	}, 5*time.Second, 5*time.Millisecond)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
