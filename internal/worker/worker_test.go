package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestPanicRecovery panic 的任务不影响其他任务执行
func TestPanicRecovery(t *testing.T) {
	pool := NewWorkerPool(2, 10)
	pool.Start()
	defer pool.Stop()

	var completed int32
	pool.Submit(TaskFunc(func(context.Context) { panic("intentional panic for testing") }))
	pool.Submit(TaskFunc(func(context.Context) { atomic.AddInt32(&completed, 1) }))
	pool.Submit(TaskFunc(func(context.Context) { atomic.AddInt32(&completed, 1) }))

	time.Sleep(200 * time.Millisecond)
	assert.EqualValues(t, 2, atomic.LoadInt32(&completed))
}

// TestGracefulShutdown Stop 等待在途任务完成
func TestGracefulShutdown(t *testing.T) {
	pool := NewWorkerPool(2, 10)
	pool.Start()

	var completed int32
	var started sync.WaitGroup
	started.Add(1)

	pool.Submit(TaskFunc(func(context.Context) {
		started.Done()
		time.Sleep(300 * time.Millisecond)
		atomic.AddInt32(&completed, 1)
	}))

	started.Wait()

	startTime := time.Now()
	pool.Stop()
	duration := time.Since(startTime)

	assert.GreaterOrEqual(t, duration, 250*time.Millisecond, "shutdown should wait for slow task")
	assert.EqualValues(t, 1, atomic.LoadInt32(&completed))
}

// TestQueueFullDropPolicy 队列满时 Submit 返回 false
func TestQueueFullDropPolicy(t *testing.T) {
	pool := NewWorkerPool(1, 2)
	pool.Start()
	defer pool.Stop()

	blocker := make(chan struct{})
	defer close(blocker)

	pool.Submit(TaskFunc(func(context.Context) { <-blocker }))
	time.Sleep(50 * time.Millisecond)

	pool.Submit(TaskFunc(func(context.Context) {}))
	pool.Submit(TaskFunc(func(context.Context) {}))

	assert.False(t, pool.Submit(TaskFunc(func(context.Context) {})))
}

// TestConcurrentSubmit 并发提交全部执行
func TestConcurrentSubmit(t *testing.T) {
	pool := NewWorkerPool(4, 2000)
	pool.Start()

	var completed int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(TaskFunc(func(context.Context) { atomic.AddInt32(&completed, 1) }))
		}()
	}
	wg.Wait()
	pool.Stop()

	assert.EqualValues(t, 100, atomic.LoadInt32(&completed))
}
