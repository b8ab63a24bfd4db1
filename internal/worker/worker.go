package worker

import (
	"context"
	"log"
	"runtime"
	"sync"
)

// Task 在池内协程中执行的异步任务
// ctx 在池停止时取消，长任务应当观察它提前退出
type Task interface {
	Run(ctx context.Context)
}

// TaskFunc 函数式任务适配
type TaskFunc func(ctx context.Context)

func (f TaskFunc) Run(ctx context.Context) { f(ctx) }

// WorkerPool 固定大小协程池，由装配方创建、启动并停止
// Stop 会先排空队列中已接收的任务再返回
type WorkerPool struct {
	workers int
	queue   chan Task

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewWorkerPool 创建协程池
// workers<=0 取 CPU 线程数的两倍，queueSize<=0 取 1000
func NewWorkerPool(workers, queueSize int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if queueSize <= 0 {
		queueSize = 1000
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workers: workers,
		queue:   make(chan Task, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start 启动全部工作协程，重复调用无效果
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.loop()
	}

	log.Printf("Async worker pool started with %d workers", p.workers)
}

// Stop 拒绝新任务、取消任务上下文并等待队列排空
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	close(p.queue)
	p.wg.Wait()

	log.Println("Async worker pool stopped")
}

// Submit 非阻塞提交，队列已满或池已停止时丢弃并返回 false
func (p *WorkerPool) Submit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}

	select {
	case p.queue <- task:
		return true
	default:
		log.Println("WARN: Worker pool queue is full, task dropped")
		return false
	}
}

func (p *WorkerPool) loop() {
	defer p.wg.Done()

	for task := range p.queue {
		p.run(task)
	}
}

// run 执行单个任务并捕获 panic
func (p *WorkerPool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic recovered in async task: %v", r)
		}
	}()
	task.Run(p.ctx)
}
