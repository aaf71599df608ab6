package executor

import (
	"context"

	"github.com/zeromicro/go-zero/core/threading"
)

// Executor runs handler on queued tasks with a fixed number of workers. A
// panicking handler is recovered and logged by go-zero.
type Executor[P interface{}] struct {
	ctx     context.Context
	tasks   chan P
	handler func(task P)
	workers int
	cancel  context.CancelFunc
}

func NewExecutor[P interface{}](ctx context.Context, workers int, queueSize int, handler func(task P)) *Executor[P] {
	ret := &Executor[P]{
		tasks:   make(chan P, queueSize),
		handler: handler,
		workers: workers,
	}
	ret.ctx, ret.cancel = context.WithCancel(ctx)
	return ret
}

func (e *Executor[P]) Start() {
	for i := 0; i < e.workers; i++ {
		threading.GoSafe(func() {
			for {
				select {
				case <-e.ctx.Done():
					return
				case task := <-e.tasks:
					threading.RunSafe(func() {
						e.handler(task)
					})
				}
			}
		})
	}
}

func (e *Executor[P]) Stop() {
	e.cancel()
}

func (e *Executor[P]) QueueSize() int {
	return len(e.tasks)
}

// Commit queues task, blocking while the queue is full. It returns false if the
// executor was stopped first.
func (e *Executor[P]) Commit(task P) bool {
	if e.ctx.Err() != nil {
		return false
	}
	select {
	case <-e.ctx.Done():
		return false
	case e.tasks <- task:
		return true
	}
}
