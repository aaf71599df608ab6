package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutor(t *testing.T) {
	wg := sync.WaitGroup{}
	var sum int64
	executor := NewExecutor[int](context.Background(), 2, 4, func(task int) {
		defer wg.Done()
		atomic.AddInt64(&sum, int64(task))
	})
	executor.Start()
	wg.Add(20)
	for i := 0; i < 20; i++ {
		assert.True(t, executor.Commit(i))
	}
	wg.Wait()
	executor.Stop()
	assert.Equal(t, int64(190), atomic.LoadInt64(&sum))
	assert.False(t, executor.Commit(1))
}

func TestExecutor_RecoversPanics(t *testing.T) {
	wg := sync.WaitGroup{}
	var done int64
	executor := NewExecutor[int](context.Background(), 1, 1, func(task int) {
		defer wg.Done()
		if task == 0 {
			panic("boom")
		}
		atomic.AddInt64(&done, 1)
	})
	executor.Start()
	defer executor.Stop()
	wg.Add(2)
	executor.Commit(0)
	executor.Commit(1)
	wg.Wait()
	assert.Equal(t, int64(1), atomic.LoadInt64(&done))
}
