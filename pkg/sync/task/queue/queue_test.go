package queue_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/plgd-dev/assethub/pkg/sync/task/queue"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_Submit(t *testing.T) {
	_, err := queue.New(queue.Config{
		GoPoolSize: -1,
		Size:       10,
	})
	require.Error(t, err)
	q, err := queue.New(queue.Config{
		GoPoolSize: 1,
		Size:       2,
	})
	require.NoError(t, err)
	err = q.Submit(func() {}, func() {}, func() {})
	require.ErrorIs(t, err, queue.ErrQueueFull)
	v := make(chan int)
	err = q.Submit(func() { v <- 1 }, func() { v <- 2 })
	require.NoError(t, err)
	d := <-v
	require.Equal(t, 1, d)
	d = <-v
	require.Equal(t, 2, d)
	err = q.Submit(func() { v <- 3; v <- 4 })
	require.NoError(t, err)
	d = <-v
	require.Equal(t, 3, d)
	q.Release()
	d = <-v
	require.Equal(t, 4, d)
}

func TestTaskQueue_SubmitWait(t *testing.T) {
	q, err := queue.New(queue.Config{
		GoPoolSize:  4,
		Size:        3,
		MaxIdleTime: time.Second,
	})
	require.NoError(t, err)
	defer q.Release()

	var counter atomic.Int32
	tasks := make([]func(), 0, 10)
	for i := 0; i < 10; i++ {
		tasks = append(tasks, func() { counter.Add(1) })
	}
	err = q.SubmitWait(context.Background(), tasks...)
	require.NoError(t, err)
	require.Equal(t, int32(10), counter.Load())
}

func TestTaskQueue_SubmitWaitCanceled(t *testing.T) {
	q, err := queue.New(queue.MakeDefaultConfig())
	require.NoError(t, err)
	defer q.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	block := make(chan struct{})
	defer close(block)
	err = q.SubmitWait(ctx, func() { <-block })
	require.ErrorIs(t, err, context.Canceled)
}
