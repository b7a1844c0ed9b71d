package queue

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

var ErrQueueFull = errors.New("reached limit of max processed jobs")

// Queue representation of task queue.
type Queue struct {
	goPool *ants.Pool
	limit  int

	mutex sync.Mutex
	queue *list.List
}

// New creates task queue which is processed by goroutines.
func New(cfg Config) (*Queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	p, err := ants.NewPool(cfg.GoPoolSize, ants.WithPreAlloc(true), ants.WithExpiryDuration(cfg.MaxIdleTime), ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Queue{
		queue:  list.New(),
		goPool: p,
		limit:  cfg.Size,
	}, nil
}

func (q *Queue) appendQueue(tasks []func()) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.queue.Len()+len(tasks) > q.limit {
		return ErrQueueFull
	}
	for _, t := range tasks {
		q.queue.PushBack(t)
	}
	return nil
}

func (q *Queue) popQueue() func() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.queue.Len() == 0 {
		return nil
	}
	return q.queue.Remove(q.queue.Front()).(func())
}

func (q *Queue) drain() {
	for {
		task := q.popQueue()
		if task == nil {
			return
		}
		task()
	}
}

// Submit appends tasks to the queue and schedules a worker to process them.
func (q *Queue) Submit(tasks ...func()) error {
	if err := q.appendQueue(tasks); err != nil {
		return err
	}
	// A saturated pool is fine: a running worker drains the queue.
	_ = q.goPool.Submit(q.drain)
	return nil
}

// SubmitWait fans tasks out over the pool and blocks until all of them
// finished or ctx is done.
func (q *Queue) SubmitWait(ctx context.Context, tasks ...func()) error {
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	wrapped := make([]func(), 0, len(tasks))
	for _, t := range tasks {
		t := t
		wrapped = append(wrapped, func() {
			defer wg.Done()
			t()
		})
	}
	for _, t := range wrapped {
		if err := q.Submit(t); err != nil {
			// run the rest inline so wg is always released
			t()
		}
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release closes queue and release it.
func (q *Queue) Release() {
	q.goPool.Release()
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.queue.Init()
}
