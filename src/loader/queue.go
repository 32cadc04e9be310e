package loader

import (
	"context"
	"sync"

	"github.com/seventv/SpriteProcessor/src/image"
)

type Result struct {
	File  File
	Image *image.LoadedImage
	Err   error
}

type request struct {
	file File
	done chan Result
}

// Queue decodes files one at a time in the order they were enqueued.
type Queue struct {
	ctx  context.Context
	reqs chan request

	mtx    sync.Mutex
	closed bool
	wg     sync.WaitGroup

	load func(ctx context.Context, f File) (*image.LoadedImage, error)
}

func NewQueue(ctx context.Context) *Queue {
	q := &Queue{
		ctx:  ctx,
		reqs: make(chan request, 64),
		load: Load,
	}

	q.wg.Add(1)
	go q.run()

	return q
}

func (q *Queue) run() {
	defer q.wg.Done()

	for req := range q.reqs {
		img, err := q.load(q.ctx, req.file)
		req.done <- Result{File: req.file, Image: img, Err: err}
		close(req.done)
	}
}

// Enqueue schedules f and returns a channel that receives its result once.
// After Close the result is context.Canceled.
func (q *Queue) Enqueue(f File) <-chan Result {
	done := make(chan Result, 1)

	q.mtx.Lock()
	defer q.mtx.Unlock()

	if q.closed {
		done <- Result{File: f, Err: context.Canceled}
		close(done)
		return done
	}

	q.reqs <- request{file: f, done: done}

	return done
}

// Close stops accepting files and waits for queued ones to finish.
func (q *Queue) Close() {
	q.mtx.Lock()
	if !q.closed {
		q.closed = true
		close(q.reqs)
	}
	q.mtx.Unlock()

	q.wg.Wait()
}
