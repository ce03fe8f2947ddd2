package navguard

import "sync"

// Queue runs deferred work serially on its own goroutine, in the order it
// was deferred. Work never runs on the goroutine that deferred it.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue starts a queue. size is the initial capacity of the backlog;
// the backlog grows as needed so Defer never blocks.
func NewQueue(size int) *Queue {
	q := &Queue{
		pending: make([]func(), 0, max(size, 0)),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Defer schedules fn. It reports false when the queue is closed.
func (q *Queue) Defer(fn func()) bool {
	if fn == nil {
		return false
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	q.signal()
	return true
}

// Close stops accepting work and waits until pending work has run.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		q.signal()
	})
	<-q.done
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for range q.wake {
		for {
			q.mu.Lock()
			if len(q.pending) == 0 {
				closed := q.closed
				q.mu.Unlock()
				if closed {
					return
				}
				break
			}
			fn := q.pending[0]
			q.pending[0] = nil
			q.pending = q.pending[1:]
			q.mu.Unlock()

			fn()
		}
	}
}
