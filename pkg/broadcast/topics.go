package broadcast

import (
	"context"
	"sync"
)

// Topics keeps one MemoryBroadcaster per topic so a subscriber only buffers
// messages of its own topic. A topic exists while it has subscribers.
// Safe for concurrent use.
type Topics[T any] struct {
	bufferSize int

	mu     sync.Mutex
	topics map[string]*topic[T]
	closed bool
}

type topic[T any] struct {
	b    *MemoryBroadcaster[T]
	refs int
}

// NewTopics creates topics whose subscribers buffer up to bufferSize
// messages.
func NewTopics[T any](bufferSize int) *Topics[T] {
	return &Topics[T]{
		bufferSize: bufferSize,
		topics:     make(map[string]*topic[T]),
	}
}

// Subscribe subscribes to name until ctx is cancelled or the subscriber is
// closed. After Close it returns an already-closed subscriber.
func (t *Topics[T]) Subscribe(ctx context.Context, name string) Subscriber[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		sub := newSubscriber[T](1)
		_ = sub.Close()
		return sub
	}

	tp, ok := t.topics[name]
	if !ok {
		tp = &topic[T]{b: NewMemoryBroadcaster[T](t.bufferSize)}
		t.topics[name] = tp
	}
	tp.refs++

	ts := &topicSubscriber[T]{Subscriber: tp.b.Subscribe(ctx)}
	var once sync.Once
	release := func() { once.Do(func() { t.release(name, tp) }) }
	ts.release = release
	ts.stop = context.AfterFunc(ctx, release)
	return ts
}

// Publish delivers msg to the subscribers of name. Subscribers whose buffer
// is full are closed.
func (t *Topics[T]) Publish(ctx context.Context, name string, msg Message[T]) error {
	t.mu.Lock()
	tp, ok := t.topics[name]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return tp.b.Broadcast(ctx, msg)
}

// Closed reports whether Close has been called.
func (t *Topics[T]) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Len returns the number of live topics.
func (t *Topics[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.topics)
}

// Close closes every topic and its subscribers. Idempotent.
func (t *Topics[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	topics := t.topics
	t.topics = make(map[string]*topic[T])
	t.mu.Unlock()

	for _, tp := range topics {
		_ = tp.b.Close()
	}
	return nil
}

func (t *Topics[T]) release(name string, tp *topic[T]) {
	t.mu.Lock()
	tp.refs--
	last := tp.refs == 0 && t.topics[name] == tp
	if last {
		delete(t.topics, name)
	}
	t.mu.Unlock()

	if last {
		_ = tp.b.Close()
	}
}

type topicSubscriber[T any] struct {
	Subscriber[T]
	release func()
	stop    func() bool
}

func (s *topicSubscriber[T]) Close() error {
	err := s.Subscriber.Close()
	s.stop()
	s.release()
	return err
}
