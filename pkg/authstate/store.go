package authstate

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/storefront/pkg/async"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

// Producer identifies which source a write came from.
type Producer uint8

const (
	// ProducerCheck is the one-shot GetSession call.
	ProducerCheck Producer = iota + 1
	// ProducerPush is the OnAuthStateChange stream.
	ProducerPush
)

func (p Producer) String() string {
	switch p {
	case ProducerCheck:
		return "check"
	case ProducerPush:
		return "push"
	default:
		return "none"
	}
}

// Change describes one applied write.
type Change struct {
	Status   Status
	Previous Status
	Seq      uint64
	Producer Producer
	Event    EventType
}

// Listener observes applied writes. Listeners run on the writing goroutine
// in write order and must not block or trigger a write synchronously.
type Listener func(Change)

// Snapshot is a consistent read of the store.
type Snapshot struct {
	Status Status
	// Seq increases by one with every applied write; 0 means no write yet.
	Seq uint64
	// Resolved reports whether the one-shot check has been written.
	Resolved bool
}

type listener struct {
	fn     Listener
	active atomic.Bool
}

// Store is the single owner of a tab's authentication Status.
type Store struct {
	source       SessionSource
	logger       *slog.Logger
	checkTimeout time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	readyOnce sync.Once
	ready     chan struct{}

	// writeMu serializes writes together with their listener delivery.
	writeMu sync.Mutex

	mu        sync.RWMutex
	status    Status
	seq       uint64
	resolved  bool
	closed    bool
	sub       Subscription
	listeners []*listener
}

// NewStore creates a store for source. Nothing is fetched until first use.
func NewStore(source SessionSource, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		source:       source,
		logger:       logger.Nop(),
		checkTimeout: DefaultConfig().CheckTimeout,
		ctx:          ctx,
		cancel:       cancel,
		ready:        make(chan struct{}),
		status:       Unknown(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Status returns the last known status.
func (s *Store) Status() Status {
	return s.Snapshot().Status
}

// Snapshot returns status, write sequence and resolution state together.
func (s *Store) Snapshot() Snapshot {
	s.start()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Status: s.status, Seq: s.seq, Resolved: s.resolved}
}

// Ready is closed once the one-shot check has been written and delivered
// to listeners.
func (s *Store) Ready() <-chan struct{} {
	s.start()
	return s.ready
}

// Subscribe registers fn for every later write. The returned function
// unsubscribes; once it returns fn is not invoked for any later write.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	l := &listener{fn: fn}
	l.active.Store(true)

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	s.start()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.active.Store(false)

			s.mu.Lock()
			s.listeners = slices.DeleteFunc(s.listeners, func(x *listener) bool { return x == l })
			s.mu.Unlock()
		})
	}
}

// Close detaches the store from its source. Later writes are dropped.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	s.listeners = nil
	s.mu.Unlock()

	s.cancel()
	if sub != nil {
		sub.Unsubscribe()
	}
	return nil
}

func (s *Store) start() {
	s.startOnce.Do(func() {
		sub := s.source.OnAuthStateChange(s.onPush)

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			sub.Unsubscribe()
			return
		}
		s.sub = sub
		s.mu.Unlock()

		go s.check()
	})
}

func (s *Store) onPush(e Event) {
	s.apply(FromSession(e.Session), ProducerPush, e.Type)
}

// check runs the one-shot producer. Errors and timeouts fail closed.
func (s *Store) check() {
	ctx := s.ctx
	if s.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.checkTimeout)
		defer cancel()
	}

	f := async.Async(ctx, s.source, func(ctx context.Context, src SessionSource) (*Session, error) {
		return src.GetSession(ctx)
	})

	sess, err := f.AwaitWithTimeout(s.checkTimeout)
	if errors.Is(err, async.ErrTimeout) {
		err = ErrSessionCheckTimeout
	}

	status := FromSession(sess)
	if err != nil {
		status = Unauthenticated()
		if s.ctx.Err() == nil {
			s.logger.LogAttrs(s.ctx, slog.LevelWarn, "session check failed, treating visitor as signed out",
				logger.Component("authstate"),
				logger.Error(err),
			)
		}
	}

	s.apply(status, ProducerCheck, EventInitialSession)
}

// apply unconditionally replaces the status and notifies listeners.
func (s *Store) apply(status Status, producer Producer, event EventType) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	prev := s.status
	s.status = status
	s.seq++
	change := Change{
		Status:   status,
		Previous: prev,
		Seq:      s.seq,
		Producer: producer,
		Event:    event,
	}

	resolvedNow := producer == ProducerCheck && !s.resolved
	if resolvedNow {
		s.resolved = true
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		if l.active.Load() {
			l.fn(change)
		}
	}

	if resolvedNow {
		s.readyOnce.Do(func() { close(s.ready) })
	}
}
