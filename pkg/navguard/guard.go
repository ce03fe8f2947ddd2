package navguard

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/redirect"
)

// FlashWriter stores a one-time value for the next request.
// cookie.Manager implements it.
type FlashWriter interface {
	SetFlash(w http.ResponseWriter, r *http.Request, key string, value any) error
}

// Guard holds the dependencies shared by every mount and guarded request.
type Guard struct {
	cfg         Config
	paths       redirect.Paths
	logger      *slog.Logger
	notifier    Notifier
	flash       FlashWriter
	placeholder templ.Component

	queue     *Queue
	ownsQueue bool
}

// Option configures a Guard.
type Option func(*Guard)

// WithConfig replaces the guard configuration.
func WithConfig(cfg Config) Option {
	return func(g *Guard) {
		g.cfg = cfg
	}
}

// WithPaths sets the application routes used for redirects.
func WithPaths(p redirect.Paths) Option {
	return func(g *Guard) {
		g.paths = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithNotifier sets where mount denial notices are delivered.
func WithNotifier(n Notifier) Option {
	return func(g *Guard) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithQueue makes the guard defer notices on q. The caller owns q.
func WithQueue(q *Queue) Option {
	return func(g *Guard) {
		if q != nil {
			g.queue = q
		}
	}
}

// WithFlash sets the flash store used by Middleware for denial notices.
func WithFlash(f FlashWriter) Option {
	return func(g *Guard) {
		g.flash = f
	}
}

// WithPlaceholder sets the component rendered while a mount is loading.
func WithPlaceholder(c templ.Component) Option {
	return func(g *Guard) {
		if c != nil {
			g.placeholder = c
		}
	}
}

// New creates a guard. Without WithQueue the guard owns a queue that Close
// drains.
func New(opts ...Option) *Guard {
	g := &Guard{
		cfg:         DefaultConfig(),
		paths:       redirect.DefaultPaths(),
		logger:      logger.Nop(),
		notifier:    discardNotifier{},
		placeholder: defaultPlaceholder,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.queue == nil {
		g.queue = NewQueue(8)
		g.ownsQueue = true
	}

	return g
}

// Paths returns the routes the guard redirects to.
func (g *Guard) Paths() redirect.Paths {
	return g.paths
}

// Close drains the guard's own queue. A queue passed with WithQueue is left
// to its owner.
func (g *Guard) Close() {
	if g.ownsQueue {
		g.queue.Close()
	}
}

func (g *Guard) deferNotice(ctx context.Context, n Notice) {
	notifier := g.notifier
	if !g.queue.Defer(func() { notifier.Notify(ctx, n) }) {
		g.logger.LogAttrs(ctx, slog.LevelDebug, "notice dropped, queue closed",
			logger.Component("navguard"),
			logger.Path(n.Path),
		)
	}
}

var defaultPlaceholder = templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, `<div class="guard-loading" aria-busy="true">Loading&hellip;</div>`)
	return err
})
