package onboarding

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/storefront/pkg/async"
	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/navguard"
	"github.com/dmitrymomot/storefront/pkg/redirect"
)

// Router classifies authenticated users and redirects them.
type Router struct {
	lookup        ProfileLookup
	logger        *slog.Logger
	lookupTimeout time.Duration
	paths         redirect.Paths
}

// Option configures a Router.
type Option func(*Router)

func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLookupTimeout bounds profile lookups.
func WithLookupTimeout(d time.Duration) Option {
	return func(r *Router) {
		r.lookupTimeout = d
	}
}

func WithConfig(cfg Config) Option {
	return func(r *Router) {
		r.lookupTimeout = cfg.LookupTimeout
	}
}

// WithPaths sets the application routes used for redirects.
func WithPaths(p redirect.Paths) Option {
	return func(r *Router) {
		r.paths = p
	}
}

// NewRouter creates a router backed by lookup.
func NewRouter(lookup ProfileLookup, opts ...Option) *Router {
	r := &Router{
		lookup:        lookup,
		logger:        logger.Nop(),
		lookupTimeout: DefaultConfig().LookupTimeout,
		paths:         redirect.DefaultPaths(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Paths returns the routes the router redirects to.
func (r *Router) Paths() redirect.Paths {
	return r.paths
}

// Decide returns ToOnboarding for a missing or incomplete profile and
// ToDashboard(returnPath) otherwise. Lookup errors and timeouts are logged
// and decide ToDashboard.
func (r *Router) Decide(ctx context.Context, userID, returnPath string) redirect.Target {
	start := time.Now()
	profile, err := r.fetch(ctx, userID)

	var target redirect.Target
	switch {
	case errors.Is(err, ErrProfileNotFound):
		target = redirect.Onboarding(returnPath)
	case err != nil:
		r.logger.LogAttrs(ctx, slog.LevelWarn, "profile lookup failed, assuming onboarded",
			logger.Component("onboarding"),
			logger.UserID(userID),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		)
		target = redirect.Dashboard(returnPath)
	case profile.Complete():
		target = redirect.Dashboard(returnPath)
	default:
		target = redirect.Onboarding(returnPath)
	}

	r.logger.LogAttrs(ctx, slog.LevelDebug, "onboarding decision",
		logger.Component("onboarding"),
		logger.UserID(userID),
		logger.Target(target),
	)
	return target
}

func (r *Router) fetch(ctx context.Context, userID string) (*ProfileFields, error) {
	if r.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.lookupTimeout)
		defer cancel()
	}

	f := async.Async(ctx, userID, r.lookup.GetProfile)
	profile, err := f.AwaitWithTimeout(r.lookupTimeout)
	switch {
	case errors.Is(err, async.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return nil, errors.Join(ErrLookupTimeout, err)
	case errors.Is(err, ErrProfileNotFound):
		return nil, err
	case err != nil:
		return nil, errors.Join(ErrProfileLookup, err)
	}
	return profile, nil
}

// RedirectAuthenticated keeps signed-in users off public entry pages such
// as sign-in: they are sent to onboarding or to the dashboard, honouring a
// valid return path. Visitors without a session, or whose session cannot
// be resolved, see the page.
func (r *Router) RedirectAuthenticated(resolve navguard.SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := resolve(req)
			if err != nil {
				r.logger.LogAttrs(req.Context(), slog.LevelDebug, "session resolve failed on public page",
					logger.Component("onboarding"),
					logger.Path(req.URL.Path),
					logger.Error(err),
				)
				next.ServeHTTP(w, req)
				return
			}

			status := authstate.FromSession(sess)
			if !status.IsAuthenticated() {
				next.ServeHTTP(w, req)
				return
			}

			target := r.Decide(req.Context(), status.UserID, redirect.ReturnPath(req, r.paths.ReturnParam))
			if err := redirect.HTTPNavigator(w, req, r.paths).Navigate(req.Context(), target); err != nil {
				r.logger.LogAttrs(req.Context(), slog.LevelError, "redirect failed",
					logger.Component("onboarding"),
					logger.Target(target),
					logger.Error(err),
				)
			}
		})
	}
}
