package navguard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/storefront/pkg/async"
	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/redirect"
)

// SessionResolver loads the session of a request. A nil session with a nil
// error means the visitor is signed out.
type SessionResolver func(r *http.Request) (*authstate.Session, error)

// Resolve runs resolve for r within the configured timeout. Errors and
// timeouts resolve to Unauthenticated.
func (g *Guard) Resolve(r *http.Request, resolve SessionResolver) authstate.Status {
	ctx := r.Context()
	if g.cfg.CheckTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.CheckTimeout)
		defer cancel()
	}

	f := async.Async(ctx, r.WithContext(ctx), func(_ context.Context, req *http.Request) (*authstate.Session, error) {
		return resolve(req)
	})
	sess, err := f.AwaitWithTimeout(g.cfg.CheckTimeout)
	if errors.Is(err, async.ErrTimeout) {
		err = authstate.ErrSessionCheckTimeout
	}
	if err != nil {
		g.logger.LogAttrs(r.Context(), slog.LevelWarn, "session resolve failed, treating visitor as signed out",
			logger.Component("navguard"),
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
		return authstate.Unauthenticated()
	}

	return authstate.FromSession(sess)
}

// Middleware guards page loads. Signed-in requests continue with the status
// in their context; everything else is redirected to sign-in with the
// current path as return path and a flash notice.
func (g *Guard) Middleware(resolve SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status := g.Resolve(r, resolve)
			if status.IsAuthenticated() {
				next.ServeHTTP(w, r.WithContext(WithStatus(r.Context(), status)))
				return
			}

			g.deny(w, r)
		})
	}
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request) {
	returnPath := redirect.RequestPath(r)
	if redirect.IsDataStar(r) {
		returnPath, _ = redirect.Sanitize(r.URL.Path)
	}

	if g.flash != nil {
		if err := g.flash.SetFlash(w, r, g.cfg.NoticeKey, AuthRequired(returnPath)); err != nil {
			g.logger.LogAttrs(r.Context(), slog.LevelWarn, "failed to set sign-in notice",
				logger.Component("navguard"),
				logger.Error(err),
			)
		}
	}

	g.logger.LogAttrs(r.Context(), slog.LevelDebug, "page load denied",
		logger.Component("navguard"),
		logger.Path(returnPath),
	)

	if err := redirect.HTTPNavigator(w, r, g.paths).Navigate(r.Context(), redirect.Auth(returnPath)); err != nil {
		g.logger.LogAttrs(r.Context(), slog.LevelError, "redirect to sign-in failed",
			logger.Component("navguard"),
			logger.Error(err),
		)
	}
}
