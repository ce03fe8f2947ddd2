package storefront

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/navguard"
	"github.com/dmitrymomot/storefront/pkg/onboarding"
	"github.com/dmitrymomot/storefront/pkg/redirect"
	"github.com/dmitrymomot/storefront/pkg/session"
)

// Profiles reads and writes provider profiles.
type Profiles interface {
	onboarding.ProfileLookup
	SaveProfile(ctx context.Context, userID, profession, companyName string) error
}

// FlashReader pops one-time values set by the guard.
type FlashReader interface {
	PopFlash(w http.ResponseWriter, r *http.Request, key string, dest any) (bool, error)
}

// Options are the module's collaborators. Sessions, Guard, Router and
// Profiles are required.
type Options struct {
	Sessions  *session.Manager
	Guard     *navguard.Guard
	Router    *onboarding.Router
	Profiles  Profiles
	Flash     FlashReader
	NoticeKey string
	Store     authstate.Config
	Logger    *slog.Logger
	// Protected lists path prefixes that need a signed-in user in addition
	// to onboarding and the dashboard.
	Protected []string
}

// Module serves the storefront pages.
type Module struct {
	opts      Options
	paths     redirect.Paths
	log       *slog.Logger
	errors    handler.ErrorHandler[handler.Context]
	protected []string
}

func New(opts Options) *Module {
	if opts.Sessions == nil || opts.Guard == nil || opts.Router == nil || opts.Profiles == nil {
		panic("storefront: Sessions, Guard, Router and Profiles are required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Store == (authstate.Config{}) {
		opts.Store = authstate.DefaultConfig()
	}
	if opts.NoticeKey == "" {
		opts.NoticeKey = navguard.DefaultConfig().NoticeKey
	}

	paths := opts.Guard.Paths()
	log := opts.Logger.With(logger.Component("storefront"))
	return &Module{
		opts:      opts,
		paths:     paths,
		log:       log,
		errors:    handler.NewErrorHandler(log, handler.ErrorHandlerConfig{Page: errorPage, Toast: errorToast}),
		protected: append([]string{paths.Dashboard, paths.Onboarding}, opts.Protected...),
	}
}

// Handler returns the module routes. Every request gets a session so all
// tabs of a browser follow the same one.
func (m *Module) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(m.opts.Sessions.EnsureSession)

	public := m.opts.Router.RedirectAuthenticated(m.opts.Sessions.Resolve)
	guarded := m.opts.Guard.Middleware(m.opts.Sessions.Resolve)

	r.With(public).Get("/", m.home)
	r.With(public).Get(m.paths.Auth, m.signInPage)
	r.Post(m.paths.Auth, m.signIn())
	r.Post(m.paths.Auth+"/logout", m.signOut)
	r.Get("/app/stream", m.stream)

	r.Group(func(r chi.Router) {
		r.Use(guarded)
		r.Get(m.paths.Dashboard, m.dashboard)
		r.Get(m.paths.Onboarding, m.onboardingPage)
		r.Post(m.paths.Onboarding, m.saveOnboarding())
		for _, p := range m.opts.Protected {
			r.Get(p, m.protectedPage)
		}
	})

	return r
}

// isProtected reports whether path needs a signed-in user.
func (m *Module) isProtected(path string) bool {
	for _, p := range m.protected {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
