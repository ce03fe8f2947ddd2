// Command storefront serves the provider storefront: sign-in, onboarding and
// the guarded dashboard, with live per-tab auth updates over datastar.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/storefront/migrations"
	"github.com/dmitrymomot/storefront/modules/storefront"
	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/config"
	"github.com/dmitrymomot/storefront/pkg/cookie"
	"github.com/dmitrymomot/storefront/pkg/fingerprint"
	"github.com/dmitrymomot/storefront/pkg/httpserver"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/navguard"
	"github.com/dmitrymomot/storefront/pkg/onboarding"
	"github.com/dmitrymomot/storefront/pkg/pg"
	"github.com/dmitrymomot/storefront/pkg/redirect"
	"github.com/dmitrymomot/storefront/pkg/redis"
	"github.com/dmitrymomot/storefront/pkg/requestid"
	"github.com/dmitrymomot/storefront/pkg/session"
)

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	Service   string `env:"APP_SERVICE" envDefault:"storefront"`
	Protected string `env:"APP_PROTECTED_PATHS" envDefault:"/bookings"`
	// BindDevice rejects a session token presented by another browser.
	BindDevice bool `env:"SESSION_BIND_DEVICE" envDefault:"true"`

	HTTP       httpserver.Config
	Postgres   pg.Config
	Redis      redis.Config
	Cookie     cookie.Config
	Session    session.Config
	Paths      redirect.Paths
	Guard      navguard.Config
	Onboarding onboarding.Config
	AuthState  authstate.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithContextExtractors(requestid.LogExtractor()),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("storefront stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.Postgres, migrations.FS, log); err != nil {
		return err
	}

	probes := []httpserver.Probe{pg.Healthcheck(pool)}

	sessionOpts := []session.Option{
		session.WithConfig(cfg.Session),
		session.WithLogger(log),
	}
	if cfg.BindDevice {
		sessionOpts = append(sessionOpts, session.WithFingerprint(fingerprint.Generate))
	}
	if cfg.Redis.Enabled() {
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessionOpts = append(sessionOpts, session.WithStore(session.NewRedisStore(rdb)))
		probes = append(probes, redis.Healthcheck(rdb))
	} else {
		log.Warn("REDIS_URL not set, sessions are kept in memory", logger.Component("storefront"))
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return err
	}
	sessionOpts = append(sessionOpts, session.WithCookieManager(cookies))
	sessions := session.New(sessionOpts...)

	guard := navguard.New(
		navguard.WithConfig(cfg.Guard),
		navguard.WithPaths(cfg.Paths),
		navguard.WithLogger(log),
		navguard.WithNotifier(storefront.Notifier()),
		navguard.WithFlash(cookies),
	)

	profiles := onboarding.NewPGProfiles(pool)
	router := onboarding.NewRouter(profiles,
		onboarding.WithConfig(cfg.Onboarding),
		onboarding.WithPaths(cfg.Paths),
		onboarding.WithLogger(log),
	)

	mod := storefront.New(storefront.Options{
		Sessions:  sessions,
		Guard:     guard,
		Router:    router,
		Profiles:  profiles,
		Flash:     cookies,
		NoticeKey: cfg.Guard.NoticeKey,
		Store:     cfg.AuthState,
		Logger:    log,
		Protected: splitPaths(cfg.Protected),
	})

	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.Recoverer)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, 2*time.Second, probes...))
	r.Mount("/", mod.Handler())

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook(func(context.Context) error {
			guard.Close()
			return nil
		}),
		httpserver.WithShutdownHook(func(context.Context) error {
			return sessions.Close()
		}),
	)

	if err := srv.Run(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func splitPaths(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
