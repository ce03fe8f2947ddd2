package authstate

import (
	"log/slog"
	"time"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for check failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCheckTimeout bounds the one-shot session check.
func WithCheckTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.checkTimeout = d
	}
}

// WithConfig applies a Config.
func WithConfig(cfg Config) Option {
	return func(s *Store) {
		s.checkTimeout = cfg.CheckTimeout
	}
}
