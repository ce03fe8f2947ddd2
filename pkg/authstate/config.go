package authstate

import "time"

// Config holds store settings.
type Config struct {
	// CheckTimeout bounds the one-shot session check; 0 disables the bound.
	CheckTimeout time.Duration `env:"AUTH_CHECK_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{CheckTimeout: 10 * time.Second}
}
