package onboarding

import "time"

// Config holds router settings.
type Config struct {
	// LookupTimeout bounds a profile lookup; 0 disables the bound.
	LookupTimeout time.Duration `env:"ONBOARDING_LOOKUP_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig returns the default router configuration.
func DefaultConfig() Config {
	return Config{LookupTimeout: 5 * time.Second}
}
