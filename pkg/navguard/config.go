package navguard

import "time"

// Config holds guard settings.
type Config struct {
	// CheckTimeout bounds the page-load session resolve; 0 disables it.
	CheckTimeout time.Duration `env:"GUARD_CHECK_TIMEOUT" envDefault:"10s"`
	// NoticeKey is the flash key the denial notice is stored under.
	NoticeKey string `env:"GUARD_NOTICE_KEY" envDefault:"notice"`
}

// DefaultConfig returns the default guard configuration.
func DefaultConfig() Config {
	return Config{
		CheckTimeout: 10 * time.Second,
		NoticeKey:    "notice",
	}
}
