package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/pkg/authstate"
)

// Session is a browser session. UserID is empty for anonymous visitors.
type Session struct {
	ID             uuid.UUID `json:"id"`
	Token          string    `json:"token"`
	UserID         string    `json:"user_id,omitempty"`
	Fingerprint    string    `json:"fingerprint,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewSession creates a session expiring after ttl.
func NewSession(token, userID, fingerprint string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.New(),
		Token:          token,
		UserID:         userID,
		Fingerprint:    fingerprint,
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != ""
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	if s == nil {
		return
	}
	s.LastActivityAt = time.Now()
}

// ValidateFingerprint checks fingerprint against the stored one. Sessions
// without a fingerprint accept any.
func (s *Session) ValidateFingerprint(fingerprint string) bool {
	if s == nil || s.Fingerprint == "" {
		return true
	}
	return constantTimeCompare(s.Fingerprint, fingerprint)
}

// AuthSession converts s to the form consumed by authstate. It returns nil
// for a nil session.
func (s *Session) AuthSession() *authstate.Session {
	if s == nil {
		return nil
	}
	return &authstate.Session{
		ID:        s.ID.String(),
		UserID:    s.UserID,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func constantTimeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var result byte
	for i := 0; i < len(a); i++ {
		result |= a[i] ^ b[i]
	}
	return result == 0
}
