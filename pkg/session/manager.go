package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/storefront/pkg/authstate"
	"github.com/dmitrymomot/storefront/pkg/broadcast"
	"github.com/dmitrymomot/storefront/pkg/cookie"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

// FingerprintFunc generates a device fingerprint from the request.
type FingerprintFunc func(r *http.Request) string

// Manager handles session operations.
type Manager struct {
	store           Store
	transport       Transport
	config          Config
	logger          *slog.Logger
	fingerprintFunc FingerprintFunc
	cookieManager   *cookie.Manager
	cookieOptions   []cookie.Option
	events          *broadcast.Topics[Event]

	activityChan chan activityUpdate
	done         chan struct{}
	closeOnce    sync.Once
	workerDone   chan struct{}
}

type activityUpdate struct {
	token string
	time  time.Time
}

// New creates a session manager. Without WithStore sessions are kept in
// memory. Without WithTransport a cookie manager is required.
func New(opts ...Option) *Manager {
	m := &Manager{
		config:       DefaultConfig(),
		logger:       logger.Nop(),
		activityChan: make(chan activityUpdate, 1000),
		done:         make(chan struct{}),
		workerDone:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			panic("session: cookie manager is required when using default cookie transport")
		}
		m.transport = NewCookieTransport(m.cookieManager, m.config.CookieName, m.config.SecureCookies, m.cookieOptions...)
	}

	m.events = broadcast.NewTopics[Event](m.config.EventBuffer)

	go m.activityWorker()

	return m
}

// Ensure returns the current session, creating an anonymous one if needed.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	session, err := m.Get(ctx, r)
	if err == nil {
		if m.shouldUpdateActivity(session) {
			m.queueActivityUpdate(session.Token)
		}
		return session, nil
	}

	session, err = m.createSession(ctx, "", r)
	if err != nil {
		return nil, err
	}

	idle, _ := m.config.Timeouts(false)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		_ = m.store.Delete(ctx, session.Token)
		return nil, err
	}

	return session, nil
}

// Get returns the session of r.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := m.validate(session, r); err != nil {
		return nil, err
	}

	return session, nil
}

// Resolve returns the session of r for authstate consumers. A missing,
// expired or foreign session resolves to nil without error; store failures
// are returned.
func (m *Manager) Resolve(r *http.Request) (*authstate.Session, error) {
	session, err := m.Get(r.Context(), r)
	switch {
	case err == nil:
		return session.AuthSession(), nil
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired), errors.Is(err, ErrInvalidSession):
		return nil, nil
	default:
		return nil, errors.Join(ErrStoreFailure, err)
	}
}

// Authenticate signs userID in on the current session, rotating its token,
// and emits signed_in. Without a current session a new one is created.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	session, err := m.Get(ctx, r)
	if err != nil {
		session, err = m.createSession(ctx, userID, r)
		if err != nil {
			return nil, err
		}
	} else {
		session.UserID = userID
		if err := m.rotate(ctx, session, true); err != nil {
			return nil, err
		}
	}

	idle, _ := m.config.Timeouts(true)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		return nil, err
	}

	m.publish(ctx, authstate.EventSignedIn, session.ID, session)
	return session, nil
}

// SignOut keeps the session but drops its user, rotating the token, and
// emits signed_out. Other tabs of the same browser stay on this session
// and see a later sign-in.
func (m *Manager) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	session, err := m.Get(ctx, r)
	if err != nil {
		return m.transport.ClearToken(w)
	}

	session.UserID = ""
	if err := m.rotate(ctx, session, false); err != nil {
		return err
	}

	idle, _ := m.config.Timeouts(false)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		return err
	}

	m.publish(ctx, authstate.EventSignedOut, session.ID, session)
	return nil
}

// Destroy removes the session and emits signed_out.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		if session, err := m.store.Get(ctx, token); err == nil {
			_ = m.store.Delete(ctx, token)
			m.publish(ctx, authstate.EventSignedOut, session.ID, nil)
		}
	}

	return m.transport.ClearToken(w)
}

// Refresh extends the session expiry and emits token_refreshed.
func (m *Manager) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	session, err := m.Get(ctx, r)
	if err != nil {
		return err
	}

	idle, maxLifetime := m.config.Timeouts(session.IsAuthenticated())
	session.ExpiresAt = calculateExpiry(session.CreatedAt, time.Now(), idle, maxLifetime)
	session.Touch()

	if err := m.store.Update(ctx, session); err != nil {
		return err
	}
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		return err
	}

	m.publish(ctx, authstate.EventTokenRefreshed, session.ID, session)
	return nil
}

// Close stops the activity worker and the event broadcaster.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		<-m.workerDone
		_ = m.events.Close()
	})
	return nil
}

// rotate replaces the token of session and recomputes its expiry.
func (m *Manager) rotate(ctx context.Context, session *Session, authenticated bool) error {
	newToken, err := generateToken()
	if err != nil {
		return err
	}

	_ = m.store.Delete(ctx, session.Token)

	session.Token = newToken
	idle, maxLifetime := m.config.Timeouts(authenticated)
	session.ExpiresAt = calculateExpiry(session.CreatedAt, time.Now(), idle, maxLifetime)
	session.Touch()

	return m.store.Create(ctx, session)
}

func (m *Manager) createSession(ctx context.Context, userID string, r *http.Request) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	idle, maxLifetime := m.config.Timeouts(userID != "")
	now := time.Now()

	var fingerprint string
	if m.fingerprintFunc != nil {
		fingerprint = m.fingerprintFunc(r)
	}

	session := NewSession(token, userID, fingerprint, calculateExpiry(now, now, idle, maxLifetime).Sub(now))
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (m *Manager) validate(session *Session, r *http.Request) error {
	if session.IsExpired() {
		return ErrSessionExpired
	}

	if m.fingerprintFunc != nil && session.Fingerprint != "" {
		if !session.ValidateFingerprint(m.fingerprintFunc(r)) {
			return ErrInvalidSession
		}
	}

	return nil
}

func (m *Manager) shouldUpdateActivity(session *Session) bool {
	return time.Since(session.LastActivityAt) >= m.config.ActivityUpdateThreshold
}

func (m *Manager) queueActivityUpdate(token string) {
	select {
	case m.activityChan <- activityUpdate{token: token, time: time.Now()}:
	default:
		// full: dropping keeps the request path non-blocking
	}
}

func (m *Manager) activityWorker() {
	defer close(m.workerDone)

	for {
		select {
		case update := <-m.activityChan:
			m.writeActivity(update)
		case <-m.done:
			for {
				select {
				case update := <-m.activityChan:
					m.writeActivity(update)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) writeActivity(u activityUpdate) {
	if err := m.store.UpdateActivity(context.Background(), u.token, u.time); err != nil && !errors.Is(err, ErrSessionNotFound) {
		m.logger.Warn("session activity update failed",
			logger.Component("session"),
			logger.Error(err),
		)
	}
}

// calculateExpiry returns the earlier of the idle and max lifetime expiries.
func calculateExpiry(createdAt, now time.Time, idle, maxLifetime time.Duration) time.Time {
	idleExpiry := now.Add(idle)
	maxExpiry := createdAt.Add(maxLifetime)

	if maxExpiry.Before(idleExpiry) {
		return maxExpiry
	}
	return idleExpiry
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
