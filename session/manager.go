// Package session owns the authenticated identity of the running app:
// the bearer token, the cached user, and the navigation that follows a
// login or logout. Initialization is memoized and never fails; a cached
// identity is trusted optimistically while a background request
// revalidates it against the server.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/radarhq/compass"
	"github.com/radarhq/compass/storage"
)

// Default navigation targets.
const (
	TargetAfterLogin  = "/manage"
	TargetAfterLogout = "/"
	TargetLogin       = "/login"
)

// AuthAPI is the slice of the backend the manager needs. *client.AuthService
// satisfies it.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*compass.LoginResponse, error)
	Me(ctx context.Context) (*compass.User, error)
}

// Manager tracks the current session and multicasts identity changes.
// All methods are safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	store storage.Store
	api   AuthAPI
	nav   compass.Navigator
	log   compass.Logger

	token    string
	user     *compass.User
	redirect string

	initDone chan struct{}
	stream   *userStream
}

type Option func(*Manager)

func WithNavigator(nav compass.Navigator) Option {
	return func(m *Manager) {
		if nav != nil {
			m.nav = nav
		}
	}
}

func WithLogger(l compass.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager builds a session manager on top of the given store and API.
func NewManager(store storage.Store, api AuthAPI, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		api:    api,
		nav:    noopNavigator{},
		log:    compass.DefaultLogger(),
		stream: newUserStream(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize restores any cached session and kicks off a background
// revalidation of the cached user. It is memoized: only the first call
// does work, every call returns the same channel, which closes once
// revalidation has finished. Initialization never fails; a backend that
// is down simply leaves the cached identity in place.
func (m *Manager) Initialize(ctx context.Context) <-chan struct{} {
	m.mu.Lock()
	if m.initDone != nil {
		done := m.initDone
		m.mu.Unlock()
		return done
	}
	done := make(chan struct{})
	m.initDone = done

	if token, ok := m.store.Get(storage.KeyAuthToken); ok {
		m.token = token
	}
	if raw, ok := m.store.Get(storage.KeyUser); ok {
		var u compass.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			m.user = &u
		} else {
			m.log.Warn("session: dropping unreadable cached user: %v", err)
			m.store.Delete(storage.KeyUser)
		}
	}
	// A cached user without a token cannot be revalidated, so it must not
	// be trusted. The other half-session, token without user, is repaired
	// or rejected by the revalidation below.
	if m.token == "" && m.user != nil {
		m.log.Warn("session: cached user has no token, clearing session")
		m.user = nil
		m.store.Delete(storage.KeyAuthToken)
		m.store.Delete(storage.KeyUser)
	}
	token, user := m.token, m.user
	m.mu.Unlock()

	// Publish the cached identity before revalidation so early
	// subscribers render the optimistic state.
	m.stream.publish(user)

	go func() {
		defer close(done)
		if token == "" {
			return
		}
		m.revalidate(ctx)
	}()
	return done
}

// revalidate confirms the cached identity with the backend. A 401 means
// the token is stale and the whole session is cleared; any other failure
// is treated as transient and keeps the cached identity.
func (m *Manager) revalidate(ctx context.Context) {
	user, err := m.api.Me(ctx)
	if err != nil {
		if compass.IsUnauthorized(err) {
			m.log.Info("session: cached token rejected, clearing session")
			m.clear()
			m.stream.publish(nil)
			return
		}
		m.log.Warn("session: could not revalidate cached user, keeping it: %v", err)
		return
	}
	m.setIdentity(m.Token(), user)
	m.stream.publish(user)
}

// Login authenticates, persists the session, and navigates to the
// post-login target. It reports the target it navigated to: the
// returnUrl at the current location when present, otherwise a pending
// redirect target (consumed), otherwise the manage page.
func (m *Manager) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := m.api.Login(ctx, username, password)
	if err != nil {
		return "", err
	}

	m.setIdentity(resp.AccessToken, resp.User)
	m.stream.publish(resp.User)

	target := m.nav.ReturnURL()
	if target == "" {
		target = m.consumeRedirectTarget()
	}
	if target == "" {
		target = TargetAfterLogin
	}
	m.nav.Navigate(target)
	return target, nil
}

// Logout drops the session and navigates home. It is local only; there
// is no server-side session to tear down.
func (m *Manager) Logout() {
	m.clear()
	m.stream.publish(nil)
	m.nav.Navigate(TargetAfterLogout)
}

// HandleUnauthorized invalidates the session without navigating. It is
// what the HTTP client's unauthorized handler should call: the guard on
// the next route change takes care of sending the user to login.
func (m *Manager) HandleUnauthorized() {
	m.mu.Lock()
	hadSession := m.token != "" || m.user != nil
	m.mu.Unlock()
	if !hadSession {
		return
	}
	m.log.Info("session: request rejected with 401, invalidating session")
	m.clear()
	m.stream.publish(nil)
}

// IsLoggedIn reports whether both a token and a user are present.
func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && m.user != nil
}

// Token returns the current bearer token, or "" when logged out. It is
// shaped to serve as a client.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// User returns the current identity snapshot, or nil when logged out.
func (m *Manager) User() *compass.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Users subscribes to identity updates. The latest known identity is
// replayed immediately; nil means logged out.
func (m *Manager) Users() (<-chan *compass.User, func()) {
	return m.stream.Subscribe()
}

// SetRedirectTarget records where the next successful login should land.
// It is consumed by the first Login that uses it.
func (m *Manager) SetRedirectTarget(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redirect = target
}

func (m *Manager) consumeRedirectTarget() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := m.redirect
	m.redirect = ""
	return target
}

func (m *Manager) setIdentity(token string, user *compass.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.user = user
	if err := m.store.Set(storage.KeyAuthToken, token); err != nil {
		m.log.Warn("session: could not persist token: %v", err)
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := m.store.Set(storage.KeyUser, string(raw)); err != nil {
			m.log.Warn("session: could not persist user: %v", err)
		}
	}
}

func (m *Manager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.user = nil
	m.store.Delete(storage.KeyAuthToken)
	m.store.Delete(storage.KeyUser)
}

type noopNavigator struct{}

func (noopNavigator) Navigate(string)   {}
func (noopNavigator) ReturnURL() string { return "" }
