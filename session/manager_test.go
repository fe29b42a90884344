package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/radarhq/compass"
	"github.com/radarhq/compass/session"
	"github.com/radarhq/compass/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	loginFn func(ctx context.Context, username, password string) (*compass.LoginResponse, error)
	meFn    func(ctx context.Context) (*compass.User, error)
	meCalls int
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (*compass.LoginResponse, error) {
	if f.loginFn == nil {
		return nil, errors.New("login not stubbed")
	}
	return f.loginFn(ctx, username, password)
}

func (f *fakeAPI) Me(ctx context.Context) (*compass.User, error) {
	f.meCalls++
	if f.meFn == nil {
		return nil, errors.New("me not stubbed")
	}
	return f.meFn(ctx)
}

type recordingNav struct {
	returnURL string
	visited   []string
}

func (n *recordingNav) Navigate(target string) { n.visited = append(n.visited, target) }
func (n *recordingNav) ReturnURL() string      { return n.returnURL }

func seedSession(t *testing.T, store storage.Store, token string, user *compass.User) {
	t.Helper()
	require.NoError(t, store.Set(storage.KeyAuthToken, token))
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, store.Set(storage.KeyUser, string(raw)))
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("initialization did not finish")
	}
}

func TestInitialize(t *testing.T) {
	t.Run("restores cached identity before revalidation answers", func(t *testing.T) {
		store := storage.NewMemory()
		seedSession(t, store, "T1", &compass.User{Username: "alice"})

		block := make(chan struct{})
		api := &fakeAPI{meFn: func(ctx context.Context) (*compass.User, error) {
			<-block
			return &compass.User{Username: "alice"}, nil
		}}

		mgr := session.NewManager(store, api)
		done := mgr.Initialize(context.Background())

		// Cached identity is live while the server call is in flight.
		assert.True(t, mgr.IsLoggedIn())
		require.NotNil(t, mgr.User())
		assert.Equal(t, "alice", mgr.User().Username)
		assert.Equal(t, "T1", mgr.Token())

		close(block)
		waitDone(t, done)
		assert.True(t, mgr.IsLoggedIn())
	})

	t.Run("keeps cached identity when revalidation fails transiently", func(t *testing.T) {
		store := storage.NewMemory()
		seedSession(t, store, "T1", &compass.User{Username: "alice"})

		api := &fakeAPI{meFn: func(ctx context.Context) (*compass.User, error) {
			return nil, errors.New("dial tcp: connection refused")
		}}

		mgr := session.NewManager(store, api)
		waitDone(t, mgr.Initialize(context.Background()))

		assert.True(t, mgr.IsLoggedIn())
		require.NotNil(t, mgr.User())
		assert.Equal(t, "alice", mgr.User().Username)

		_, ok := store.Get(storage.KeyAuthToken)
		assert.True(t, ok, "token stays cached across outages")
	})

	t.Run("clears session when cached token is rejected", func(t *testing.T) {
		store := storage.NewMemory()
		seedSession(t, store, "stale", &compass.User{Username: "alice"})

		api := &fakeAPI{meFn: func(ctx context.Context) (*compass.User, error) {
			return nil, compass.ErrUnauthorized
		}}

		mgr := session.NewManager(store, api)
		waitDone(t, mgr.Initialize(context.Background()))

		assert.False(t, mgr.IsLoggedIn())
		assert.Nil(t, mgr.User())
		assert.Empty(t, mgr.Token())

		_, ok := store.Get(storage.KeyAuthToken)
		assert.False(t, ok)
		_, ok = store.Get(storage.KeyUser)
		assert.False(t, ok)
	})

	t.Run("is memoized", func(t *testing.T) {
		store := storage.NewMemory()
		seedSession(t, store, "T1", &compass.User{Username: "alice"})

		api := &fakeAPI{meFn: func(ctx context.Context) (*compass.User, error) {
			return &compass.User{Username: "alice"}, nil
		}}

		mgr := session.NewManager(store, api)
		first := mgr.Initialize(context.Background())
		second := mgr.Initialize(context.Background())
		waitDone(t, first)
		waitDone(t, second)

		assert.Equal(t, 1, api.meCalls)
	})

	t.Run("skips revalidation without a cached token", func(t *testing.T) {
		store := storage.NewMemory()
		api := &fakeAPI{}

		mgr := session.NewManager(store, api)
		waitDone(t, mgr.Initialize(context.Background()))

		assert.False(t, mgr.IsLoggedIn())
		assert.Equal(t, 0, api.meCalls)
	})

	t.Run("clears a cached user that has no token", func(t *testing.T) {
		store := storage.NewMemory()
		// User document cached, token missing: there is nothing to
		// revalidate, so the identity must not be trusted.
		raw, err := json.Marshal(&compass.User{Username: "alice", IsSuperuser: true})
		require.NoError(t, err)
		require.NoError(t, store.Set(storage.KeyUser, string(raw)))

		api := &fakeAPI{}
		mgr := session.NewManager(store, api)
		waitDone(t, mgr.Initialize(context.Background()))

		assert.False(t, mgr.IsLoggedIn())
		assert.Nil(t, mgr.User())
		assert.Equal(t, 0, api.meCalls)

		_, ok := store.Get(storage.KeyUser)
		assert.False(t, ok, "orphaned user document is removed from the store")

		users, cancel := mgr.Users()
		defer cancel()
		select {
		case u := <-users:
			assert.Nil(t, u, "subscribers must not see the orphaned identity")
		case <-time.After(time.Second):
			t.Fatal("no replayed identity")
		}
	})

	t.Run("drops an unreadable cached user", func(t *testing.T) {
		store := storage.NewMemory()
		require.NoError(t, store.Set(storage.KeyAuthToken, "T1"))
		require.NoError(t, store.Set(storage.KeyUser, "{not json"))

		api := &fakeAPI{meFn: func(ctx context.Context) (*compass.User, error) {
			return &compass.User{Username: "alice"}, nil
		}}

		mgr := session.NewManager(store, api)
		waitDone(t, mgr.Initialize(context.Background()))

		// Revalidation repaired the identity from the server.
		assert.True(t, mgr.IsLoggedIn())
		assert.Equal(t, "alice", mgr.User().Username)
	})
}

func TestLogin(t *testing.T) {
	successfulLogin := func(user string) *fakeAPI {
		return &fakeAPI{loginFn: func(ctx context.Context, username, password string) (*compass.LoginResponse, error) {
			return &compass.LoginResponse{
				AccessToken: "T2",
				TokenType:   "bearer",
				User:        &compass.User{Username: user},
			}, nil
		}}
	}

	t.Run("persists session and lands on manage page", func(t *testing.T) {
		store := storage.NewMemory()
		nav := &recordingNav{}
		mgr := session.NewManager(store, successfulLogin("bob"), session.WithNavigator(nav))

		target, err := mgr.Login(context.Background(), "bob", "secret")
		require.NoError(t, err)

		assert.Equal(t, session.TargetAfterLogin, target)
		assert.Equal(t, []string{session.TargetAfterLogin}, nav.visited)
		assert.True(t, mgr.IsLoggedIn())
		assert.Equal(t, "T2", mgr.Token())

		token, ok := store.Get(storage.KeyAuthToken)
		require.True(t, ok)
		assert.Equal(t, "T2", token)
	})

	t.Run("consumes a pending redirect target", func(t *testing.T) {
		nav := &recordingNav{}
		mgr := session.NewManager(storage.NewMemory(), successfulLogin("bob"), session.WithNavigator(nav))
		mgr.SetRedirectTarget("/items/42")

		target, err := mgr.Login(context.Background(), "bob", "secret")
		require.NoError(t, err)
		assert.Equal(t, "/items/42", target)

		// The target is one-shot.
		target, err = mgr.Login(context.Background(), "bob", "secret")
		require.NoError(t, err)
		assert.Equal(t, session.TargetAfterLogin, target)
	})

	t.Run("returnUrl wins over a redirect target", func(t *testing.T) {
		nav := &recordingNav{returnURL: "/solutions/redis"}
		mgr := session.NewManager(storage.NewMemory(), successfulLogin("bob"), session.WithNavigator(nav))
		mgr.SetRedirectTarget("/items/42")

		target, err := mgr.Login(context.Background(), "bob", "secret")
		require.NoError(t, err)
		assert.Equal(t, "/solutions/redis", target)
	})

	t.Run("failed login leaves no session behind", func(t *testing.T) {
		nav := &recordingNav{}
		api := &fakeAPI{loginFn: func(ctx context.Context, username, password string) (*compass.LoginResponse, error) {
			return nil, compass.ErrUnauthorized
		}}
		mgr := session.NewManager(storage.NewMemory(), api, session.WithNavigator(nav))

		_, err := mgr.Login(context.Background(), "bob", "wrong")
		require.Error(t, err)
		assert.False(t, mgr.IsLoggedIn())
		assert.Empty(t, nav.visited)
	})
}

func TestLogout(t *testing.T) {
	store := storage.NewMemory()
	seedSession(t, store, "T1", &compass.User{Username: "alice"})

	nav := &recordingNav{}
	api := &fakeAPI{meFn: func(ctx context.Context) (*compass.User, error) {
		return &compass.User{Username: "alice"}, nil
	}}
	mgr := session.NewManager(store, api, session.WithNavigator(nav))
	waitDone(t, mgr.Initialize(context.Background()))

	mgr.Logout()

	assert.False(t, mgr.IsLoggedIn())
	assert.Equal(t, []string{session.TargetAfterLogout}, nav.visited)
	_, ok := store.Get(storage.KeyAuthToken)
	assert.False(t, ok)
}

func TestHandleUnauthorized(t *testing.T) {
	t.Run("invalidates the session without navigating", func(t *testing.T) {
		store := storage.NewMemory()
		seedSession(t, store, "T1", &compass.User{Username: "alice"})

		nav := &recordingNav{}
		api := &fakeAPI{meFn: func(ctx context.Context) (*compass.User, error) {
			return &compass.User{Username: "alice"}, nil
		}}
		mgr := session.NewManager(store, api, session.WithNavigator(nav))
		waitDone(t, mgr.Initialize(context.Background()))

		mgr.HandleUnauthorized()

		assert.False(t, mgr.IsLoggedIn())
		assert.Empty(t, nav.visited)
		_, ok := store.Get(storage.KeyUser)
		assert.False(t, ok)
	})

	t.Run("is a no-op when already logged out", func(t *testing.T) {
		mgr := session.NewManager(storage.NewMemory(), &fakeAPI{})
		mgr.HandleUnauthorized()
		assert.False(t, mgr.IsLoggedIn())
	})
}

func TestIsLoggedInRequiresBothTokenAndUser(t *testing.T) {
	store := storage.NewMemory()
	// Token cached but no user document.
	require.NoError(t, store.Set(storage.KeyAuthToken, "T1"))

	api := &fakeAPI{meFn: func(ctx context.Context) (*compass.User, error) {
		return nil, errors.New("unreachable backend")
	}}
	mgr := session.NewManager(store, api)
	waitDone(t, mgr.Initialize(context.Background()))

	assert.False(t, mgr.IsLoggedIn())
	assert.Equal(t, "T1", mgr.Token())
}

func TestUsersStream(t *testing.T) {
	t.Run("replays the latest identity to late subscribers", func(t *testing.T) {
		store := storage.NewMemory()
		seedSession(t, store, "T1", &compass.User{Username: "alice"})

		api := &fakeAPI{meFn: func(ctx context.Context) (*compass.User, error) {
			return &compass.User{Username: "alice"}, nil
		}}
		mgr := session.NewManager(store, api)
		waitDone(t, mgr.Initialize(context.Background()))

		users, cancel := mgr.Users()
		defer cancel()

		select {
		case u := <-users:
			require.NotNil(t, u)
			assert.Equal(t, "alice", u.Username)
		case <-time.After(time.Second):
			t.Fatal("no replayed identity")
		}
	})

	t.Run("delivers nil on logout", func(t *testing.T) {
		api := &fakeAPI{loginFn: func(ctx context.Context, username, password string) (*compass.LoginResponse, error) {
			return &compass.LoginResponse{AccessToken: "T2", User: &compass.User{Username: "bob"}}, nil
		}}
		mgr := session.NewManager(storage.NewMemory(), api)

		_, err := mgr.Login(context.Background(), "bob", "secret")
		require.NoError(t, err)

		users, cancel := mgr.Users()
		defer cancel()
		u := <-users
		require.NotNil(t, u)

		mgr.Logout()
		select {
		case u := <-users:
			assert.Nil(t, u)
		case <-time.After(time.Second):
			t.Fatal("logout was not published")
		}
	})
}
