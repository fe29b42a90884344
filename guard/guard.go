// Package guard holds the route guards: Auth keeps anonymous visitors
// out of authenticated pages and remembers where they were headed, Admin
// additionally requires a superuser.
package guard

import (
	"context"
	"net/url"

	"github.com/radarhq/compass"
	"github.com/radarhq/compass/session"
)

// Session is the slice of the session manager the guards consume.
type Session interface {
	IsLoggedIn() bool
	SetRedirectTarget(target string)
	Users() (<-chan *compass.User, func())
}

var _ Session = (*session.Manager)(nil)

// Auth admits only logged-in users. A refused visitor is sent to the
// login page with the attempted target preserved as a returnUrl query
// parameter, so a successful login lands them where they were headed.
type Auth struct {
	session Session
	nav     compass.Navigator
	log     compass.Logger
}

type Option func(*options)

type options struct {
	log compass.Logger
}

func WithLogger(l compass.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func NewAuth(sess Session, nav compass.Navigator, opts ...Option) *Auth {
	o := options{log: compass.DefaultLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Auth{session: sess, nav: nav, log: o.log}
}

// Allow reports whether the visitor may proceed to attempted. On refusal
// the guard has already navigated to login.
func (g *Auth) Allow(attempted string) bool {
	if g.session.IsLoggedIn() {
		return true
	}
	g.log.Debug("guard: not logged in, redirecting to login from %s", attempted)
	g.session.SetRedirectTarget(attempted)
	g.nav.Navigate(LoginTarget(attempted))
	return false
}

// LoginTarget builds the login route preserving attempted as returnUrl.
func LoginTarget(attempted string) string {
	if attempted == "" {
		return session.TargetLogin
	}
	return session.TargetLogin + "?returnUrl=" + url.QueryEscape(attempted)
}

// Admin admits only superusers. It reads the identity from the session's
// user stream, so it works during startup while the optimistic cached
// identity is the only one known.
type Admin struct {
	session Session
	nav     compass.Navigator
	log     compass.Logger
}

func NewAdmin(sess Session, nav compass.Navigator, opts ...Option) *Admin {
	o := options{log: compass.DefaultLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Admin{session: sess, nav: nav, log: o.log}
}

// Allow reports whether the visitor may proceed to attempted. Anonymous
// visitors go to login with the target preserved; authenticated
// non-superusers are bounced to the manage page.
func (g *Admin) Allow(ctx context.Context, attempted string) bool {
	users, cancel := g.session.Users()
	defer cancel()

	var user *compass.User
	select {
	case user = <-users:
	case <-ctx.Done():
		return false
	}

	if user == nil {
		g.session.SetRedirectTarget(attempted)
		g.nav.Navigate(LoginTarget(attempted))
		return false
	}
	if !user.IsSuperuser {
		g.log.Info("guard: %s is not a superuser, refusing %s", user.Username, attempted)
		g.nav.Navigate(session.TargetAfterLogin)
		return false
	}
	return true
}
