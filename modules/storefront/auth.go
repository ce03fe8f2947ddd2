package storefront

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/binder"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/navguard"
	"github.com/dmitrymomot/storefront/pkg/redirect"
)

type signInForm struct {
	UserID   string `form:"user_id"`
	Redirect string `form:"redirect"`
}

func (m *Module) home(w http.ResponseWriter, r *http.Request) {
	m.render(w, r, handler.Templ(layout("Storefront", "/", homeView(m.paths.Auth))))
}

// signInPage shows the sign-in form and the notice left by a denied page
// load, if any.
func (m *Module) signInPage(w http.ResponseWriter, r *http.Request) {
	var notice *navguard.Notice
	if m.opts.Flash != nil {
		var n navguard.Notice
		ok, err := m.opts.Flash.PopFlash(w, r, m.opts.NoticeKey, &n)
		if err != nil {
			m.log.LogAttrs(r.Context(), slog.LevelWarn, "unreadable sign-in notice", logger.Error(err))
		}
		if ok {
			notice = &n
		}
	}

	returnPath := redirect.ReturnPath(r, m.paths.ReturnParam)
	m.render(w, r, handler.Templ(layout("Sign in", redirect.RequestPath(r), signInView(m.paths.Auth, returnPath, notice))))
}

// signIn marks the visitor's session as signed in and routes them to
// onboarding or their destination. Credential checks belong to the
// identity provider in front of this form; a blank ID starts a new account.
func (m *Module) signIn() http.HandlerFunc {
	return handler.Wrap(func(ctx handler.Context, req signInForm) handler.Response {
		userID := strings.TrimSpace(req.UserID)
		if userID == "" {
			userID = uuid.NewString()
		}

		if _, err := m.opts.Sessions.Authenticate(ctx, ctx.ResponseWriter(), ctx.Request(), userID); err != nil {
			return handler.Fail(err)
		}

		m.log.LogAttrs(ctx, slog.LevelInfo, "signed in", logger.UserID(userID))

		returnPath, _ := redirect.Sanitize(req.Redirect)
		return handler.Navigate(m.opts.Router.Decide(ctx, userID, returnPath), m.paths)
	},
		handler.WithBinders[handler.Context, signInForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, signInForm](m.errors),
	)
}

// signOut drops the user from the session. Other tabs learn about it from
// the session's signed_out event.
func (m *Module) signOut(w http.ResponseWriter, r *http.Request) {
	if err := m.opts.Sessions.SignOut(r.Context(), w, r); err != nil {
		m.errors(handler.NewContext(w, r), err)
		return
	}
	m.render(w, r, handler.Navigate(redirect.Auth(""), m.paths))
}

func (m *Module) render(w http.ResponseWriter, r *http.Request, resp handler.Response) {
	if err := resp.Render(w, r); err != nil {
		m.errors(handler.NewContext(w, r), err)
	}
}
