package storefront

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/binder"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/navguard"
	"github.com/dmitrymomot/storefront/pkg/onboarding"
	"github.com/dmitrymomot/storefront/pkg/redirect"
)

func (m *Module) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := navguard.UserIDFromContext(r.Context())
	m.renderGuarded(w, r, "Dashboard", dashboardView(userID))
}

func (m *Module) protectedPage(w http.ResponseWriter, r *http.Request) {
	userID, _ := navguard.UserIDFromContext(r.Context())
	m.renderGuarded(w, r, "Storefront", protectedView(r.URL.Path, userID))
}

func (m *Module) renderGuarded(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	body := guardedView(title, m.paths.Auth+"/logout", content)
	m.render(w, r, handler.Templ(layout(title, redirect.RequestPath(r), body)))
}

// onboardingPage shows the profile form prefilled with what is saved.
func (m *Module) onboardingPage(w http.ResponseWriter, r *http.Request) {
	userID, _ := navguard.UserIDFromContext(r.Context())
	form := onboardingForm{Redirect: redirect.ReturnPath(r, m.paths.ReturnParam)}

	profile, err := m.opts.Profiles.GetProfile(r.Context(), userID)
	switch {
	case err == nil:
		form.Profession = deref(profile.Profession)
		form.CompanyName = deref(profile.CompanyName)
	case !errors.Is(err, onboarding.ErrProfileNotFound):
		m.log.LogAttrs(r.Context(), slog.LevelWarn, "could not prefill onboarding form",
			logger.UserID(userID),
			logger.Error(err),
		)
	}

	m.renderOnboarding(w, r, form, "")
}

func (m *Module) renderOnboarding(w http.ResponseWriter, r *http.Request, form onboardingForm, problem string) {
	body := guardedView("Set up your storefront", m.paths.Auth+"/logout", onboardingView(m.paths.Onboarding, form, problem))
	m.render(w, r, handler.Templ(layout("Onboarding", redirect.RequestPath(r), body)))
}

// saveOnboarding stores the profile and sends the user on to the page they
// originally asked for, or the dashboard.
func (m *Module) saveOnboarding() http.HandlerFunc {
	return handler.Wrap(func(ctx handler.Context, req onboardingForm) handler.Response {
		userID, _ := navguard.UserIDFromContext(ctx)

		profession, company := strings.TrimSpace(req.Profession), strings.TrimSpace(req.CompanyName)
		if profession == "" || company == "" {
			return handler.ResponseFunc(func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusUnprocessableEntity)
				m.renderOnboarding(w, r, req, "Both profession and company name are required.")
				return nil
			})
		}

		if err := m.opts.Profiles.SaveProfile(ctx, userID, profession, company); err != nil {
			return handler.Fail(err)
		}

		m.log.LogAttrs(ctx, slog.LevelInfo, "onboarding completed", logger.UserID(userID))

		returnPath, _ := redirect.Sanitize(req.Redirect)
		return handler.Navigate(redirect.Dashboard(returnPath), m.paths)
	},
		handler.WithBinders[handler.Context, onboardingForm](binder.Form()),
		handler.WithErrorHandler[handler.Context, onboardingForm](m.errors),
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
