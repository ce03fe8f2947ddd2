package storefront

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/navguard"
)

const (
	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
	guardedID      = "guarded"
	toastsID       = "toasts"
)

var esc = templ.EscapeString[string]

func component(f func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error { return f(w) })
}

// layout wraps body in the page shell. streamPage is the location the tab
// stream follows; the stream is opened once the page has loaded.
func layout(title, streamPage string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		stream := "/app/stream?" + url.Values{"page": {streamPage}}.Encode()
		if _, err := fmt.Fprintf(w, `<!doctype html><html lang="en"><head><meta charset="utf-8">`+
			`<title>%s · Storefront</title><script type="module" src="%s"></script></head><body>`+
			`<div id="%s" aria-live="polite"></div><div data-init="@get('%s')"></div><main>`,
			esc(title), datastarScript, toastsID, esc(stream)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func homeView(authPath string) templ.Component {
	return component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>Take bookings from your own page</h1><p><a href="%s">Sign in</a></p>`, esc(authPath))
		return err
	})
}

func signInView(authPath, returnPath string, notice *navguard.Notice) templ.Component {
	return component(func(w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Sign in</h1>`); err != nil {
			return err
		}
		if notice != nil {
			if err := noticeView(*notice).Render(context.Background(), w); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `<form method="post" action="%s">`+
			`<label>Account ID <input name="user_id" autocomplete="username"></label>`+
			`<input type="hidden" name="redirect" value="%s">`+
			`<button type="submit">Continue</button></form>`,
			esc(authPath), esc(returnPath))
		return err
	})
}

func dashboardView(userID string) templ.Component {
	return component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h2>Bookings</h2><p>Signed in as <strong>%s</strong>.</p>`, esc(userID))
		return err
	})
}

func protectedView(path, userID string) templ.Component {
	return component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h2>%s</h2><p>Signed in as <strong>%s</strong>.</p>`, esc(path), esc(userID))
		return err
	})
}

// guardedView renders the protected region and the sign-out form.
func guardedView(title, logoutPath string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<header><h1>%s</h1><form method="post" action="%s"><button>Sign out</button></form></header>`,
			esc(title), esc(logoutPath)); err != nil {
			return err
		}
		return guardedRegion(content).Render(ctx, w)
	})
}

// guardedRegion is the element the tab stream patches as the mount state
// changes.
func guardedRegion(content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section id="%s">`, guardedID); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

type onboardingForm struct {
	Profession  string `form:"profession"`
	CompanyName string `form:"company_name"`
	Redirect    string `form:"redirect"`
}

func onboardingView(action string, f onboardingForm, problem string) templ.Component {
	return component(func(w io.Writer) error {
		if _, err := io.WriteString(w, `<h2>Tell customers who you are</h2>`); err != nil {
			return err
		}
		if problem != "" {
			if _, err := fmt.Fprintf(w, `<p role="alert">%s</p>`, esc(problem)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `<form method="post" action="%s">`+
			`<label>Profession <input name="profession" value="%s" required></label>`+
			`<label>Company name <input name="company_name" value="%s" required></label>`+
			`<input type="hidden" name="redirect" value="%s">`+
			`<button type="submit">Save</button></form>`,
			esc(action), esc(f.Profession), esc(f.CompanyName), esc(f.Redirect))
		return err
	})
}

func noticeView(n navguard.Notice) templ.Component {
	return component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="notice notice-%s" id="notice-%s" role="status">%s</div>`,
			esc(n.Kind), esc(n.ID), esc(n.Message))
		return err
	})
}

func errorPage(v handler.ErrorView) templ.Component {
	return layout("Error", v.RetryURL, component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>%d</h1><p>%s</p><p><small>Request %s</small></p><p><a href="%s">Try again</a></p>`,
			v.StatusCode, esc(v.Message), esc(v.RequestID), esc(v.RetryURL))
		return err
	}))
}

func errorToast(v handler.ErrorView) templ.Component {
	return component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="notice notice-error" role="alert">%s</div>`, esc(v.Message))
		return err
	})
}
