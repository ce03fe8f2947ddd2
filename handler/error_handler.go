package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/requestid"
)

// ErrorView is what error pages and toasts are rendered from.
type ErrorView struct {
	StatusCode int
	Message    string
	RequestID  string
	RetryURL   string
}

// ErrorHandlerConfig selects the components used by NewErrorHandler.
type ErrorHandlerConfig struct {
	// Page renders a full page for browser requests.
	Page func(ErrorView) templ.Component
	// Toast renders a notification patched into ToastTarget for datastar.
	Toast       func(ErrorView) templ.Component
	ToastTarget string
}

// classify maps err to a status and a message safe to show a visitor.
func classify(err error) (int, string) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, httpErr.Message
	}
	return http.StatusInternalServerError, "Something went wrong. Please try again."
}

// PlainErrorHandler answers with a text/plain error.
func PlainErrorHandler(ctx Context, err error) {
	code, msg := classify(err)
	http.Error(ctx.ResponseWriter(), msg, code)
}

// NewErrorHandler logs err and renders cfg.Page or cfg.Toast. Missing
// components fall back to PlainErrorHandler.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler[Context] {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ToastTarget == "" {
		cfg.ToastTarget = "#toasts"
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		code, msg := classify(err)

		level := slog.LevelError
		if code < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.Component("handler"),
			logger.Error(err),
			logger.Path(r.URL.Path),
			slog.Int("status", code),
			slog.Bool("datastar", IsDataStar(r)),
		)

		view := ErrorView{
			StatusCode: code,
			Message:    msg,
			RequestID:  requestid.FromContext(r.Context()),
			RetryURL:   r.URL.RequestURI(),
		}

		var resp Response
		switch {
		case IsDataStar(r) && cfg.Toast != nil:
			resp = Templ(cfg.Toast(view), WithTarget(cfg.ToastTarget), WithPatchMode(PatchPrepend))
		case !IsDataStar(r) && cfg.Page != nil:
			resp = ResponseFunc(func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(code)
				return cfg.Page(view).Render(r.Context(), w)
			})
		default:
			PlainErrorHandler(ctx, err)
			return
		}

		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error view",
				logger.Component("handler"),
				logger.Error(renderErr),
			)
		}
	}
}
