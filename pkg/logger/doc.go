// Package logger builds the structured loggers used across the storefront:
// a *slog.Logger factory driven by functional options, attribute helpers that
// keep key names consistent between the auth cache, the navigation guard and
// the onboarding router, and a handler decorator that copies request-scoped
// values (request id, current path) from context.Context into every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "storefront"),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//	logger.SetAsDefault(log)
//
//	log.LogAttrs(ctx, slog.LevelWarn, "profile lookup failed",
//	    logger.Component("onboarding"),
//	    logger.UserID(userID),
//	    logger.Error(err),
//	)
//
// Helpers such as Error and UserID return an empty slog.Attr for nil input,
// which slog drops, so call sites never need a nil check.
package logger
