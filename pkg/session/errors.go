package session

import "errors"

var (
	ErrInvalidSession  = errors.New("session.invalid")
	ErrSessionExpired  = errors.New("session.expired")
	ErrSessionNotFound = errors.New("session.not_found")
	ErrTokenGeneration = errors.New("session.token_generation_failed")
	ErrEmptyUserID     = errors.New("session.empty_user_id")
	ErrStoreFailure    = errors.New("session.store_failure")
)
