package onboarding

import "errors"

var (
	ErrProfileNotFound   = errors.New("onboarding: profile not found")
	ErrProfileLookup     = errors.New("onboarding: profile lookup failed")
	ErrLookupTimeout     = errors.New("onboarding: profile lookup timed out")
	ErrProfileSaveFailed = errors.New("onboarding: failed to save profile")
	ErrIncompleteProfile = errors.New("onboarding: profession and company name are required")
)
