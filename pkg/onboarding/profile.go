package onboarding

import (
	"context"
	"strings"
)

// ProfileFields holds the profile fields that gate onboarding. Nil means
// the column is unset.
type ProfileFields struct {
	Profession  *string
	CompanyName *string
}

// Complete reports whether both fields are set and non-blank.
func (p *ProfileFields) Complete() bool {
	return p != nil && filled(p.Profession) && filled(p.CompanyName)
}

func filled(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// ProfileLookup loads a user's profile fields.
type ProfileLookup interface {
	// GetProfile returns ErrProfileNotFound when the user has no profile.
	GetProfile(ctx context.Context, userID string) (*ProfileFields, error)
}

// ProfileLookupFunc adapts a function to ProfileLookup.
type ProfileLookupFunc func(ctx context.Context, userID string) (*ProfileFields, error)

func (f ProfileLookupFunc) GetProfile(ctx context.Context, userID string) (*ProfileFields, error) {
	return f(ctx, userID)
}
