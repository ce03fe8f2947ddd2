package authstate

// Kind is the ternary authentication state.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAuthenticated
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticated:
		return "authenticated"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Status is the derived authentication state. UserID is set only for
// KindAuthenticated.
type Status struct {
	Kind   Kind
	UserID string
}

func Unknown() Status { return Status{Kind: KindUnknown} }

func Unauthenticated() Status { return Status{Kind: KindUnauthenticated} }

func Authenticated(userID string) Status {
	return Status{Kind: KindAuthenticated, UserID: userID}
}

// FromSession derives a Status from a session payload. A missing, anonymous
// or expired session is Unauthenticated.
func FromSession(s *Session) Status {
	if s == nil || s.UserID == "" || s.IsExpired() {
		return Unauthenticated()
	}
	return Authenticated(s.UserID)
}

// IsKnown reports whether a producer has resolved the status.
func (s Status) IsKnown() bool { return s.Kind != KindUnknown }

func (s Status) IsAuthenticated() bool { return s.Kind == KindAuthenticated }

func (s Status) String() string {
	if s.Kind == KindAuthenticated {
		return "authenticated(" + s.UserID + ")"
	}
	return s.Kind.String()
}
