package redirect

// Kind is a navigation decision.
type Kind uint8

const (
	// Stay means no navigation.
	Stay Kind = iota
	ToAuth
	ToOnboarding
	ToDashboard
)

func (k Kind) String() string {
	switch k {
	case ToAuth:
		return "auth"
	case ToOnboarding:
		return "onboarding"
	case ToDashboard:
		return "dashboard"
	default:
		return "stay"
	}
}

// Target is a transient navigation decision. ReturnPath is the sanitized
// path to come back to; Replace asks for the current history entry to be
// replaced rather than pushed.
type Target struct {
	Kind       Kind
	ReturnPath string
	Replace    bool
}

// None is the zero decision.
func None() Target { return Target{} }

// Auth redirects to sign-in, remembering returnPath.
func Auth(returnPath string) Target {
	return Target{Kind: ToAuth, ReturnPath: clean(returnPath), Replace: true}
}

// Onboarding redirects to the onboarding flow. returnPath is carried
// through so the user lands there once onboarding completes.
func Onboarding(returnPath string) Target {
	return Target{Kind: ToOnboarding, ReturnPath: clean(returnPath), Replace: true}
}

// Dashboard redirects to the dashboard, or to returnPath when it is a
// valid same-origin path.
func Dashboard(returnPath string) Target {
	return Target{Kind: ToDashboard, ReturnPath: clean(returnPath), Replace: true}
}

// IsNavigation reports whether the target moves the tab.
func (t Target) IsNavigation() bool {
	return t.Kind != Stay
}

func (t Target) String() string {
	if t.ReturnPath == "" {
		return t.Kind.String()
	}
	return t.Kind.String() + "(" + t.ReturnPath + ")"
}

func clean(p string) string {
	s, ok := Sanitize(p)
	if !ok {
		return ""
	}
	return s
}
