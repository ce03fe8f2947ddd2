package redirect

import "net/url"

// Paths maps targets to application routes.
type Paths struct {
	Auth        string `env:"PATH_AUTH" envDefault:"/auth"`
	Onboarding  string `env:"PATH_ONBOARDING" envDefault:"/onboarding"`
	Dashboard   string `env:"PATH_DASHBOARD" envDefault:"/dashboard"`
	ReturnParam string `env:"PATH_RETURN_PARAM" envDefault:"redirect"`
}

// DefaultPaths returns the storefront's standard routes.
func DefaultPaths() Paths {
	return Paths{
		Auth:        "/auth",
		Onboarding:  "/onboarding",
		Dashboard:   "/dashboard",
		ReturnParam: "redirect",
	}
}

// URL renders t as a location. Stay renders as an empty string.
//
// ToAuth carries the return path as a query parameter. ToDashboard goes
// straight to the return path when one is set. ToOnboarding forwards the
// return path so it survives the onboarding form.
func (p Paths) URL(t Target) string {
	switch t.Kind {
	case ToAuth:
		return p.withReturn(p.Auth, t.ReturnPath)
	case ToOnboarding:
		return p.withReturn(p.Onboarding, t.ReturnPath)
	case ToDashboard:
		if t.ReturnPath != "" {
			return t.ReturnPath
		}
		return p.Dashboard
	default:
		return ""
	}
}

func (p Paths) withReturn(base, returnPath string) string {
	if returnPath == "" || p.ReturnParam == "" {
		return base
	}
	return base + "?" + url.Values{p.ReturnParam: {returnPath}}.Encode()
}
