package theme

import (
	"net/http"

	"github.com/quietfold/the-journal/internal/config"
	"github.com/quietfold/the-journal/internal/scheme"
)

// PreferenceFromRequest returns the visitor's preference cookie when present,
// otherwise the controller's preference.
func PreferenceFromRequest(r *http.Request, c *Controller) Preference {
	if cookie, err := r.Cookie(config.CookieTheme); err == nil {
		if p, ok := ParsePreference(cookie.Value); ok {
			return p
		}
	}
	return c.Preference()
}

// SchemeFromRequest resolves the effective scheme for a request: the visitor
// cookie overrides the controller, and auto follows the system scheme the
// controller tracks.
func SchemeFromRequest(r *http.Request, c *Controller) scheme.Scheme {
	if cookie, err := r.Cookie(config.CookieTheme); err == nil {
		if p, ok := ParsePreference(cookie.Value); ok && p != PreferenceAuto {
			return scheme.Scheme(p)
		}
	}
	return c.Effective()
}

// DefaultSyntaxTheme maps an effective scheme to its configured default
// syntax-highlighting theme.
func DefaultSyntaxTheme(s scheme.Scheme) string {
	return map[scheme.Scheme]string{
		scheme.Light: config.AppConfig.Theme.SyntaxHighlighting.DefaultLight,
		scheme.Dark:  config.AppConfig.Theme.SyntaxHighlighting.DefaultDark,
	}[s]
}

// SyntaxThemeFromRequest returns the visitor's syntax theme cookie, falling
// back to the default for the resolved scheme.
func SyntaxThemeFromRequest(r *http.Request, c *Controller) string {
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil {
		return cookie.Value
	}
	return DefaultSyntaxTheme(SchemeFromRequest(r, c))
}

// Icon returns the toolbar icon for a preference control.
func Icon(p Preference) string {
	switch p {
	case PreferenceLight:
		return config.LightThemeIcon
	case PreferenceDark:
		return config.DarkThemeIcon
	default:
		return config.AutoThemeIcon
	}
}
