package model

import (
	"html/template"
	"net/http"

	"github.com/quietfold/the-journal/internal/config"
	"github.com/quietfold/the-journal/internal/theme"
)

// ThemeControl is one entry of the theme-selection widget. Exactly one
// control is Selected after the controller initializes.
type ThemeControl struct {
	Preference theme.Preference
	Icon       template.HTML
	Selected   bool
}

type PageData struct {
	SiteName  string
	SiteDesc  string
	PageURL   string
	IsDevMode bool

	// PostSlug scopes the page's live-reload subscription; empty on
	// non-post pages.
	PostSlug string

	// Theme is the resolved effective scheme written to the data-theme
	// attribute on the document root.
	Theme string

	Preference     theme.Preference
	ThemeControls  []ThemeControl
	AllowSwitching bool

	SyntaxCSS    template.CSS
	SyntaxTheme  string
	SyntaxThemes []string
}

func NewPageData(r *http.Request, ctrl *theme.Controller) *PageData {
	pref := theme.PreferenceFromRequest(r, ctrl)
	syntaxTheme := theme.SyntaxThemeFromRequest(r, ctrl)

	controls := make([]ThemeControl, 0, 3)
	for _, p := range theme.Preferences() {
		controls = append(controls, ThemeControl{
			Preference: p,
			Icon:       template.HTML(theme.Icon(p)),
			Selected:   p == pref,
		})
	}

	return &PageData{
		SiteName:       config.AppConfig.Site.Name,
		SiteDesc:       config.AppConfig.Site.Description,
		PageURL:        r.URL.Path,
		IsDevMode:      config.Environment() == config.EnvDevelopment,
		Theme:          string(theme.SchemeFromRequest(r, ctrl)),
		Preference:     pref,
		ThemeControls:  controls,
		AllowSwitching: config.AppConfig.Theme.AllowSwitching,
		SyntaxTheme:    syntaxTheme,
		SyntaxThemes:   theme.GetSyntaxThemes(),
		SyntaxCSS:      theme.GenerateSyntaxCSS(syntaxTheme),
	}
}
