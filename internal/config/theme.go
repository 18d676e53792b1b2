package config

const (
	// PreferenceKey is the settings-store key holding the persisted theme
	// preference ("light", "dark" or "auto").
	PreferenceKey = "theme"

	// ThemeAttr is the attribute carried by the document root; CSS keys off
	// its value ("light" or "dark") exclusively.
	ThemeAttr = "data-theme"

	LightThemeIcon string = `<i class="fas fa-sun"></i>`
	DarkThemeIcon  string = `<i class="fas fa-moon"></i>`
	AutoThemeIcon  string = `<i class="fas fa-circle-half-stroke"></i>`
)
