package config

import "os"

const (
	EnvVar = "JOURNAL_ENV"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Environment reports the runtime environment. Anything other than
// "development" counts as production.
func Environment() string {
	if os.Getenv(EnvVar) == EnvDevelopment {
		return EnvDevelopment
	}
	return EnvProduction
}

// ShowDrafts resolves the draft-visibility rule. The config flag wins when it
// is explicit; in "auto" mode drafts are visible only during development.
func ShowDrafts() bool {
	mode := ""
	if AppConfig != nil {
		mode = AppConfig.Content.ShowDrafts
	}

	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return Environment() == EnvDevelopment
	}
}
