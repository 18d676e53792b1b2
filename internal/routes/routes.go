// Package routes defines HTTP route constants for the application.
package routes

const (
	RobotsPath = "/robots.txt"

	// Theme
	ThemeSet       = "/theme/set"
	SyntaxThemeSet = "/syntax-theme/set"
	SyntaxThemeGet = "/syntax-theme/{theme}"

	// Content
	PostPath = "/posts/{slug}"
	FeedPath = "/feed.xml"

	// SSE
	SSEPath = "/sse"

	// Root
	RootPath = "/"
)
