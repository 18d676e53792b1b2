package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"
	HHxTrigger    = "Hx-Trigger"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html"
	CTypeRSS  = "application/rss+xml"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	CookieTheme       = "theme"
	CookieSyntaxTheme = "syntax-theme"
)
