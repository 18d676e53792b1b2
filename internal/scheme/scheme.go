// Package scheme models the operating system's color-scheme preference and
// the sources that report it.
package scheme

import "github.com/rs/zerolog"

// Scheme is an effective color scheme. There is no "auto" at this level;
// resolving auto is the theme controller's job.
type Scheme string

const (
	Light Scheme = "light"
	Dark  Scheme = "dark"
)

// Source reports the system color-scheme preference and notifies subscribers
// when it changes. At most one subscription per subscriber is expected; the
// returned cancel function must be safe to call more than once.
type Source interface {
	Current() Scheme
	Subscribe(fn func(Scheme)) (cancel func(), err error)
}

var schemeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	schemeLogger = l
}
