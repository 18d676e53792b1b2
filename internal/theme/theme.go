// Package theme keeps the rendered color theme consistent with the persisted
// preference, resolving "auto" against the system color scheme.
package theme

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/quietfold/the-journal/internal/config"
	"github.com/quietfold/the-journal/internal/scheme"
	"github.com/quietfold/the-journal/internal/store"
)

// Preference is the persisted theme choice.
type Preference string

const (
	PreferenceLight Preference = "light"
	PreferenceDark  Preference = "dark"
	PreferenceAuto  Preference = "auto"
)

// ParsePreference validates a raw preference string.
func ParsePreference(s string) (Preference, bool) {
	switch p := Preference(s); p {
	case PreferenceLight, PreferenceDark, PreferenceAuto:
		return p, true
	}
	return "", false
}

// Preferences lists the selectable preferences in display order.
func Preferences() []Preference {
	return []Preference{PreferenceLight, PreferenceDark, PreferenceAuto}
}

// Applier receives the effective scheme whenever it changes. The production
// applier pushes the new scheme to connected pages.
type Applier interface {
	Apply(scheme.Scheme)
}

type ApplierFunc func(scheme.Scheme)

func (f ApplierFunc) Apply(s scheme.Scheme) { f(s) }

var themeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	themeLogger = l
}

// Controller owns the theme preference lifecycle: load on startup, persist on
// change, and track the system scheme while the preference is auto. At most
// one system subscription exists at any time.
type Controller struct {
	store   store.Store
	source  scheme.Source
	applier Applier

	mu          sync.Mutex
	pref        Preference
	effective   scheme.Scheme
	cancelWatch func()
}

func NewController(st store.Store, src scheme.Source, applier Applier) *Controller {
	return &Controller{
		store:   st,
		source:  src,
		applier: applier,
		pref:    defaultPreference(),
	}
}

// defaultPreference is the configured default, auto when unconfigured.
func defaultPreference() Preference {
	if config.AppConfig != nil {
		if p, ok := ParsePreference(config.AppConfig.Theme.Default); ok {
			return p
		}
	}
	return PreferenceAuto
}

// Initialize loads the persisted preference (defaulting when absent or
// unreadable) and applies the corresponding effective scheme. A store read
// failure is a degraded mode, not an error.
func (c *Controller) Initialize() {
	pref := defaultPreference()

	value, ok, err := c.store.Get(config.PreferenceKey)
	if err != nil {
		themeLogger.Warn().Err(err).Msg("Error reading theme preference, falling back to default")
	} else if ok {
		if p, valid := ParsePreference(value); valid {
			pref = p
		}
	}

	c.mu.Lock()
	eff := c.transitionLocked(pref)
	c.mu.Unlock()

	c.applier.Apply(eff)
}

// SetPreference persists pref and applies the resulting effective scheme.
// Selecting auto establishes the system watcher; selecting light or dark
// tears down any active watcher first. Invalid values are ignored.
func (c *Controller) SetPreference(pref Preference) {
	if _, valid := ParsePreference(string(pref)); !valid {
		return
	}

	if err := c.store.Set(config.PreferenceKey, string(pref)); err != nil {
		// Degraded mode: the preference holds for this run only.
		themeLogger.Warn().Err(err).Msg("Error persisting theme preference")
	}

	c.mu.Lock()
	eff := c.transitionLocked(pref)
	c.mu.Unlock()

	c.applier.Apply(eff)
}

// Preference returns the current preference; exactly one control should be
// rendered as selected, and this is it.
func (c *Controller) Preference() Preference {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pref
}

// Effective returns the scheme currently applied to the document root.
func (c *Controller) Effective() scheme.Scheme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effective
}

// transitionLocked moves the controller to pref and returns the new effective
// scheme. The previous watcher, if any, is always torn down before a new one
// may be established.
func (c *Controller) transitionLocked(pref Preference) scheme.Scheme {
	c.pref = pref

	if c.cancelWatch != nil {
		c.cancelWatch()
		c.cancelWatch = nil
	}

	if pref == PreferenceAuto {
		cancel, err := c.source.Subscribe(c.onSystemChange)
		if err != nil {
			themeLogger.Warn().Err(err).Msg("Error watching system color scheme")
		} else {
			c.cancelWatch = cancel
		}
		c.effective = c.source.Current()
	} else {
		c.effective = scheme.Scheme(pref)
	}

	return c.effective
}

func (c *Controller) onSystemChange(s scheme.Scheme) {
	c.mu.Lock()
	if c.pref != PreferenceAuto {
		// Stale event from a watcher torn down concurrently.
		c.mu.Unlock()
		return
	}
	c.effective = s
	c.mu.Unlock()

	c.applier.Apply(s)
}
