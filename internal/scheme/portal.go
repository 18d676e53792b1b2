package scheme

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	settingsIface   = "org.freedesktop.portal.Settings"
	appearanceNS    = "org.freedesktop.appearance"
	colorSchemeKey  = "color-scheme"
	settingChangedM = settingsIface + ".SettingChanged"
)

// PortalSource reads the color scheme from the XDG desktop portal and watches
// the SettingChanged signal. Portal values: 0 no preference, 1 dark, 2 light.
type PortalSource struct { // implements Source
	conn     *dbus.Conn
	fallback Scheme

	mu     sync.Mutex
	subs   map[int]func(Scheme)
	nextID int
}

func NewPortalSource(fallback Scheme) (*PortalSource, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("error connecting to session bus: %w", err)
	}

	p := &PortalSource{
		conn:     conn,
		fallback: fallback,
		subs:     make(map[int]func(Scheme)),
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(portalPath),
		dbus.WithMatchInterface(settingsIface),
		dbus.WithMatchMember("SettingChanged"),
	); err != nil {
		return nil, fmt.Errorf("error subscribing to portal settings: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	go p.watch(signals)

	return p, nil
}

func (p *PortalSource) Current() Scheme {
	obj := p.conn.Object(portalDest, portalPath)

	var value dbus.Variant
	err := obj.Call(settingsIface+".Read", 0, appearanceNS, colorSchemeKey).Store(&value)
	if err != nil {
		schemeLogger.Warn().Err(err).Msg("Error reading color scheme from portal")
		return p.fallback
	}

	// Read wraps the setting in a nested variant.
	if inner, ok := value.Value().(dbus.Variant); ok {
		value = inner
	}

	return p.fromPortal(value.Value())
}

func (p *PortalSource) Subscribe(fn func(Scheme)) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.subs[id] = fn

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
		})
	}
	return cancel, nil
}

func (p *PortalSource) watch(signals chan *dbus.Signal) {
	for sig := range signals {
		if sig.Name != settingChangedM || len(sig.Body) < 3 {
			continue
		}

		namespace, _ := sig.Body[0].(string)
		key, _ := sig.Body[1].(string)
		if namespace != appearanceNS || key != colorSchemeKey {
			continue
		}

		raw := sig.Body[2]
		if variant, ok := raw.(dbus.Variant); ok {
			raw = variant.Value()
		}
		s := p.fromPortal(raw)

		p.mu.Lock()
		fns := make([]func(Scheme), 0, len(p.subs))
		for _, fn := range p.subs {
			fns = append(fns, fn)
		}
		p.mu.Unlock()

		schemeLogger.Debug().Str("scheme", string(s)).Msg("System color scheme changed")
		for _, fn := range fns {
			fn(s)
		}
	}
}

func (p *PortalSource) fromPortal(value any) Scheme {
	switch v := value.(type) {
	case uint32:
		switch v {
		case 1:
			return Dark
		case 2:
			return Light
		}
	}
	return p.fallback
}
