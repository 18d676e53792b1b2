package theme

import (
	"fmt"
	"sync"
	"testing"

	"github.com/quietfold/the-journal/internal/config"
	"github.com/quietfold/the-journal/internal/scheme"
)

// fakeStore is an in-memory store with switchable failure modes.
type fakeStore struct {
	values  map[string]string
	failGet bool
	failSet bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]string)}
}

func (f *fakeStore) Get(key string) (string, bool, error) {
	if f.failGet {
		return "", false, fmt.Errorf("store unavailable")
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeStore) Set(key, value string) error {
	if f.failSet {
		return fmt.Errorf("store unavailable")
	}
	f.values[key] = value
	return nil
}

func (f *fakeStore) Close() error { return nil }

// fakeSource is a controllable system scheme with subscriber accounting.
type fakeSource struct {
	mu      sync.Mutex
	current scheme.Scheme
	subs    map[int]func(scheme.Scheme)
	nextID  int
}

func newFakeSource(current scheme.Scheme) *fakeSource {
	return &fakeSource{current: current, subs: make(map[int]func(scheme.Scheme))}
}

func (f *fakeSource) Current() scheme.Scheme {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeSource) Subscribe(fn func(scheme.Scheme)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}, nil
}

// Emit simulates an OS color-scheme change event.
func (f *fakeSource) Emit(s scheme.Scheme) {
	f.mu.Lock()
	f.current = s
	fns := make([]func(scheme.Scheme), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Active reports how many subscriptions are live.
func (f *fakeSource) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type recordingApplier struct {
	mu      sync.Mutex
	applied []scheme.Scheme
}

func (a *recordingApplier) Apply(s scheme.Scheme) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, s)
}

func (a *recordingApplier) Applied() []scheme.Scheme {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]scheme.Scheme, len(a.applied))
	copy(out, a.applied)
	return out
}

func setupMockConfig() {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	config.AppConfig = cfg
}

func newTestController(st *fakeStore, src *fakeSource) (*Controller, *recordingApplier) {
	applier := &recordingApplier{}
	return NewController(st, src, applier), applier
}

func TestInitializeDefaultsToAuto(t *testing.T) {
	setupMockConfig()

	src := newFakeSource(scheme.Dark)
	c, _ := newTestController(newFakeStore(), src)
	c.Initialize()

	if c.Preference() != PreferenceAuto {
		t.Errorf("Expected preference auto with empty store, got %s", c.Preference())
	}
	if c.Effective() != scheme.Dark {
		t.Errorf("Expected effective scheme to mirror the system (dark), got %s", c.Effective())
	}
	if src.Active() != 1 {
		t.Errorf("Expected one active watcher in auto mode, got %d", src.Active())
	}
}

func TestInitializeUsesPersistedPreference(t *testing.T) {
	setupMockConfig()

	testCases := []struct {
		name           string
		stored         string
		expectedPref   Preference
		expectedScheme scheme.Scheme
		expectWatcher  bool
	}{
		{"Persisted light", "light", PreferenceLight, scheme.Light, false},
		{"Persisted dark", "dark", PreferenceDark, scheme.Dark, false},
		{"Persisted auto", "auto", PreferenceAuto, scheme.Dark, true},
		{"Garbage falls back to auto", "sepia", PreferenceAuto, scheme.Dark, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st := newFakeStore()
			st.values[config.PreferenceKey] = tc.stored
			src := newFakeSource(scheme.Dark)

			c, _ := newTestController(st, src)
			c.Initialize()

			if c.Preference() != tc.expectedPref {
				t.Errorf("Expected preference %s, got %s", tc.expectedPref, c.Preference())
			}
			if c.Effective() != tc.expectedScheme {
				t.Errorf("Expected effective %s, got %s", tc.expectedScheme, c.Effective())
			}
			if tc.expectWatcher != (src.Active() == 1) {
				t.Errorf("Expected watcher=%v, active subscriptions=%d", tc.expectWatcher, src.Active())
			}
		})
	}
}

func TestSetPreferencePersistsAndApplies(t *testing.T) {
	setupMockConfig()

	for _, pref := range Preferences() {
		t.Run(string(pref), func(t *testing.T) {
			st := newFakeStore()
			src := newFakeSource(scheme.Light)
			c, _ := newTestController(st, src)
			c.Initialize()

			c.SetPreference(pref)

			if c.Preference() != pref {
				t.Errorf("Expected preference %s, got %s", pref, c.Preference())
			}
			if st.values[config.PreferenceKey] != string(pref) {
				t.Errorf("Expected persisted %s, got %q", pref, st.values[config.PreferenceKey])
			}

			expected := scheme.Scheme(pref)
			if pref == PreferenceAuto {
				expected = src.Current()
			}
			if c.Effective() != expected {
				t.Errorf("Expected effective %s, got %s", expected, c.Effective())
			}
		})
	}
}

func TestAtMostOneWatcher(t *testing.T) {
	setupMockConfig()

	st := newFakeStore()
	src := newFakeSource(scheme.Dark)
	c, applier := newTestController(st, src)
	c.Initialize()

	// Cycle auto -> light -> auto repeatedly; the watcher count must never
	// exceed one and must drop to zero on light/dark.
	for i := 0; i < 3; i++ {
		c.SetPreference(PreferenceAuto)
		if src.Active() != 1 {
			t.Fatalf("Cycle %d: expected exactly one watcher after auto, got %d", i, src.Active())
		}

		c.SetPreference(PreferenceLight)
		if src.Active() != 0 {
			t.Fatalf("Cycle %d: expected no watcher after light, got %d", i, src.Active())
		}
	}

	// An OS change with no watcher must not re-apply anything.
	before := len(applier.Applied())
	src.Emit(scheme.Dark)
	if len(applier.Applied()) != before {
		t.Error("Expected no apply from an OS change while preference is light")
	}
	if c.Effective() != scheme.Light {
		t.Errorf("Expected effective to stay light, got %s", c.Effective())
	}
}

func TestSetPreferenceIdempotent(t *testing.T) {
	setupMockConfig()

	st := newFakeStore()
	src := newFakeSource(scheme.Light)
	c, _ := newTestController(st, src)
	c.Initialize()

	c.SetPreference(PreferenceDark)
	c.SetPreference(PreferenceDark)

	if c.Effective() != scheme.Dark {
		t.Errorf("Expected effective dark, got %s", c.Effective())
	}
	if st.values[config.PreferenceKey] != "dark" {
		t.Errorf("Expected persisted dark, got %q", st.values[config.PreferenceKey])
	}
	if src.Active() != 0 {
		t.Errorf("Expected no watcher after dark, got %d", src.Active())
	}

	c.SetPreference(PreferenceAuto)
	c.SetPreference(PreferenceAuto)
	if src.Active() != 1 {
		t.Errorf("Expected exactly one watcher after repeated auto, got %d", src.Active())
	}
}

func TestAutoTracksSystemChanges(t *testing.T) {
	setupMockConfig()

	st := newFakeStore()
	src := newFakeSource(scheme.Dark)
	c, _ := newTestController(st, src)
	c.Initialize()
	c.SetPreference(PreferenceAuto)

	if c.Effective() != scheme.Dark {
		t.Fatalf("Expected effective dark, got %s", c.Effective())
	}

	src.Emit(scheme.Light)
	if c.Effective() != scheme.Light {
		t.Errorf("Expected effective to follow system to light, got %s", c.Effective())
	}

	src.Emit(scheme.Dark)
	if c.Effective() != scheme.Dark {
		t.Errorf("Expected effective to follow system back to dark, got %s", c.Effective())
	}
}

func TestStoreFailuresAreSilent(t *testing.T) {
	setupMockConfig()

	st := newFakeStore()
	st.failGet = true
	st.failSet = true
	src := newFakeSource(scheme.Light)

	c, _ := newTestController(st, src)
	c.Initialize()

	if c.Preference() != PreferenceAuto {
		t.Errorf("Expected auto fallback on read failure, got %s", c.Preference())
	}

	// The preference still takes effect for this run.
	c.SetPreference(PreferenceDark)
	if c.Preference() != PreferenceDark {
		t.Errorf("Expected dark despite write failure, got %s", c.Preference())
	}
	if c.Effective() != scheme.Dark {
		t.Errorf("Expected effective dark, got %s", c.Effective())
	}
}

func TestSetPreferenceIgnoresInvalid(t *testing.T) {
	setupMockConfig()

	st := newFakeStore()
	src := newFakeSource(scheme.Light)
	c, _ := newTestController(st, src)
	c.Initialize()
	c.SetPreference(PreferenceDark)

	c.SetPreference(Preference("sepia"))

	if c.Preference() != PreferenceDark {
		t.Errorf("Expected invalid preference to be ignored, got %s", c.Preference())
	}
	if _, ok := st.values["sepia"]; ok {
		t.Error("Expected invalid preference not to be persisted")
	}
}

func TestParsePreference(t *testing.T) {
	testCases := []struct {
		input string
		ok    bool
	}{
		{"light", true},
		{"dark", true},
		{"auto", true},
		{"", false},
		{"Dark", false},
		{"system", false},
	}

	for _, tc := range testCases {
		t.Run("input "+tc.input, func(t *testing.T) {
			_, ok := ParsePreference(tc.input)
			if ok != tc.ok {
				t.Errorf("ParsePreference(%q) ok = %v, expected %v", tc.input, ok, tc.ok)
			}
		})
	}
}
