package theme

import (
	"context"
	"strings"
)

// Theme is a colour scheme variant.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// PreferenceKey is the key the chosen theme is stored under.
const PreferenceKey = "theme"

// Parse returns the theme named s and whether s named one.
func Parse(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string { return string(t) }

// PreferenceStore is durable key-value storage for preferences.
// Get returns "" with a nil error when key has no value.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Resolve picks the active theme: the first valid value found in stores, in
// order, then the ambient preference (e.g. the visitor's system setting),
// then Light. Store errors are treated as "no value".
func Resolve(ctx context.Context, stores []PreferenceStore, ambient string) Theme {
	for _, s := range stores {
		if s == nil {
			continue
		}
		v, err := s.Get(ctx, PreferenceKey)
		if err != nil {
			continue
		}
		if t, ok := Parse(v); ok {
			return t
		}
	}
	if t, ok := Parse(ambient); ok {
		return t
	}
	return Light
}

// SetPreference persists t and invalidates cached configuration so the next
// load re-merges for the new theme.
func SetPreference(ctx context.Context, store PreferenceStore, loader *Loader, t Theme) error {
	if err := store.Set(ctx, PreferenceKey, string(t)); err != nil {
		return err
	}
	if loader != nil {
		loader.Invalidate()
	}
	return nil
}
