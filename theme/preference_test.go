package theme

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type mapStore struct {
	values map[string]string
	err    error
}

func (m *mapStore) Get(ctx context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.values[key], nil
}

func (m *mapStore) Set(ctx context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Theme
		ok   bool
	}{
		{"light", Light, true},
		{"dark", Dark, true},
		{" Dark ", Dark, true},
		{"", "", false},
		{"blue", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if Light.Toggle() != Dark || Dark.Toggle() != Light {
		t.Error("Toggle should swap light and dark")
	}
}

func TestResolveOrder(t *testing.T) {
	visitor := &mapStore{values: map[string]string{}}
	site := &mapStore{values: map[string]string{PreferenceKey: "dark"}}
	broken := &mapStore{err: errors.New("disk on fire")}

	tests := []struct {
		name    string
		stores  []PreferenceStore
		ambient string
		want    Theme
	}{
		{"nothing stored, no ambient", nil, "", Light},
		{"ambient used", []PreferenceStore{visitor}, "dark", Dark},
		{"invalid ambient ignored", nil, "sepia", Light},
		{"later store used", []PreferenceStore{visitor, site}, "light", Dark},
		{"errors skipped", []PreferenceStore{broken, nil}, "dark", Dark},
	}
	for _, tt := range tests {
		if got := Resolve(context.Background(), tt.stores, tt.ambient); got != tt.want {
			t.Errorf("%s: Resolve = %q, want %q", tt.name, got, tt.want)
		}
	}

	visitor.values[PreferenceKey] = "light"
	if got := Resolve(context.Background(), []PreferenceStore{visitor, site}, "dark"); got != Light {
		t.Errorf("visitor preference should win, got %q", got)
	}
}

func TestSetPreferenceInvalidatesLoader(t *testing.T) {
	l, src := newLoader(map[string]string{"template.json": baseJSON})
	l.Load(context.Background(), Light)
	before := src.calls

	store := &mapStore{}
	if err := SetPreference(context.Background(), store, l, Dark); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if store.values[PreferenceKey] != "dark" {
		t.Errorf("stored value = %q, want dark", store.values[PreferenceKey])
	}

	l.Load(context.Background(), Light)
	if src.calls == before {
		t.Error("expected reload after preference change")
	}

	if err := SetPreference(context.Background(), &mapStore{err: errors.New("read-only")}, l, Light); err == nil {
		t.Error("expected store error to be returned")
	}
}

func TestCSSVariables(t *testing.T) {
	cfg := Default()
	cfg.Theme.Colors = map[string]string{"primary": "#222", "accent": "#eee"}
	cfg.Theme.Fonts = map[string]string{"code": "Monaco"}
	cfg.Theme.Spacing = map[string]string{"postSpacing": "40px"}
	cfg.Theme.BorderRadius = "4px"
	cfg.Theme.HeaderGradient = "linear-gradient(135deg, #111 0%, #222 100%)"

	got := CSS(cfg)
	want := ":root{--color-accent:#eee;--color-primary:#222;--font-code:Monaco;" +
		"--spacing-postSpacing:40px;--border-radius:4px;" +
		"--header-gradient:linear-gradient(135deg, #111 0%, #222 100%);}"
	if got != want {
		t.Errorf("CSS =\n%s\nwant\n%s", got, want)
	}
}

func TestCSSValueCannotEscapeRule(t *testing.T) {
	cfg := Default()
	cfg.Theme.Colors = map[string]string{"primary": "red;}</style><script>"}
	got := CSS(cfg)
	if strings.Contains(got, "</style>") || strings.Contains(got, "red;}") {
		t.Errorf("CSS did not neutralise value: %s", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		format string
		want   string
	}{
		{"long", "March 5, 2024"},
		{"short", "Mar 5, 2024"},
		{"numeric", "03/05/2024"},
		{"", "03/05/2024"},
	}
	for _, tt := range tests {
		if got := FormatDate(d, tt.format); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestReplaceVars(t *testing.T) {
	got := ReplaceVars("Showing {current} of {total} posts", map[string]any{"current": 5, "total": 12})
	if got != "Showing 5 of 12 posts" {
		t.Errorf("ReplaceVars = %q", got)
	}
	if got := ReplaceVars("{unknown} stays", nil); got != "{unknown} stays" {
		t.Errorf("ReplaceVars = %q, want placeholder kept", got)
	}
}
