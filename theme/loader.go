package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/labstack/gommon/log"
	"github.com/tidwall/jsonc"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/folio/asset"
)

// BaseDocument is the configuration document every variant starts from.
const BaseDocument = "template.json"

// OverrideDocument names the per-theme document merged over BaseDocument.
func OverrideDocument(t Theme) string {
	return "template-" + string(t) + ".json"
}

// LoadError reports a configuration document that was missing, unreachable
// or not valid JSON.
type LoadError struct {
	Document string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Document, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader produces the effective configuration for a theme and caches it per
// theme until Invalidate.
type Loader struct {
	src    asset.Source
	logger *log.Logger

	mu    sync.Mutex
	cache map[Theme]Config
	gen   uint64
	group singleflight.Group
}

// NewLoader creates a Loader reading configuration documents from src.
func NewLoader(src asset.Source, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New("theme")
	}
	return &Loader{src: src, logger: logger, cache: make(map[Theme]Config)}
}

// Load returns the effective configuration for t. When the documents cannot
// be loaded the error is logged and Default is returned; the fallback is
// not cached so a later call retries.
func (l *Loader) Load(ctx context.Context, t Theme) Config {
	cfg, err := l.Get(ctx, t)
	if err != nil {
		l.logger.Errorf("%v; using built-in configuration", err)
		return Default()
	}
	return cfg
}

// Get is Load without the fallback.
func (l *Loader) Get(ctx context.Context, t Theme) (Config, error) {
	l.mu.Lock()
	if cfg, ok := l.cache[t]; ok {
		l.mu.Unlock()
		return cfg.Clone(), nil
	}
	gen := l.gen
	l.mu.Unlock()

	v, err, _ := l.group.Do(fmt.Sprintf("%s@%d", t, gen), func() (interface{}, error) {
		return l.fetch(ctx, t)
	})
	if err != nil {
		return Config{}, err
	}
	cfg := v.(Config)

	l.mu.Lock()
	// a load that raced with Invalidate is handed back but not cached
	if l.gen == gen {
		l.cache[t] = cfg
	}
	l.mu.Unlock()
	return cfg.Clone(), nil
}

// Invalidate drops every cached configuration.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.gen++
	l.cache = make(map[Theme]Config)
	l.mu.Unlock()
}

func (l *Loader) fetch(ctx context.Context, t Theme) (Config, error) {
	base, err := l.document(ctx, BaseDocument)
	if err != nil {
		return Config{}, err
	}

	merged := base
	override, err := l.document(ctx, OverrideDocument(t))
	switch {
	case err == nil:
		merged = Merge(base, override)
	case errors.Is(err, asset.ErrNotFound):
		l.logger.Infof("no %s, using %s alone", OverrideDocument(t), BaseDocument)
	default:
		return Config{}, err
	}

	cfg, err := Decode(merged)
	if err != nil {
		return Config{}, &LoadError{Document: OverrideDocument(t), Err: err}
	}
	return cfg, nil
}

func (l *Loader) document(ctx context.Context, name string) (Tree, error) {
	raw, err := l.src.Fetch(ctx, name)
	if err != nil {
		return nil, &LoadError{Document: name, Err: err}
	}
	return ParseDocument(name, raw)
}

// ParseDocument decodes a JSON configuration document. Comments and
// trailing commas are accepted.
func ParseDocument(name string, raw []byte) (Tree, error) {
	var t Tree
	if err := json.Unmarshal(jsonc.ToJSON(raw), &t); err != nil {
		return nil, &LoadError{Document: name, Err: err}
	}
	if t == nil {
		t = Tree{}
	}
	return t, nil
}
