// Package fragment loads named HTML template fragments and renders them
// against a flat data mapping. Fragments understand three directives:
//
//	{{>name}}            include another fragment, rendered with the same data
//	{{#if name}}…{{/if}} keep the block when data[name] is truthy (may nest)
//	{{name}}             substitute data[name] as text, unescaped
package fragment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/folio/asset"
)

// Ext is appended to fragment names to form the asset name.
const Ext = ".html"

// LoadError reports a fragment that could not be fetched from its source.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("fragment %q: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a LoadError caused by a missing fragment.
func IsNotFound(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && errors.Is(le.Err, asset.ErrNotFound)
}

// Store caches fragment text by name. Entries never change after load and
// live until ClearCache.
type Store struct {
	src    asset.Source
	logger *log.Logger

	mu    sync.RWMutex
	cache map[string]string
	group singleflight.Group
}

// NewStore creates a Store reading fragments from src.
func NewStore(src asset.Source, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New("fragment")
	}
	return &Store{
		src:    src,
		logger: logger,
		cache:  make(map[string]string),
	}
}

func (s *Store) cached(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.cache[name]
	return text, ok
}

// Load returns the fragment named name, fetching it on first use.
// Concurrent misses for the same name share a single fetch.
func (s *Store) Load(ctx context.Context, name string) (string, error) {
	if text, ok := s.cached(name); ok {
		return text, nil
	}
	v, err, _ := s.group.Do(name, func() (interface{}, error) {
		if text, ok := s.cached(name); ok {
			return text, nil
		}
		b, err := s.src.Fetch(ctx, name+Ext)
		if err != nil {
			return "", &LoadError{Name: name, Err: err}
		}
		text := string(b)
		s.mu.Lock()
		s.cache[name] = text
		s.mu.Unlock()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ClearCache drops every cached fragment so the next Load refetches.
func (s *Store) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
	s.logger.Debugf("fragment cache cleared")
}

// Len returns the number of cached fragments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Preload loads every name concurrently. A failing name does not stop the
// others; all failures are joined into the returned error.
func (s *Store) Preload(ctx context.Context, names []string) error {
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(8)
	for _, name := range names {
		g.Go(func() error {
			if _, err := s.Load(ctx, name); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs...)
}
