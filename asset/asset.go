// Package asset fetches named text assets (template fragments, configuration
// documents) from a directory, an embedded filesystem or an HTTP prefix.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// ErrNotFound is returned when a source has no asset with the requested name.
var ErrNotFound = errors.New("asset not found")

// Source fetches the raw bytes of a named asset. Names are slash-separated
// paths relative to the source root, e.g. "templates/home.html".
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FS serves assets from an fs.FS such as os.DirFS or an embed.FS.
type FS struct {
	FS fs.FS
}

// NewFS returns a Source reading from fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{FS: fsys}
}

func (s *FS) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	b, err := fs.ReadFile(s.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

// HTTP serves assets from a URL prefix, e.g. "https://example.com/assets/".
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTP returns a Source fetching below baseURL with http.DefaultClient.
func NewHTTP(baseURL string) *HTTP {
	return &HTTP{BaseURL: baseURL, Client: http.DefaultClient}
}

func (s *HTTP) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Path = path.Join(u.Path, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: unexpected status %s", name, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Chain tries each source in order and returns the first hit. A source that
// reports ErrNotFound falls through to the next one; any other error stops
// the search.
type Chain []Source

func (c Chain) Fetch(ctx context.Context, name string) ([]byte, error) {
	for _, s := range c {
		b, err := s.Fetch(ctx, name)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Prefix scopes a source to a sub-directory.
func Prefix(s Source, dir string) Source {
	return prefixed{src: s, dir: dir}
}

type prefixed struct {
	src Source
	dir string
}

func (p prefixed) Fetch(ctx context.Context, name string) ([]byte, error) {
	return p.src.Fetch(ctx, path.Join(p.dir, name))
}
