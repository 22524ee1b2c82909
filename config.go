package folio

import (
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/content"
)

// SiteConfig holds all process-level configuration for a folio viewer.
// Everything the reader sees is driven by the configuration documents in
// AssetsDir instead.
type SiteConfig struct {
	URL  string // Canonical URL (default "http://localhost:3000")
	Addr string // Listen address (default ":3000")

	AssetsDir    string // Directory holding templates/ and config/ (default "site")
	ContentDir   string // Directory holding posts/ and drafts/ (default AssetsDir/content)
	DatabasePath string // SQLite path (default "data/folio.db")
	AssetsURL    string // Optional remote prefix for templates/ and config/, read instead of AssetsDir

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	PostCacheTTL time.Duration // Post cache TTL (default 5min)

	Dev        bool // Watch assets, push reloads, disable HTTP caching
	Unsafe     bool // Allow raw HTML in posts
	ShowDrafts bool // List drafts on the home page

	GitHubToken string // Optional token for the GitHub contents API
	GitHubAPI   string // GitHub API base (default https://api.github.com)
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.AssetsDir == "" {
		c.AssetsDir = "site"
	}
	if c.ContentDir == "" {
		c.ContentDir = filepath.Join(c.AssetsDir, "content")
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.GitHubAPI == "" {
		c.GitHubAPI = content.DefaultAPIBase
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the application logger.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithContentProvider bypasses provider selection from the configuration
// document.
func WithContentProvider(p content.Provider) Option {
	return func(a *App) {
		a.provider = p
	}
}

// WithEcho supplies a preconfigured Echo instance.
func WithEcho(e *echo.Echo) Option {
	return func(a *App) {
		a.Echo = e
	}
}
