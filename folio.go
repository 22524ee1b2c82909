// Package folio is a markdown blog viewer built with Go, Echo, and templ.
// Pages are assembled from user-editable HTML fragments and themed by
// layered JSON configuration documents, with posts read from a local
// directory or a GitHub repository.
package folio

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/asset"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fragment"
	"github.com/eringen/folio/livereload"
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/theme"
)

// App is the central folio application. It wires together the stores,
// caches, handlers and middleware.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Logger    *log.Logger
	Store     *Store
	Cache     *PostCache
	Themes    *theme.Loader
	Fragments *fragment.Store
	Renderer  *fragment.Renderer
	Markdown  *markdown.Renderer

	provider         content.Provider
	providerInjected bool
	refreshLimiter   *RateLimiter
	hub              *livereload.Hub
	watcher          *livereload.Watcher
	customRoutes     []func(*App)
	staticDir        string
}

// New creates a new folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		staticDir: filepath.Join(cfg.AssetsDir, "public"),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.Echo == nil {
		a.Echo = echo.New()
		a.Echo.HideBanner = true
	}
	if a.Logger == nil {
		a.Logger = log.New("folio")
	}
	a.Echo.Logger = a.Logger
	a.providerInjected = a.provider != nil
	return a
}

// Init opens the store, builds the asset loaders and registers middleware
// and routes. Start calls it; tests and the CLI use it directly.
func (a *App) Init() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}

	if err := a.Open(); err != nil {
		return err
	}

	a.refreshLimiter = NewRateLimiter(5, time.Minute)

	if a.Config.Dev {
		if err := a.startLiveReload(); err != nil {
			return fmt.Errorf("folio: live reload: %w", err)
		}
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Open opens the store and builds the loaders without registering any
// routes. Init calls it; offline commands use it on its own.
func (a *App) Open() error {
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	return a.initAssets()
}

// initAssets builds the template store, the configuration loader, the
// markdown renderer and the post cache. It needs a.Store for the site
// default theme and GitHub snapshots.
func (a *App) initAssets() error {
	src := siteSource(a.Config)
	a.Themes = theme.NewLoader(asset.Prefix(src, "config"), a.Logger)
	a.Fragments = fragment.NewStore(asset.Prefix(src, "templates"), a.Logger)
	a.Renderer = fragment.NewRenderer(a.Fragments, a.Logger)

	ctx := context.Background()
	if err := a.Fragments.Preload(ctx, Fragments); err != nil {
		a.Logger.Warnf("preloading templates: %v", err)
	}

	var mdOpts []markdown.Option
	if a.Config.Unsafe {
		mdOpts = append(mdOpts, markdown.WithUnsafe())
	}
	a.Markdown = markdown.New(mdOpts...)

	if !a.providerInjected {
		p, err := a.selectProvider(ctx)
		if err != nil {
			return fmt.Errorf("folio: content: %w", err)
		}
		a.provider = p
	}
	a.Cache = NewPostCache(a.provider, a.Config.PostCacheTTL)
	a.Cache.Logger = a.Logger
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Infof("serving %s on %s", a.Config.AssetsDir, a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/folio.css", a.handlePublic("folio.css"))
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handlePublic("favicon.svg"))

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/post/:slug", a.handlePost)
	e.POST("/theme", a.handleTheme)
	e.POST("/api/refresh", a.handleRefresh)

	if a.hub != nil {
		e.GET("/ws", echo.WrapHandler(a.hub))
	}
}

// siteTheme is the site-wide default theme, used where no visitor is
// involved (feeds, the CLI).
func (a *App) siteTheme(ctx context.Context) theme.Theme {
	var stores []theme.PreferenceStore
	if a.Store != nil {
		stores = append(stores, a.Store)
	}
	return theme.Resolve(ctx, stores, "")
}

// selectProvider picks the post source named by the site default
// configuration. A missing local content directory falls back to the
// bundled sample posts.
func (a *App) selectProvider(ctx context.Context) (content.Provider, error) {
	cfg := a.Themes.Load(ctx, a.siteTheme(ctx))
	if cfg.Content.Source == "github" {
		gh := cfg.Content.GitHub
		if gh.Owner == "" || gh.Repo == "" {
			return nil, fmt.Errorf("github source needs owner and repo")
		}
		a.Logger.Infof("reading posts from github.com/%s/%s", gh.Owner, gh.Repo)
		return &content.GitHub{
			Owner:      gh.Owner,
			Repo:       gh.Repo,
			PostsPath:  gh.PostsPath,
			DraftsPath: gh.DraftsPath,
			Token:      a.Config.GitHubToken,
			APIBase:    a.Config.GitHubAPI,
			Snapshots:  a.Store,
			Logger:     a.Logger,
		}, nil
	}

	if info, err := os.Stat(a.Config.ContentDir); err == nil && info.IsDir() {
		return content.NewLocal(os.DirFS(a.Config.ContentDir), a.Logger), nil
	}
	a.Logger.Warnf("content directory %s not found; serving sample posts", a.Config.ContentDir)
	sample, err := fs.Sub(DefaultAssets, "content")
	if err != nil {
		return nil, err
	}
	return content.NewLocal(sample, a.Logger), nil
}

// Refresh drops every cached template, configuration and post listing.
// The content source is selected again unless one was injected.
func (a *App) Refresh() {
	a.Fragments.ClearCache()
	a.Themes.Invalidate()
	if a.providerInjected {
		a.Cache.Invalidate()
		return
	}
	p, err := a.selectProvider(context.Background())
	if err != nil {
		a.Logger.Errorf("refresh: %v; keeping current content source", err)
		a.Cache.Invalidate()
		return
	}
	a.Cache.SetProvider(p)
}

func (a *App) startLiveReload() error {
	a.hub = livereload.NewHub(a.Logger)
	roots := []string{
		filepath.Join(a.Config.AssetsDir, "templates"),
		filepath.Join(a.Config.AssetsDir, "config"),
		a.Config.ContentDir,
	}
	w, err := livereload.Watch(roots, livereload.DefaultDebounce, func(paths []string) {
		a.Logger.Infof("%d file(s) changed, reloading", len(paths))
		a.Refresh()
		a.hub.Reload()
	}, a.Logger)
	if err != nil {
		return err
	}
	a.watcher = w
	return nil
}

// RenderPost renders the post page body for slug using theme t, without
// the document shell.
func (a *App) RenderPost(ctx context.Context, slug string, t theme.Theme) (string, error) {
	_, page, err := a.postPage(ctx, slug, t)
	return string(page), err
}

func (a *App) postPage(ctx context.Context, slug string, t theme.Theme) (content.Post, template.HTML, error) {
	if !content.ValidSlug(slug) {
		return content.Post{}, "", &content.NotFoundError{Slug: slug}
	}
	post, err := a.Cache.GetPost(ctx, slug)
	if err != nil {
		return content.Post{}, "", err
	}
	body, err := a.Markdown.HTML(post.Content)
	if err != nil {
		return content.Post{}, "", fmt.Errorf("rendering %s: %w", slug, err)
	}
	cfg := a.Themes.Load(ctx, t)
	page := a.renderFragment(ctx, fragmentPost, postData(cfg, t, post, body), func() string {
		return fallbackMarkup(postTitle(post), "", body)
	})
	return post, page, nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.refreshLimiter != nil {
		a.refreshLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("folio: required environment variable %s is not set", key)
	}
	return v
}
