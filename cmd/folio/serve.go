package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/theme"
)

func runServe(args []string) error {
	var cfg folio.SiteConfig
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	siteFlags(fs, &cfg)
	fs.StringVar(&cfg.Addr, "addr", folio.EnvOr("FOLIO_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.URL, "url", folio.EnvOr("FOLIO_URL", ""), "canonical site URL used in feeds (default http://localhost<addr>)")
	fs.StringVar(&cfg.AssetsURL, "assets-url", os.Getenv("FOLIO_ASSETS_URL"), "read templates/ and config/ from this URL prefix instead of --assets")
	fs.StringVar(&cfg.SessionSecret, "session-secret", os.Getenv("FOLIO_SESSION_SECRET"), "session encryption secret")
	fs.BoolVar(&cfg.CookieSecure, "secure-cookies", envBool("FOLIO_SECURE_COOKIES"), "mark cookies Secure (HTTPS)")
	fs.BoolVar(&cfg.Dev, "dev", envBool("FOLIO_DEV"), "watch the site and reload browsers on change")
	fs.DurationVar(&cfg.PostCacheTTL, "cache-ttl", envDuration("FOLIO_CACHE_TTL", 5*time.Minute), "how long post listings are cached")
	if help, err := parse(fs, args, "folio serve [flags]"); help || err != nil {
		return err
	}

	if cfg.URL == "" {
		cfg.URL = "http://localhost" + cfg.Addr
	}
	if cfg.SessionSecret == "" {
		if !cfg.Dev {
			return errors.New("--session-secret or FOLIO_SESSION_SECRET is required")
		}
		cfg.SessionSecret = "folio-dev-secret"
	}

	app := folio.New(cfg)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runTheme(args []string) error {
	var dbPath string
	fs := pflag.NewFlagSet("theme", pflag.ContinueOnError)
	fs.StringVar(&dbPath, "db", folio.EnvOr("FOLIO_DB", "data/folio.db"), "SQLite database path")
	fs.BoolP("help", "h", false, "show help")
	if help, err := parse(fs, args, "folio theme [light|dark]"); help || err != nil {
		return err
	}

	store, err := folio.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()

	if fs.NArg() == 0 {
		fmt.Println(theme.Resolve(ctx, []theme.PreferenceStore{store}, ""))
		return nil
	}
	t, ok := theme.Parse(fs.Arg(0))
	if !ok {
		return fmt.Errorf("unknown theme %q (want light or dark)", fs.Arg(0))
	}
	if err := theme.SetPreference(ctx, store, nil, t); err != nil {
		return err
	}
	fmt.Printf("site default theme set to %s\n", t)
	return nil
}

func runRender(args []string) error {
	var (
		cfg       folio.SiteConfig
		themeName string
	)
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	siteFlags(fs, &cfg)
	fs.StringVar(&themeName, "theme", "", "theme to render with (default: the site default)")
	if help, err := parse(fs, args, "folio render [flags] <slug>"); help || err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("render takes exactly one slug")
	}

	app := folio.New(cfg)
	if err := app.Open(); err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	t, ok := theme.Parse(themeName)
	if !ok {
		t = theme.Resolve(ctx, []theme.PreferenceStore{app.Store}, "")
	}
	out, err := app.RenderPost(ctx, fs.Arg(0), t)
	if content.IsNotFound(err) {
		return fmt.Errorf("no post named %q", fs.Arg(0))
	}
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
