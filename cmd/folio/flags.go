package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/eringen/folio"
)

// siteFlags registers the flags shared by every command that opens a site.
// Defaults come from the environment.
func siteFlags(fs *pflag.FlagSet, cfg *folio.SiteConfig) {
	fs.StringVar(&cfg.AssetsDir, "assets", folio.EnvOr("FOLIO_ASSETS", "site"), "site directory holding templates/, config/ and public/")
	fs.StringVar(&cfg.ContentDir, "content", os.Getenv("FOLIO_CONTENT"), "directory holding posts/ and drafts/ (default <assets>/content)")
	fs.StringVar(&cfg.DatabasePath, "db", folio.EnvOr("FOLIO_DB", "data/folio.db"), "SQLite database path")
	fs.StringVar(&cfg.GitHubToken, "github-token", os.Getenv("GITHUB_TOKEN"), "token for the GitHub contents API")
	fs.BoolVar(&cfg.Unsafe, "unsafe", envBool("FOLIO_UNSAFE"), "allow raw HTML in posts")
	fs.BoolVar(&cfg.ShowDrafts, "drafts", envBool("FOLIO_DRAFTS"), "list drafts on the home page")
	fs.BoolP("help", "h", false, "show help")
}

// parse parses args and reports whether help was requested.
func parse(fs *pflag.FlagSet, args []string, usage string) (bool, error) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s\n\nFlags:\n%s", usage, fs.FlagUsages())
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	if help, _ := fs.GetBool("help"); help {
		fs.Usage()
		return true, nil
	}
	return false, nil
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}
