package folio

import (
	"io/fs"
	"os"

	"github.com/eringen/folio/asset"
	"github.com/eringen/folio/scaffold"
)

// DefaultAssets is the starter site shipped with folio. Files missing from
// the site directory are served from here.
var DefaultAssets fs.FS = scaffold.Site

// siteSource reads from the remote prefix when one is configured, otherwise
// from dir, and falls back to the embedded starter.
func siteSource(cfg SiteConfig) asset.Source {
	primary := asset.Source(asset.NewFS(os.DirFS(cfg.AssetsDir)))
	if cfg.AssetsURL != "" {
		primary = asset.NewHTTP(cfg.AssetsURL)
	}
	return asset.Chain{primary, asset.NewFS(DefaultAssets)}
}
