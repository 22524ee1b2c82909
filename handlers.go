package folio

import (
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/theme"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	t := a.themeFor(c)
	cfg := a.Themes.Load(ctx, t)

	v := homeView{DefaultLimit: cfg.Layout.Home.DefaultPostsToShow}
	if v.DefaultLimit < 1 {
		v.DefaultLimit = theme.Default().Layout.Home.DefaultPostsToShow
	}
	posts, err := a.Cache.ListPosts(ctx, a.Config.ShowDrafts)
	if err != nil {
		c.Logger().Errorf("listing posts: %v", err)
		v.ErrorText = cfg.Text.ErrorLoading
	}
	v.Posts = posts

	all := c.QueryParam("all")
	v.Pagination = Paginate(len(posts),
		queryInt(c.QueryParam("page"), 1),
		queryInt(c.QueryParam("limit"), v.DefaultLimit),
		all == "1" || all == "true")

	body := a.renderFragment(ctx, fragmentHome, a.homeData(ctx, cfg, t, v), func() string {
		return fallbackMarkup(cfg.Site.Title, cfg.Text.ErrorLoading, "")
	})
	return a.renderPage(c, http.StatusOK, t, cfg, "", body)
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	t := a.themeFor(c)
	post, page, err := a.postPage(ctx, c.Param("slug"), t)
	if content.IsNotFound(err) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	cfg := a.Themes.Load(ctx, t)
	return a.renderPage(c, http.StatusOK, t, cfg, postTitle(post)+" | "+cfg.Site.Title, page)
}

func (a *App) renderNotFound(c echo.Context) error {
	ctx := c.Request().Context()
	t := a.themeFor(c)
	cfg := a.Themes.Load(ctx, t)
	body := a.renderFragment(ctx, fragmentNotFound, notFoundData(cfg, t), func() string {
		return fallbackMarkup(cfg.Text.PostNotFound, "", `<a href="/">`+esc(cfg.Layout.Post.BackButtonText)+"</a>")
	})
	return a.renderPage(c, http.StatusNotFound, t, cfg, cfg.Text.PostNotFound+" | "+cfg.Site.Title, body)
}

func (a *App) renderServerError(c echo.Context, code int) error {
	ctx := c.Request().Context()
	t := a.themeFor(c)
	cfg := a.Themes.Load(ctx, t)
	body := fallbackMarkup(cfg.Site.Title, cfg.Text.ErrorLoading, `<a href="/">`+esc(cfg.Layout.Post.BackButtonText)+"</a>")
	return a.renderPage(c, code, t, cfg, cfg.Site.Title, template.HTML(body))
}

func (a *App) handleTheme(c echo.Context) error {
	t, ok := theme.Parse(c.FormValue("theme"))
	if !ok {
		t = a.themeFor(c).Toggle()
	}
	if err := theme.SetPreference(c.Request().Context(), sessionPreferences{c: c}, a.Themes, t); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, localRedirect(c.FormValue("redirect")))
}

// localRedirect keeps redirects on this site.
func localRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, `/\`) {
		return "/"
	}
	return target
}

func (a *App) handleRefresh(c echo.Context) error {
	if !a.refreshLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many refreshes, try again later"})
	}
	a.Refresh()
	return c.JSON(http.StatusOK, map[string]string{"status": "refreshed"})
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.ListPosts(ctx, false)
	if err != nil {
		return err
	}
	cfg := a.Themes.Load(ctx, a.siteTheme(ctx))
	return a.renderRSS(c, cfg, posts)
}

// handlePublic serves name from the static directory, falling back to the
// embedded starter site.
func (a *App) handlePublic(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		local := filepath.Join(a.staticDir, name)
		if _, err := os.Stat(local); err == nil {
			return c.File(local)
		}
		data, err := fs.ReadFile(DefaultAssets, "public/"+name)
		if errors.Is(err, fs.ErrNotExist) {
			return echo.ErrNotFound
		}
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, contentType(name), data)
	}
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	default:
		return echo.MIMEOctetStream
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = a.renderServerError(c, code)
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
