package folio

import (
	"context"
	"html"
	"html/template"
	"strings"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/fragment"
	"github.com/eringen/folio/theme"
)

// Fragment names rendered by the viewer.
const (
	fragmentHome     = "home"
	fragmentPost     = "post"
	fragmentListItem = "post-list-item"
	fragmentNotFound = "not-found"
)

// Fragments lists every fragment the viewer renders, including partials
// referenced by the starter templates.
var Fragments = []string{fragmentHome, fragmentPost, fragmentListItem, "header", "footer", fragmentNotFound}

// Template variables are substituted verbatim, so every text value taken
// from configuration or front matter is escaped here.
func esc(s string) string {
	return html.EscapeString(s)
}

// siteData holds the values shared by every page, used by the header and
// footer partials.
func siteData(cfg theme.Config, t theme.Theme) fragment.Data {
	return fragment.Data{
		"siteTitle":       esc(cfg.Site.Title),
		"siteDescription": esc(cfg.Site.Description),
		"tagline":         esc(cfg.Site.Tagline),
		"footerText":      esc(cfg.Site.Footer),
		"theme":           t.String(),
		"isDark":          t == theme.Dark,
	}
}

// postDate formats the front-matter date, keeping the raw value when it does
// not parse.
func postDate(p content.Post, format string) string {
	t := p.PublishedAt()
	if t.IsZero() {
		return p.Date
	}
	return theme.FormatDate(t, format)
}

func postTitle(p content.Post) string {
	if strings.TrimSpace(p.Title) == "" {
		return p.Slug
	}
	return p.Title
}

func listItemData(cfg theme.Config, p content.Post) fragment.Data {
	l := cfg.Layout.PostList
	return fragment.Data{
		"title":              esc(postTitle(p)),
		"slug":               esc(p.Slug),
		"url":                esc(PostPath(p.Slug)),
		"author":             esc(p.Author),
		"date":               esc(postDate(p, cfg.Layout.Home.DateFormat)),
		"excerpt":            esc(p.Excerpt),
		"draft":              p.Draft,
		"showExcerpt":        l.ShowExcerpt,
		"showAuthor":         l.ShowAuthor,
		"showDraftIndicator": l.ShowDraftIndicator,
		"draftIndicatorText": esc(l.DraftIndicatorText),
		"readMoreText":       esc(l.ReadMoreText),
	}
}

// homeView is everything the home page shows besides configuration.
type homeView struct {
	Posts        []content.Post
	Pagination   Pagination
	DefaultLimit int
	ErrorText    string
}

func (a *App) homeData(ctx context.Context, cfg theme.Config, t theme.Theme, v homeView) fragment.Data {
	pg := v.Pagination
	total := len(v.Posts)
	visible := v.Posts[pg.Start:pg.End]

	var items strings.Builder
	for _, p := range visible {
		item, err := a.Renderer.RenderNamed(ctx, fragmentListItem, listItemData(cfg, p))
		if err != nil {
			a.Logger.Warnf("rendering list item %s: %v", p.Slug, err)
			continue
		}
		items.WriteString(item)
	}

	// Links keep the chosen list size unless it is the configured default.
	limitParam := pg.Limit
	if limitParam == v.DefaultLimit {
		limitParam = 0
	}

	text := cfg.Text
	data := siteData(cfg, t)
	data["posts"] = template.HTML(items.String())
	data["hasPosts"] = len(visible) > 0
	data["noPosts"] = len(visible) == 0 && v.ErrorText == ""
	data["noPostsFound"] = esc(text.NoPostsFound)
	data["errorText"] = esc(v.ErrorText)
	data["total"] = total
	data["limit"] = pg.Limit
	data["page"] = pg.Page
	data["pages"] = pg.Pages
	data["showPostCount"] = cfg.Layout.Home.ShowPostCount && total > 0
	data["postCountText"] = esc(theme.ReplaceVars(text.ShowingPosts, map[string]any{
		"current": len(visible),
		"total":   total,
	}))
	data["showControls"] = cfg.Layout.Home.ShowControls
	data["canShowMore"] = !pg.All && total > pg.Limit
	data["showAll"] = pg.All
	data["showAllURL"] = esc(homeURL(1, 0, true))
	data["showLessURL"] = esc(homeURL(1, limitParam, false))
	data["postsToShowLabel"] = esc(text.PostsToShowLabel)
	data["showAllButton"] = esc(text.ShowAllButton)
	data["showLessButton"] = esc(text.ShowLessButton)
	data["paginate"] = pg.Pages > 1
	data["hasNewer"] = pg.HasNewer
	data["hasOlder"] = pg.HasOlder
	data["newerURL"] = esc(homeURL(pg.Page-1, limitParam, false))
	data["olderURL"] = esc(homeURL(pg.Page+1, limitParam, false))
	data["newerPostsButton"] = esc(text.NewerPostsButton)
	data["olderPostsButton"] = esc(text.OlderPostsButton)
	return data
}

func postData(cfg theme.Config, t theme.Theme, p content.Post, body string) fragment.Data {
	l := cfg.Layout.Post
	data := siteData(cfg, t)
	data["title"] = esc(postTitle(p))
	data["slug"] = esc(p.Slug)
	data["author"] = esc(p.Author)
	data["date"] = esc(postDate(p, l.DateFormat))
	data["content"] = template.HTML(body)
	data["draft"] = p.Draft
	data["draftIndicatorText"] = esc(cfg.Layout.PostList.DraftIndicatorText)
	data["showBackButton"] = l.ShowBackButton
	data["showDate"] = l.ShowDate
	data["showAuthor"] = l.ShowAuthor
	data["backButtonText"] = esc(l.BackButtonText)
	return data
}

func notFoundData(cfg theme.Config, t theme.Theme) fragment.Data {
	data := siteData(cfg, t)
	data["message"] = esc(cfg.Text.PostNotFound)
	data["backButtonText"] = esc(cfg.Layout.Post.BackButtonText)
	return data
}

// renderFragment renders a top-level fragment. When the fragment itself
// cannot be loaded the page falls back to plain markup built from fallback.
func (a *App) renderFragment(ctx context.Context, name string, data fragment.Data, fallback func() string) template.HTML {
	out, err := a.Renderer.RenderNamed(ctx, name, data)
	if err != nil {
		a.Logger.Errorf("rendering %s: %v", name, err)
		return template.HTML(fallback())
	}
	return template.HTML(out)
}

func fallbackMarkup(heading, message, body string) string {
	var b strings.Builder
	b.WriteString(`<div class="template-fallback">`)
	if heading != "" {
		b.WriteString("<h1>" + esc(heading) + "</h1>")
	}
	if message != "" {
		b.WriteString(`<p class="error-loading">` + esc(message) + "</p>")
	}
	b.WriteString(body)
	b.WriteString("</div>")
	return b.String()
}
