package folio

import (
	"context"
	"html"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/livereload"
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/theme"
)

// CodeStyles maps each theme to the chroma style used for code blocks.
var CodeStyles = map[theme.Theme]string{
	theme.Light: "github",
	theme.Dark:  "monokai",
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// Document returns the full HTML document for p: head with the theme's CSS
// variables and code style, the theme switcher and the rendered body.
func Document(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		favicon := p.Config.Site.Favicon
		if favicon == "" {
			favicon = "/favicon.svg"
		}
		title := p.Title
		if title == "" {
			title = p.Config.Site.Title
		}
		codeCSS, err := markdown.StyleCSS(CodeStyles[p.Theme])
		if err != nil {
			return err
		}
		next := p.Theme.Toggle()

		b.WriteString("<!DOCTYPE html>\n")
		b.WriteString(`<html lang="en" data-theme="` + html.EscapeString(p.Theme.String()) + `">` + "\n<head>\n")
		b.WriteString(`<meta charset="utf-8">` + "\n")
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
		b.WriteString(`<meta name="color-scheme" content="` + html.EscapeString(p.Theme.String()) + `">` + "\n")
		b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
		if p.Config.Site.Description != "" {
			b.WriteString(`<meta name="description" content="` + html.EscapeString(p.Config.Site.Description) + `">` + "\n")
		}
		b.WriteString(`<link rel="icon" href="` + html.EscapeString(favicon) + `">` + "\n")
		b.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + html.EscapeString(p.Config.Site.Title) + `" href="/feed.xml">` + "\n")
		b.WriteString(`<link rel="stylesheet" href="/public/folio.css">` + "\n")
		b.WriteString(`<style id="theme-vars">` + theme.CSS(p.Config) + "</style>\n")
		b.WriteString(`<style id="code-style">` + codeCSS + "</style>\n")
		b.WriteString("</head>\n<body>\n")

		b.WriteString(`<form class="theme-switcher" method="post" action="/theme">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + html.EscapeString(p.CSRFToken) + `">`)
		b.WriteString(`<input type="hidden" name="redirect" value="` + html.EscapeString(p.Path) + `">`)
		b.WriteString(`<button type="submit" name="theme" value="` + next.String() + `" aria-label="Switch to ` + next.String() + ` theme" data-action="toggle-theme">`)
		if p.Theme == theme.Dark {
			b.WriteString("☀️")
		} else {
			b.WriteString("🌙")
		}
		b.WriteString("</button></form>\n")

		b.WriteString(`<main id="app">` + "\n")
		b.WriteString(string(p.Body))
		b.WriteString("\n</main>\n")
		if p.Reload {
			b.WriteString(livereload.Script + "\n")
		}
		b.WriteString("</body>\n</html>\n")

		_, err = io.WriteString(w, b.String())
		return err
	})
}

// renderPage wraps body in the document shell for the request.
func (a *App) renderPage(c echo.Context, code int, t theme.Theme, cfg theme.Config, title string, body template.HTML) error {
	return RenderStatus(c, code, Document(Page{
		Title:     title,
		Theme:     t,
		Config:    cfg,
		Body:      body,
		CSRFToken: CsrfToken(c),
		Path:      c.Request().URL.RequestURI(),
		Reload:    a.hub != nil,
	}))
}
