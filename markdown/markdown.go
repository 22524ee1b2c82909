// Package markdown renders post bodies to HTML with GitHub-flavoured
// markdown, syntax-highlighted code blocks and a sanitising policy.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Renderer converts markdown to HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

type options struct {
	unsafe bool
}

// Option configures a Renderer.
type Option func(*options)

// WithUnsafe passes raw HTML in posts through and skips sanitising.
func WithUnsafe() Option {
	return func(o *options) { o.unsafe = true }
}

// New builds a Renderer.
func New(opts ...Option) *Renderer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rendererOpts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{}, 100)),
	}
	if o.unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(
					util.Prioritized(inlineCodeTransformer{}, 100),
				),
			),
			goldmark.WithRendererOptions(rendererOpts...),
		),
	}
	if !o.unsafe {
		r.policy = bluemonday.UGCPolicy()
		r.policy.AllowAttrs("class").Globally()
	}
	return r
}

// Render writes the HTML for source to w.
func (r *Renderer) Render(w io.Writer, source string) error {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	out := buf.Bytes()
	if r.policy != nil {
		out = r.policy.SanitizeBytes(out)
	}
	_, err := w.Write(out)
	return err
}

// HTML returns the rendered HTML for source.
func (r *Renderer) HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, source); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Component returns a templ.Component that renders source.
func (r *Renderer) Component(source string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return r.Render(w, source)
	})
}

var defaultRenderer = New()

// Markdown returns a templ.Component that renders content with the default
// sanitising renderer.
func Markdown(content string) templ.Component {
	return defaultRenderer.Component(content)
}

var (
	cssMu    sync.Mutex
	cssCache = map[string]string{}
)

// StyleCSS returns the stylesheet for the chroma style name. Unknown names
// get chroma's fallback style.
func StyleCSS(name string) (string, error) {
	cssMu.Lock()
	defer cssMu.Unlock()
	if css, ok := cssCache[name]; ok {
		return css, nil
	}
	var buf bytes.Buffer
	f := chromahtml.New(chromahtml.WithClasses(true), chromahtml.WithLineNumbers(true))
	if err := f.WriteCSS(&buf, styles.Get(name)); err != nil {
		return "", err
	}
	cssCache[name] = buf.String()
	return cssCache[name], nil
}
