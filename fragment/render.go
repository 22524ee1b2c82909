package fragment

import (
	"context"
	"regexp"
	"strings"

	"github.com/labstack/gommon/log"
)

// MaxPartialDepth bounds nested {{>partial}} expansion so a fragment that
// includes itself cannot recurse forever.
const MaxPartialDepth = 16

var (
	rePartial  = regexp.MustCompile(`\{\{>(\w+)\}\}`)
	reVariable = regexp.MustCompile(`\{\{(\w+)\}\}`)
)

// Data is the flat mapping a fragment is rendered against.
type Data map[string]any

// Renderer expands fragments. It is safe for concurrent use.
type Renderer struct {
	store  *Store
	logger *log.Logger
}

// NewRenderer creates a Renderer resolving partials through store.
func NewRenderer(store *Store, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = store.logger
	}
	return &Renderer{store: store, logger: logger}
}

// Store returns the fragment store backing r.
func (r *Renderer) Store() *Store {
	return r.store
}

// RenderNamed loads the fragment called name and renders it. Only the
// top-level load can fail; missing partials render as empty strings.
func (r *Renderer) RenderNamed(ctx context.Context, name string, data Data) (string, error) {
	text, err := r.store.Load(ctx, name)
	if err != nil {
		return "", err
	}
	return r.render(ctx, text, data, 0), nil
}

// Render expands partials, then conditionals, then variables in text.
func (r *Renderer) Render(ctx context.Context, text string, data Data) string {
	return r.render(ctx, text, data, 0)
}

func (r *Renderer) render(ctx context.Context, text string, data Data, depth int) string {
	out := r.includePartials(ctx, text, data, depth)
	out = r.evalConditionals(out, data)
	return substituteVariables(out, data)
}

func (r *Renderer) includePartials(ctx context.Context, text string, data Data, depth int) string {
	matches := rePartial.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]
		name := text[m[2]:m[3]]
		if depth >= MaxPartialDepth {
			r.logger.Warnf("partial %q skipped: nesting deeper than %d", name, MaxPartialDepth)
			continue
		}
		partial, err := r.store.Load(ctx, name)
		if err != nil {
			r.logger.Warnf("partial %q skipped: %v", name, err)
			continue
		}
		b.WriteString(r.render(ctx, partial, data, depth+1))
	}
	b.WriteString(text[last:])
	return b.String()
}

func (r *Renderer) evalConditionals(text string, data Data) string {
	tree, unclosed := parseConditionals(text)
	var b strings.Builder
	tree.write(&b, data)
	if unclosed >= 0 {
		r.logger.Warnf("malformed fragment: {{#if}} at offset %d has no matching {{/if}}", unclosed)
		b.WriteString(text[unclosed:])
	}
	return b.String()
}

func substituteVariables(text string, data Data) string {
	return reVariable.ReplaceAllStringFunc(text, func(m string) string {
		name := m[2 : len(m)-2]
		v, ok := data[name]
		if !ok {
			return ""
		}
		return toText(v)
	})
}
