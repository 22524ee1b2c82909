package markdown

import (
	"bytes"
	"html"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// InlineCodeClass is set on every inline code span.
const InlineCodeClass = "inline-code"

type inlineCodeTransformer struct{}

func (inlineCodeTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindCodeSpan {
			n.SetAttributeString("class", []byte(InlineCodeClass))
		}
		return ast.WalkContinue, nil
	})
}

// codeBlockRenderer highlights fenced code blocks. The info string may carry
// line ranges to emphasise, as in "go{1,3-5}".
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	lang, ranges := ParseInfo(info)

	var code bytes.Buffer
	for i := 0; i < n.Lines().Len(); i++ {
		line := n.Lines().At(i)
		code.Write(line.Value(source))
	}

	_, _ = w.WriteString(`<div class="code-block-wrapper">`)
	if lang != "" {
		_, _ = w.WriteString(`<div class="code-lang">` + html.EscapeString(lang) + `</div>`)
	}
	if err := highlight(w, lang, ranges, code.String()); err != nil {
		_, _ = w.WriteString(`<pre class="chroma"><code>` + html.EscapeString(code.String()) + `</code></pre>`)
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

func highlight(w util.BufWriter, lang string, ranges [][2]int, code string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return err
	}
	f := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(true),
		chromahtml.HighlightLines(ranges),
	)
	return f.Format(w, styles.Fallback, it)
}

// ParseInfo splits a fence info string into its language and highlighted
// line ranges. Malformed ranges are skipped.
func ParseInfo(info string) (string, [][2]int) {
	info = strings.TrimSpace(info)
	open := strings.IndexByte(info, '{')
	if open < 0 {
		lang, _, _ := strings.Cut(info, " ")
		return lang, nil
	}
	lang := strings.TrimSpace(info[:open])
	rest := info[open+1:]
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return lang, nil
	}

	var ranges [][2]int
	for _, part := range strings.Split(rest[:end], ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		a, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || a < 1 {
			continue
		}
		b := a
		if isRange {
			b, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || b < a {
				continue
			}
		}
		ranges = append(ranges, [2]int{a, b})
	}
	return lang, ranges
}
