package fragment

import (
	"regexp"
	"strings"
)

var reConditional = regexp.MustCompile(`\{\{#if\s+(\w+)\}\}|\{\{/if\}\}`)

// node is either literal text or a conditional block with children.
type node struct {
	text     string
	cond     string
	isBlock  bool
	children []node
}

type frame struct {
	cond     string
	offset   int
	children []node
}

// parseConditionals tokenizes {{#if}} / {{/if}} tags and builds a tree with a
// stack. When some opening tag is never closed it returns the offset of the
// earliest such tag; the tree then only covers text before that offset.
// Otherwise the returned offset is -1.
func parseConditionals(text string) (node, int) {
	stack := []frame{{offset: -1}}
	last := 0
	push := func(n node) {
		top := &stack[len(stack)-1]
		top.children = append(top.children, n)
	}

	for _, m := range reConditional.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			push(node{text: text[last:m[0]]})
		}
		last = m[1]
		if m[2] >= 0 {
			stack = append(stack, frame{cond: text[m[2]:m[3]], offset: m[0]})
			continue
		}
		if len(stack) == 1 {
			// closing tag with nothing open stays literal
			push(node{text: text[m[0]:m[1]]})
			continue
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(node{cond: f.cond, isBlock: true, children: f.children})
	}

	if len(stack) > 1 {
		return node{isBlock: true, children: stack[0].children}, stack[1].offset
	}
	if last < len(text) {
		push(node{text: text[last:]})
	}
	return node{isBlock: true, children: stack[0].children}, -1
}

func (n node) write(b *strings.Builder, data Data) {
	for _, c := range n.children {
		if !c.isBlock {
			b.WriteString(c.text)
			continue
		}
		if v, ok := data[c.cond]; ok && Truthy(v) {
			c.write(b, data)
		}
	}
}
