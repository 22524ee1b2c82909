// Package content supplies blog posts from a local bundle of markdown files
// or from a GitHub repository.
package content

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// FrontMatter is the YAML block at the top of a post.
type FrontMatter struct {
	Title   string `yaml:"title"`
	Date    string `yaml:"date"`
	Author  string `yaml:"author"`
	Excerpt string `yaml:"excerpt"`
	Draft   bool   `yaml:"draft"`
}

// Post is a markdown post. Slug is the file name without its extension.
type Post struct {
	Slug string
	FrontMatter
	Content string
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"January 2, 2006",
}

// PublishedAt parses the front-matter date. Unparseable dates yield the zero
// time, which sorts last.
func (p Post) PublishedAt() time.Time {
	d := strings.TrimSpace(p.Date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, d); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Provider supplies posts. Implementations return *NotFoundError from Post
// for unknown slugs and *FetchError when a remote source fails.
type Provider interface {
	Posts(ctx context.Context) ([]Post, error)
	Drafts(ctx context.Context) ([]Post, error)
	Post(ctx context.Context, slug string) (Post, error)
}

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Parse splits raw into front matter and markdown body. A file without front
// matter is all body.
func Parse(slug string, raw []byte) (Post, error) {
	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm, yamlFormat)
	if err != nil {
		return Post{}, fmt.Errorf("parse front matter of %s: %w", slug, err)
	}
	return Post{Slug: slug, FrontMatter: fm, Content: string(body)}, nil
}

// SlugFromName derives a slug from a markdown file name.
func SlugFromName(name string) string {
	return strings.TrimSuffix(path.Base(name), ".md")
}

// ValidSlug reports whether slug can name a post file.
func ValidSlug(slug string) bool {
	return slug != "" && slug != "." && slug != ".." && !strings.ContainsAny(slug, `/\`)
}

// SortNewestFirst orders posts by date, newest first. Posts with equal dates
// keep their relative order.
func SortNewestFirst(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		return b.PublishedAt().Compare(a.PublishedAt())
	})
}

// Find returns the post with slug from the published posts, then drafts.
func Find(ctx context.Context, p Provider, slug string) (Post, error) {
	posts, err := p.Posts(ctx)
	if err != nil {
		return Post{}, err
	}
	for _, post := range posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	drafts, err := p.Drafts(ctx)
	if err != nil {
		return Post{}, err
	}
	for _, post := range drafts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return Post{}, &NotFoundError{Slug: slug}
}
