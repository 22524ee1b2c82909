package content

import (
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/labstack/gommon/log"
)

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func TestParseFrontMatter(t *testing.T) {
	raw := "---\ntitle: Hello World\ndate: 2024-01-15\nauthor: Ada\nexcerpt: First post\n---\n# Heading\n\nBody text.\n"
	p, err := Parse("hello-world", []byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Slug != "hello-world" {
		t.Errorf("Slug = %q", p.Slug)
	}
	if p.Title != "Hello World" || p.Author != "Ada" || p.Excerpt != "First post" {
		t.Errorf("front matter = %+v", p.FrontMatter)
	}
	if p.Date != "2024-01-15" {
		t.Errorf("Date = %q, want 2024-01-15", p.Date)
	}
	if p.PublishedAt().Year() != 2024 {
		t.Errorf("PublishedAt = %v", p.PublishedAt())
	}
	if p.Content != "# Heading\n\nBody text.\n" {
		t.Errorf("Content = %q", p.Content)
	}
}

func TestParseWithoutFrontMatter(t *testing.T) {
	p, err := Parse("plain", []byte("just text\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Title != "" || p.Content != "just text\n" {
		t.Errorf("Parse = %+v", p)
	}
	if !p.PublishedAt().IsZero() {
		t.Error("missing date should give zero time")
	}
}

func TestSortNewestFirst(t *testing.T) {
	posts := []Post{
		{Slug: "old", FrontMatter: FrontMatter{Date: "2023-01-01"}},
		{Slug: "undated"},
		{Slug: "new", FrontMatter: FrontMatter{Date: "2024-06-01"}},
		{Slug: "mid", FrontMatter: FrontMatter{Date: "2023-09-10"}},
	}
	SortNewestFirst(posts)
	want := []string{"new", "mid", "old", "undated"}
	for i, slug := range want {
		if posts[i].Slug != slug {
			t.Fatalf("position %d = %s, want %s", i, posts[i].Slug, slug)
		}
	}
}

func TestValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		ok   bool
	}{
		{"hello-world", true},
		{"", false},
		{"..", false},
		{"../etc/passwd", false},
		{`a\b`, false},
	}
	for _, tt := range tests {
		if got := ValidSlug(tt.slug); got != tt.ok {
			t.Errorf("ValidSlug(%q) = %v, want %v", tt.slug, got, tt.ok)
		}
	}
}

func newLocal() *Local {
	fsys := fstest.MapFS{
		"posts/first.md":   {Data: []byte("---\ntitle: First\ndate: 2024-01-01\n---\none")},
		"posts/second.md":  {Data: []byte("---\ntitle: Second\ndate: 2024-02-01\n---\ntwo")},
		"posts/notes.txt":  {Data: []byte("ignored")},
		"posts/broken.md":  {Data: []byte("---\ntitle: [unclosed\n---\nbody")},
		"drafts/wip.md":    {Data: []byte("---\ntitle: WIP\ndate: 2024-03-01\n---\nsoon")},
		"drafts/forced.md": {Data: []byte("---\ntitle: Forced\ndraft: false\n---\nx")},
	}
	return NewLocal(fsys, quietLogger())
}

func TestLocalPosts(t *testing.T) {
	posts, err := newLocal().Posts(context.Background())
	if err != nil {
		t.Fatalf("Posts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].Slug != "second" || posts[1].Slug != "first" {
		t.Errorf("order = %s, %s", posts[0].Slug, posts[1].Slug)
	}
	for _, p := range posts {
		if p.Draft {
			t.Errorf("%s should not be a draft", p.Slug)
		}
	}
}

func TestLocalDraftsAreMarked(t *testing.T) {
	drafts, err := newLocal().Drafts(context.Background())
	if err != nil {
		t.Fatalf("Drafts failed: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("got %d drafts, want 2", len(drafts))
	}
	for _, d := range drafts {
		if !d.Draft {
			t.Errorf("%s should be marked as draft", d.Slug)
		}
	}
}

func TestLocalPost(t *testing.T) {
	l := newLocal()
	p, err := l.Post(context.Background(), "first")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if p.Title != "First" || p.Content != "one" {
		t.Errorf("Post = %+v", p)
	}

	d, err := l.Post(context.Background(), "wip")
	if err != nil {
		t.Fatalf("Post(draft) failed: %v", err)
	}
	if !d.Draft {
		t.Error("draft lookup should be marked as draft")
	}

	for _, slug := range []string{"missing", "../posts/first", ""} {
		_, err := l.Post(context.Background(), slug)
		if !IsNotFound(err) {
			t.Errorf("Post(%q) error = %v, want NotFoundError", slug, err)
		}
	}
}

func TestLocalMissingDirectories(t *testing.T) {
	l := NewLocal(fstest.MapFS{}, quietLogger())
	posts, err := l.Posts(context.Background())
	if err != nil || len(posts) != 0 {
		t.Errorf("Posts = %v, %v; want empty", posts, err)
	}
}

func TestFetchErrorMessage(t *testing.T) {
	err := error(&FetchError{URL: "https://example.com/x", Status: 503})
	if err.Error() != "fetch https://example.com/x: status 503" {
		t.Errorf("Error() = %q", err.Error())
	}
	inner := errors.New("dial failed")
	wrapped := &FetchError{URL: "u", Err: inner}
	if !errors.Is(wrapped, inner) {
		t.Error("FetchError should unwrap to its cause")
	}
}
