package scaffold

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/theme"
)

func TestSiteHasFragments(t *testing.T) {
	for _, name := range []string{"home", "post", "post-list-item", "header", "footer", "not-found"} {
		if _, err := fs.Stat(Site, "templates/"+name+".html"); err != nil {
			t.Errorf("missing fragment %s: %v", name, err)
		}
	}
}

func TestSiteConfigDocumentsParse(t *testing.T) {
	for _, name := range []string{"template.json", "template-light.json", "template-dark.json"} {
		raw, err := fs.ReadFile(Site, "config/"+name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if _, err := theme.ParseDocument(name, raw); err != nil {
			t.Errorf("%s does not parse: %v", name, err)
		}
	}
}

func TestSiteSamplePosts(t *testing.T) {
	l := content.NewLocal(mustSub(Site, "content"), nil)
	posts, err := l.Posts(t.Context())
	if err != nil {
		t.Fatalf("Posts failed: %v", err)
	}
	if len(posts) == 0 {
		t.Fatal("starter site has no posts")
	}
	for _, p := range posts {
		if p.Title == "" || p.PublishedAt().IsZero() {
			t.Errorf("sample post %s lacks title or date", p.Slug)
		}
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "myblog")
	var created []string
	if err := Write(dir, `Ada's "Notes"`, func(p string) { created = append(created, p) }); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(created) == 0 {
		t.Fatal("no files reported")
	}
	raw, err := os.ReadFile(filepath.Join(dir, "config", "template.json"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(raw), `"title": "Ada's \"Notes\""`) {
		t.Errorf("title not set in config:\n%s", raw)
	}
	if _, err := os.Stat(filepath.Join(dir, "templates", "home.html")); err != nil {
		t.Errorf("home fragment not written: %v", err)
	}

	if err := Write(dir, "", nil); err == nil {
		t.Error("expected error writing into an existing directory")
	}
}
