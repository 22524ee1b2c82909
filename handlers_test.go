package folio

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/labstack/gommon/log"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/theme"
)

var testContent = fstest.MapFS{
	"posts/first.md":  {Data: []byte("---\ntitle: First Post\ndate: 2024-01-10\nauthor: Ada\nexcerpt: The first one\n---\n# Hello\n\nHello there, <script>alert(1)</script> reader.\n")},
	"posts/second.md": {Data: []byte("---\ntitle: Second Post\ndate: 2024-02-10\n---\nSecond body with `code`.\n")},
	"drafts/soon.md":  {Data: []byte("---\ntitle: Soon\ndate: 2024-03-10\n---\nNot yet.\n")},
}

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

// setupTestApp builds an initialized App over testContent. The assets
// directory starts empty, so the embedded starter site is used unless the
// test writes overrides into it.
func setupTestApp(t *testing.T, mutate func(cfg *SiteConfig, assets string)) *App {
	t.Helper()
	assets := t.TempDir()
	cfg := SiteConfig{
		AssetsDir:     assets,
		DatabasePath:  filepath.Join(t.TempDir(), "folio.db"),
		SessionSecret: "test-secret",
	}
	if mutate != nil {
		mutate(&cfg, assets)
	}
	a := New(cfg,
		WithLogger(quietLogger()),
		WithContentProvider(content.NewLocal(testContent, quietLogger())),
	)
	if err := a.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func doRequest(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return doRequest(a, req)
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestInitRequiresSessionSecret(t *testing.T) {
	a := New(SiteConfig{DatabasePath: filepath.Join(t.TempDir(), "x.db")}, WithLogger(quietLogger()))
	if err := a.Init(); err == nil {
		t.Fatal("expected error without SessionSecret")
	}
}

func TestHomeListsPublishedPosts(t *testing.T) {
	a := setupTestApp(t, nil)
	rec := get(a, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-theme="light"`) {
		t.Error("expected light theme by default")
	}
	if got := strings.Count(body, `class="post-preview"`); got != 2 {
		t.Errorf("post previews = %d, want 2", got)
	}
	if strings.Index(body, "Second Post") > strings.Index(body, "First Post") {
		t.Error("posts should be listed newest first")
	}
	if strings.Contains(body, "Soon") {
		t.Error("draft listed without ShowDrafts")
	}
	if !strings.Contains(body, `href="/post/first"`) {
		t.Error("missing link to first post")
	}
	if !strings.Contains(body, "Showing 2 of 2 posts") {
		t.Error("missing post count text")
	}
	if !strings.Contains(body, `<style id="theme-vars">`) {
		t.Error("missing theme variables")
	}
}

func TestHomePagination(t *testing.T) {
	a := setupTestApp(t, nil)

	body := get(a, "/?limit=1").Body.String()
	if got := strings.Count(body, `class="post-preview"`); got != 1 {
		t.Errorf("previews on page 1 = %d, want 1", got)
	}
	if !strings.Contains(body, "Second Post") {
		t.Error("page 1 should show the newest post")
	}
	if !strings.Contains(body, `class="older-posts"`) || strings.Contains(body, `class="newer-posts"`) {
		t.Error("page 1 should link only to older posts")
	}
	if !strings.Contains(body, "limit=1&amp;page=2") {
		t.Error("older link should keep the limit")
	}

	body = get(a, "/?limit=1&page=2").Body.String()
	if !strings.Contains(body, "First Post") || strings.Contains(body, "Second Post") {
		t.Error("page 2 should show only the older post")
	}
	if !strings.Contains(body, `class="newer-posts"`) {
		t.Error("page 2 should link to newer posts")
	}

	body = get(a, "/?limit=1&all=1").Body.String()
	if got := strings.Count(body, `class="post-preview"`); got != 2 {
		t.Errorf("previews with all = %d, want 2", got)
	}
	if !strings.Contains(body, `class="show-less-btn"`) {
		t.Error("show all should offer show less")
	}
}

func TestHomeShowsDrafts(t *testing.T) {
	a := setupTestApp(t, func(cfg *SiteConfig, _ string) { cfg.ShowDrafts = true })
	body := get(a, "/").Body.String()
	if got := strings.Count(body, `class="post-preview"`); got != 3 {
		t.Errorf("post previews = %d, want 3", got)
	}
	if !strings.Contains(body, `class="draft-indicator"`) {
		t.Error("draft should carry an indicator")
	}
}

func TestPostPage(t *testing.T) {
	a := setupTestApp(t, nil)
	rec := get(a, "/post/first")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<title>First Post | ") {
		t.Error("missing post title")
	}
	if !strings.Contains(body, "Hello there,") {
		t.Error("missing rendered markdown")
	}
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("post HTML was not sanitized")
	}
	if !strings.Contains(body, "Ada") {
		t.Error("missing author")
	}
}

func TestDraftReachableBySlug(t *testing.T) {
	a := setupTestApp(t, nil)
	rec := get(a, "/post/soon")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="draft-indicator"`) {
		t.Error("draft page should carry an indicator")
	}
}

func TestPostNotFound(t *testing.T) {
	a := setupTestApp(t, nil)
	for _, target := range []string{"/post/missing", "/post/..", "/no-such-page"} {
		rec := get(a, target)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Post not found") {
			t.Errorf("%s: missing not-found message", target)
		}
	}
}

func TestTemplateOverride(t *testing.T) {
	a := setupTestApp(t, func(_ *SiteConfig, assets string) {
		dir := filepath.Join(assets, "templates")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		custom := `<div class="custom-404">{{message}}{{#if missing}}hidden{{/if}}</div>`
		if err := os.WriteFile(filepath.Join(dir, "not-found.html"), []byte(custom), 0o644); err != nil {
			t.Fatal(err)
		}
	})
	body := get(a, "/post/missing").Body.String()
	if !strings.Contains(body, `<div class="custom-404">Post not found</div>`) {
		t.Errorf("custom template not used:\n%s", body)
	}
}

func TestThemeSwitch(t *testing.T) {
	a := setupTestApp(t, nil)

	first := get(a, "/")
	csrf := findCookie(first.Result().Cookies(), "_csrf")
	if csrf == nil {
		t.Fatal("no CSRF cookie issued")
	}

	form := url.Values{"theme": {"dark"}, "_csrf": {csrf.Value}, "redirect": {"/post/first"}}
	req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(csrf)
	rec := doRequest(a, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/post/first" {
		t.Errorf("Location = %q, want /post/first", loc)
	}
	sess := findCookie(rec.Result().Cookies(), sessionName)
	if sess == nil {
		t.Fatal("no session cookie set")
	}

	body := get(a, "/", sess).Body.String()
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Error("theme preference not applied")
	}
	if strings.Count(body, `data-theme="light"`) != 0 {
		t.Error("light theme still active")
	}

	// Toggling flips back.
	form = url.Values{"theme": {"toggle"}, "_csrf": {csrf.Value}, "redirect": {"//evil.example"}}
	req = httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(csrf)
	req.AddCookie(sess)
	rec = doRequest(a, req)
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	sess = findCookie(rec.Result().Cookies(), sessionName)
	if sess == nil {
		t.Fatal("no session cookie after toggle")
	}
	if body := get(a, "/", sess).Body.String(); !strings.Contains(body, `data-theme="light"`) {
		t.Error("toggle did not switch back to light")
	}
}

func TestThemeSwitchRequiresCSRF(t *testing.T) {
	a := setupTestApp(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader("theme=dark"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := doRequest(a, req); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestThemeFromClientHint(t *testing.T) {
	a := setupTestApp(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ambientHeader, `"dark"`)
	rec := doRequest(a, req)
	if !strings.Contains(rec.Body.String(), `data-theme="dark"`) {
		t.Error("client hint not honoured")
	}
	if got := rec.Header().Get("Accept-CH"); got != ambientHeader {
		t.Errorf("Accept-CH = %q", got)
	}
}

func TestThemeSiteDefault(t *testing.T) {
	a := setupTestApp(t, nil)
	if err := a.Store.Set(context.Background(), theme.PreferenceKey, "dark"); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ambientHeader, `"light"`)
	if body := doRequest(a, req).Body.String(); !strings.Contains(body, `data-theme="dark"`) {
		t.Error("site default should win over the client hint")
	}
}

func TestRefreshRateLimited(t *testing.T) {
	a := setupTestApp(t, nil)
	for i := range 5 {
		rec := doRequest(a, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("refresh %d: status = %d, want 200", i+1, rec.Code)
		}
	}
	rec := doRequest(a, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestRefreshPicksUpTemplateChanges(t *testing.T) {
	var assets string
	a := setupTestApp(t, func(_ *SiteConfig, dir string) { assets = dir })
	if body := get(a, "/post/missing").Body.String(); strings.Contains(body, "replaced") {
		t.Fatal("unexpected override before writing one")
	}

	dir := filepath.Join(assets, "templates")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "not-found.html"), []byte("<p>replaced</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if body := get(a, "/post/missing").Body.String(); strings.Contains(body, "replaced") {
		t.Error("template served before refresh should still be cached")
	}

	a.Refresh()
	if body := get(a, "/post/missing").Body.String(); !strings.Contains(body, "<p>replaced</p>") {
		t.Error("refresh did not reload templates")
	}
}

func TestFeedAndSitemap(t *testing.T) {
	a := setupTestApp(t, nil)

	rec := get(a, "/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("feed status = %d", rec.Code)
	}
	feed := rec.Body.String()
	if !strings.Contains(feed, "<rss") || !strings.Contains(feed, "<link>http://localhost:3000/post/first</link>") {
		t.Errorf("unexpected feed:\n%s", feed)
	}
	if strings.Contains(feed, "Soon") {
		t.Error("feed should not include drafts")
	}
	// RSS <author> must be an email, so front-matter names go in dc:creator.
	if !strings.Contains(feed, "<dc:creator>Ada</dc:creator>") || strings.Contains(feed, "<author>") {
		t.Error("author should be written as dc:creator")
	}
	if !strings.Contains(feed, `xmlns:dc="http://purl.org/dc/elements/1.1/"`) {
		t.Error("missing dc namespace")
	}

	rec = get(a, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("sitemap status = %d", rec.Code)
	}
	sitemap := rec.Body.String()
	if !strings.Contains(sitemap, "<loc>http://localhost:3000/post/second</loc>") {
		t.Errorf("unexpected sitemap:\n%s", sitemap)
	}
	if !strings.Contains(sitemap, "<lastmod>2024-02-10</lastmod>") {
		t.Error("missing lastmod")
	}
}

func TestEmbeddedPublicAssets(t *testing.T) {
	a := setupTestApp(t, nil)
	rec := get(a, "/public/folio.css")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec := get(a, "/favicon.svg"); rec.Code != http.StatusOK {
		t.Errorf("favicon status = %d", rec.Code)
	}
}

func TestRenderPost(t *testing.T) {
	a := setupTestApp(t, nil)
	out, err := a.RenderPost(context.Background(), "second", theme.Dark)
	if err != nil {
		t.Fatalf("RenderPost failed: %v", err)
	}
	if !strings.Contains(out, `class="inline-code"`) {
		t.Error("inline code not marked")
	}
	if strings.Contains(out, "<!DOCTYPE") {
		t.Error("RenderPost should not include the document shell")
	}
	if _, err := a.RenderPost(context.Background(), "nope", theme.Light); !content.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestRemoteAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/site/templates/not-found.html" {
			w.Write([]byte(`<p class="remote">{{message}}</p>`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	a := setupTestApp(t, func(cfg *SiteConfig, _ string) { cfg.AssetsURL = srv.URL + "/site/" })
	body := get(a, "/post/missing").Body.String()
	if !strings.Contains(body, `<p class="remote">Post not found</p>`) {
		t.Error("remote template not used")
	}
	if !strings.Contains(body, "<title>Post not found | My Blog</title>") {
		t.Error("config should fall back to the embedded documents")
	}
}

func TestServerErrorPage(t *testing.T) {
	a := New(SiteConfig{
		AssetsDir:     t.TempDir(),
		DatabasePath:  filepath.Join(t.TempDir(), "folio.db"),
		SessionSecret: "test-secret",
	},
		WithLogger(quietLogger()),
		WithContentProvider(&fakeProvider{err: errors.New("source unreachable")}),
	)
	if err := a.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	for _, target := range []string{"/post/first", "/feed.xml"} {
		rec := get(a, target)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", target, rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `<div class="template-fallback">`) {
			t.Errorf("%s: missing fallback markup:\n%s", target, body)
		}
		if !strings.Contains(body, `class="error-loading"`) {
			t.Errorf("%s: missing error message", target)
		}
	}

	rec := get(a, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("home status = %d, want 200", rec.Code)
	}
}
