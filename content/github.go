package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

// DefaultAPIBase is the GitHub REST endpoint used when APIBase is empty.
const DefaultAPIBase = "https://api.github.com"

const downloadLimit = 4

// SnapshotStore keeps the last good listing per source so a failing remote
// does not blank the blog.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, source string, posts []Post) error
	LoadSnapshot(ctx context.Context, source string) ([]Post, error)
}

// GitHub lists markdown files in a repository directory through the
// contents API and downloads each one.
type GitHub struct {
	Owner      string
	Repo       string
	PostsPath  string
	DraftsPath string
	Token      string
	APIBase    string
	Client     *http.Client
	Snapshots  SnapshotStore
	Logger     *log.Logger
}

type repoEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

func (g *GitHub) Posts(ctx context.Context) ([]Post, error) {
	return g.listWithFallback(ctx, g.PostsPath, false)
}

func (g *GitHub) Drafts(ctx context.Context) ([]Post, error) {
	if g.DraftsPath == "" {
		return nil, nil
	}
	drafts, err := g.listWithFallback(ctx, g.DraftsPath, true)
	var fe *FetchError
	if errors.As(err, &fe) && fe.Status == http.StatusNotFound {
		// No drafts directory in the repository.
		return nil, nil
	}
	return drafts, err
}

func (g *GitHub) Post(ctx context.Context, slug string) (Post, error) {
	return Find(ctx, g, slug)
}

// Source names a directory of this repository for snapshot storage.
func (g *GitHub) Source(dir string) string {
	return "github:" + g.Owner + "/" + g.Repo + "/" + strings.Trim(dir, "/")
}

func (g *GitHub) listWithFallback(ctx context.Context, dir string, draft bool) ([]Post, error) {
	posts, err := g.list(ctx, dir, draft)
	source := g.Source(dir)
	if err == nil {
		if g.Snapshots != nil {
			if serr := g.Snapshots.SaveSnapshot(ctx, source, posts); serr != nil {
				g.warnf("saving snapshot %s: %v", source, serr)
			}
		}
		return posts, nil
	}
	if g.Snapshots == nil {
		return nil, err
	}
	snap, serr := g.Snapshots.LoadSnapshot(ctx, source)
	if serr != nil || snap == nil {
		return nil, err
	}
	g.warnf("serving snapshot for %s: %v", source, err)
	return snap, nil
}

func (g *GitHub) list(ctx context.Context, dir string, draft bool) ([]Post, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.apiBase(), g.Owner, g.Repo, strings.Trim(dir, "/"))
	body, err := g.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}
	var entries []repoEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("decode listing: %w", err)}
	}

	var files []repoEntry
	for _, e := range entries {
		if e.Type == "file" && strings.HasSuffix(e.Name, ".md") && e.DownloadURL != "" {
			files = append(files, e)
		}
	}

	posts := make([]Post, len(files))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(downloadLimit)
	for i, f := range files {
		eg.Go(func() error {
			raw, err := g.get(gctx, f.DownloadURL, "")
			if err != nil {
				return err
			}
			p, err := Parse(SlugFromName(f.Name), raw)
			if err != nil {
				return err
			}
			if draft {
				p.Draft = true
			}
			posts[i] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	SortNewestFirst(posts)
	return posts, nil
}

func (g *GitHub) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}
	resp, err := g.client().Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}

func (g *GitHub) apiBase() string {
	if g.APIBase == "" {
		return DefaultAPIBase
	}
	return strings.TrimRight(g.APIBase, "/")
}

func (g *GitHub) client() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (g *GitHub) warnf(format string, args ...any) {
	if g.Logger != nil {
		g.Logger.Warnf(format, args...)
	}
}
