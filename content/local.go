package content

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/gommon/log"
)

// Local reads posts from a directory tree. Posts live under PostsDir and
// drafts under DraftsDir; a missing directory holds no posts.
type Local struct {
	FS        fs.FS
	PostsDir  string
	DraftsDir string
	Logger    *log.Logger
}

// NewLocal returns a provider reading posts/ and drafts/ from fsys.
func NewLocal(fsys fs.FS, logger *log.Logger) *Local {
	return &Local{FS: fsys, PostsDir: "posts", DraftsDir: "drafts", Logger: logger}
}

func (l *Local) Posts(ctx context.Context) ([]Post, error) {
	return l.list(ctx, l.PostsDir, false)
}

// Drafts returns every post under DraftsDir marked as a draft regardless of
// its front matter.
func (l *Local) Drafts(ctx context.Context) ([]Post, error) {
	if l.DraftsDir == "" {
		return nil, nil
	}
	return l.list(ctx, l.DraftsDir, true)
}

func (l *Local) Post(ctx context.Context, slug string) (Post, error) {
	if !ValidSlug(slug) {
		return Post{}, &NotFoundError{Slug: slug}
	}
	dirs := []struct {
		dir   string
		draft bool
	}{{l.PostsDir, false}, {l.DraftsDir, true}}
	for _, d := range dirs {
		if d.dir == "" {
			continue
		}
		p, err := l.read(path.Join(d.dir, slug+".md"), d.draft)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Post{}, err
		}
		return p, nil
	}
	return Post{}, &NotFoundError{Slug: slug}
}

func (l *Local) list(ctx context.Context, dir string, draft bool) ([]Post, error) {
	entries, err := fs.ReadDir(l.FS, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var posts []Post
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		p, err := l.read(path.Join(dir, e.Name()), draft)
		if err != nil {
			if l.Logger != nil {
				l.Logger.Warnf("skipping %s: %v", e.Name(), err)
			}
			continue
		}
		posts = append(posts, p)
	}
	SortNewestFirst(posts)
	return posts, nil
}

func (l *Local) read(name string, draft bool) (Post, error) {
	raw, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return Post{}, err
	}
	p, err := Parse(SlugFromName(name), raw)
	if err != nil {
		return Post{}, err
	}
	if draft {
		p.Draft = true
	}
	return p, nil
}
