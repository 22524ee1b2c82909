// Package scaffold embeds the starter site: fragment templates, configuration
// documents, sample posts and the base stylesheet. The viewer falls back to
// these files for anything missing from the site directory, and `folio new`
// copies them into a fresh one.
package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

//go:embed all:site
var files embed.FS

// Site is the starter site rooted at its top directory.
var Site = mustSub(files, "site")

const defaultTitle = `"title": "My Blog"`

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Write copies the starter site into dir, which must not exist yet. The site
// title in config/template.json is set to title when non-empty. created is
// called with each file written.
func Write(dir, title string, created func(path string)) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}
	return fs.WalkDir(Site, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		outPath := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}
		data, err := fs.ReadFile(Site, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if path == "config/template.json" && title != "" {
			quoted, err := json.Marshal(title)
			if err != nil {
				return err
			}
			data = bytes.Replace(data, []byte(defaultTitle), []byte(`"title": `+string(quoted)), 1)
		}
		if err := atomic.WriteFile(outPath, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		if created != nil {
			created(outPath)
		}
		return nil
	})
}
