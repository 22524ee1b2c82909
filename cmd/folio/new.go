package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/eringen/folio/scaffold"
)

func runNew(args []string) error {
	var title string
	fs := pflag.NewFlagSet("new", pflag.ContinueOnError)
	fs.StringVar(&title, "title", "", "site title (default derived from the directory name)")
	fs.BoolP("help", "h", false, "show help")
	if help, err := parse(fs, args, "folio new [flags] <dir>"); help || err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("new takes exactly one directory")
	}
	dir := fs.Arg(0)
	if title == "" {
		title = toTitle(filepath.Base(dir))
	}

	fmt.Printf("Creating new folio site: %s\n\n", dir)
	err := scaffold.Write(dir, title, func(path string) {
		fmt.Printf("  created %s\n", path)
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  folio serve --assets %s --dev\n", dir)
	fmt.Println()
	fmt.Println("Edit templates/*.html and config/*.json to customize the site,")
	fmt.Println("and add posts under content/posts.")
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
