package folio

import (
	"html/template"

	"github.com/eringen/folio/theme"
)

// Pagination describes the slice of the post listing shown on one home page.
// Start and End index into the newest-first listing.
type Pagination struct {
	Start    int
	End      int
	Page     int
	Pages    int
	Limit    int
	All      bool
	HasNewer bool
	HasOlder bool
}

// Page carries everything the document shell needs around a rendered body.
type Page struct {
	Title     string
	Theme     theme.Theme
	Config    theme.Config
	Body      template.HTML
	CSRFToken string
	Path      string
	Reload    bool // inject the live reload client
}
