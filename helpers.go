package folio

import (
	"net/url"
	"path"
	"strconv"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

// PostPath returns the site-relative path of a post.
func PostPath(slug string) string {
	return "/post/" + url.PathEscape(slug)
}

// Paginate splits total posts into pages of limit, newest first. Page is
// clamped into range; with all set a single page holds everything.
func Paginate(total, page, limit int, all bool) Pagination {
	if total < 0 {
		total = 0
	}
	if all {
		return Pagination{Start: 0, End: total, Page: 1, Pages: 1, Limit: limit, All: true}
	}
	if limit < 1 {
		limit = 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	page = min(max(page, 1), pages)
	start := (page - 1) * limit
	end := min(start+limit, total)
	return Pagination{
		Start:    start,
		End:      end,
		Page:     page,
		Pages:    pages,
		Limit:    limit,
		HasNewer: page > 1,
		HasOlder: page < pages,
	}
}

// homeURL builds a home page link preserving the list size.
func homeURL(page, limit int, all bool) string {
	q := url.Values{}
	if all {
		q.Set("all", "1")
	} else {
		if page > 1 {
			q.Set("page", strconv.Itoa(page))
		}
		if limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

// queryInt parses a positive integer query value, or returns fallback.
func queryInt(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
