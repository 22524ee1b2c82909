package theme

import (
	"fmt"
	"regexp"
	"time"
)

// FormatDate formats t as "long" (January 2, 2006), "short" (Jan 2, 2006)
// or "numeric" (01/02/2006). Unknown formats use numeric.
func FormatDate(t time.Time, format string) string {
	switch format {
	case "long":
		return t.Format("January 2, 2006")
	case "short":
		return t.Format("Jan 2, 2006")
	default:
		return t.Format("01/02/2006")
	}
}

var rePlaceholder = regexp.MustCompile(`\{(\w+)\}`)

// ReplaceVars substitutes {key} placeholders in a text string. Unknown keys
// are left as written.
func ReplaceVars(text string, vars map[string]any) string {
	return rePlaceholder.ReplaceAllStringFunc(text, func(m string) string {
		v, ok := vars[m[1:len(m)-1]]
		if !ok {
			return m
		}
		return fmt.Sprint(v)
	})
}
