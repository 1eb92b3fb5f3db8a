// templates/funcs.go
package templates

import (
	"html/template"
	"strings"
	"time"
)

// Funcs returns helpers available to all templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"lower":     strings.ToLower,
		"dateLabel": dateLabel,
		// {{ plural 3 "day" "days" }}
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}
}

// dateLabel renders an ISO date as "Mon, 19 Oct 2026". Anything that does
// not parse is returned unchanged.
func dateLabel(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("Mon, 02 Jan 2006")
}
