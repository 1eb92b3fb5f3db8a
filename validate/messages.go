// validate/messages.go
package validate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var defaultMessages = map[string]string{
	"required":   "{field} is required.",
	"min":        "{field} must be at least {param}.",
	"max":        "{field} must be at most {param}.",
	"min_length": "{field} must be at least {param} characters.",
	"max_length": "{field} must be at most {param} characters.",
	"between":    "{field} must be between {param}.",
	"email":      "{field} must be a valid email address.",
	"isodate":    "{field} must be a date in YYYY-MM-DD form.",
	"oneof":      "{field} must be one of: {param}.",
	"eqfield":    "{field} does not match.",
	"numeric":    "{field} must be a number.",
}

var (
	titleCaser = cases.Title(language.English)
	lowerCaser = cases.Lower(language.English)
)

// Label turns a submitted field name into the words shown to a person:
// "register_number" becomes "Register number".
func Label(field string) string {
	words := strings.Fields(strings.ReplaceAll(field, "_", " "))
	if len(words) == 0 {
		return field
	}
	words[0] = titleCaser.String(words[0])
	for i := 1; i < len(words); i++ {
		words[i] = lowerCaser.String(words[i])
	}
	return strings.Join(words, " ")
}

func (v *Validator) format(key, field, param string) string {
	msg, ok := v.msgs[key]
	if !ok {
		msg = "{field} is invalid."
	}
	if key == "between" || key == "oneof" {
		param = strings.ReplaceAll(param, ":", " and ")
		if key == "oneof" {
			param = strings.Join(strings.Fields(param), ", ")
		}
	}
	return strings.NewReplacer("{field}", Label(field), "{param}", param).Replace(msg)
}
