// validate/rules.go
package validate

import (
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

func builtinRules() map[string]RuleFunc {
	return map[string]RuleFunc{
		"omitempty": func(any, string, reflect.Value) string { return "" },
		"required":  ruleRequired,
		"min":       ruleMin,
		"max":       ruleMax,
		"between":   ruleBetween,
		"email":     ruleEmail,
		"isodate":   ruleISODate,
		"oneof":     ruleOneOf,
		"eqfield":   ruleEqField,
		"numeric":   ruleNumeric,
	}
}

func ruleRequired(value any, _ string, _ reflect.Value) string {
	if isEmpty(reflect.ValueOf(value)) {
		return "required"
	}
	return ""
}

// size returns the length of strings (in runes) and collections, or the
// numeric value of numbers.
func size(value any) (float64, bool) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String:
		return float64(utf8.RuneCountInString(strings.TrimSpace(v.String()))), true
	case reflect.Slice, reflect.Map, reflect.Array:
		return float64(v.Len()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

func isText(value any) bool {
	_, ok := value.(string)
	return ok
}

func ruleMin(value any, param string, _ reflect.Value) string {
	n, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return ""
	}
	s, ok := size(value)
	if !ok || s >= n {
		return ""
	}
	if isText(value) {
		return "min_length"
	}
	return "min"
}

func ruleMax(value any, param string, _ reflect.Value) string {
	n, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return ""
	}
	s, ok := size(value)
	if !ok || s <= n {
		return ""
	}
	if isText(value) {
		return "max_length"
	}
	return "max"
}

// ruleBetween takes "lo:hi", inclusive.
func ruleBetween(value any, param string, _ reflect.Value) string {
	lo, hi, ok := strings.Cut(param, ":")
	if !ok {
		return ""
	}
	l, err1 := strconv.ParseFloat(lo, 64)
	h, err2 := strconv.ParseFloat(hi, 64)
	if err1 != nil || err2 != nil {
		return ""
	}
	s, ok := size(value)
	if !ok || (s >= l && s <= h) {
		return ""
	}
	return "between"
}

// SimpleEmailValid catches empty input, a missing '@' and a domain without a
// dot. It is not an RFC validator.
func SimpleEmailValid(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 || strings.Count(s, "@") != 1 {
		return false
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}

func ruleEmail(value any, _ string, _ reflect.Value) string {
	s, ok := value.(string)
	if !ok || s == "" {
		return ""
	}
	if !SimpleEmailValid(s) {
		return "email"
	}
	return ""
}

func ruleISODate(value any, _ string, _ reflect.Value) string {
	s, ok := value.(string)
	if !ok || s == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "isodate"
	}
	return ""
}

// ruleOneOf takes space separated choices.
func ruleOneOf(value any, param string, _ reflect.Value) string {
	s := strings.TrimSpace(toString(value))
	for _, choice := range strings.Fields(param) {
		if s == choice {
			return ""
		}
	}
	return "oneof"
}

func ruleEqField(value any, param string, structVal reflect.Value) string {
	if !structVal.IsValid() {
		return ""
	}
	other := structVal.FieldByName(param)
	if !other.IsValid() || !other.CanInterface() {
		return ""
	}
	if !reflect.DeepEqual(value, other.Interface()) {
		return "eqfield"
	}
	return ""
}

func ruleNumeric(value any, _ string, _ reflect.Value) string {
	s, ok := value.(string)
	if !ok || s == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "numeric"
	}
	return ""
}

func toString(value any) string {
	switch t := value.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		v := reflect.ValueOf(value)
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(v.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(v.Uint(), 10)
		}
	}
	return ""
}
