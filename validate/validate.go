// validate/validate.go
// Package validate checks struct fields against rules declared in tags.
//
//	type Account struct {
//	    Password string `json:"password" validate:"required,min=6"`
//	    Confirm  string `json:"confirm_password" validate:"required,eqfield=Password"`
//	    Semester int    `json:"semester" validate:"between=1:8"`
//	}
//
//	if err := validate.New().Struct(acct); err != nil {
//	    for _, e := range err.(validate.Errors) {
//	        fmt.Println(e.Field, e.Message)
//	    }
//	}
//
// Field names come from the json tag so messages line up with the names the
// client submitted.
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// RuleFunc checks one value. It returns a message key when the value fails,
// or "" when it passes. structVal is the enclosing struct, for cross-field
// rules.
type RuleFunc func(value any, param string, structVal reflect.Value) string

// Validator validates struct fields using tags.
type Validator struct {
	tagName     string
	stopOnFirst bool

	mu    sync.RWMutex
	rules map[string]RuleFunc
	msgs  map[string]string
}

// Option configures a Validator.
type Option func(*Validator)

// WithTagName sets the struct tag to read (default "validate").
func WithTagName(name string) Option {
	return func(v *Validator) { v.tagName = name }
}

// WithStopOnFirstError returns after the first failing rule.
func WithStopOnFirstError() Option {
	return func(v *Validator) { v.stopOnFirst = true }
}

// New creates a Validator with the built-in rules.
func New(opts ...Option) *Validator {
	v := &Validator{
		tagName: "validate",
		rules:   builtinRules(),
		msgs:    make(map[string]string, len(defaultMessages)),
	}
	for k, m := range defaultMessages {
		v.msgs[k] = m
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// RegisterRule adds or replaces a rule. message is the text used when the
// rule fails; it may contain {field} and {param}.
func (v *Validator) RegisterRule(name string, fn RuleFunc, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rules[name] = fn
	if message != "" {
		v.msgs[name] = message
	}
}

// Struct validates s, which must be a struct or a pointer to one.
// It returns nil or an Errors value.
func (v *Validator) Struct(s any) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validate: expected struct, got %s", val.Kind())
	}
	if errs := v.validateStruct(val); len(errs) > 0 {
		return errs
	}
	return nil
}

// Var validates a single value against a tag such as "required,min=5".
func (v *Validator) Var(name string, value any, tag string) error {
	if errs := v.validateValue(reflect.ValueOf(value), name, tag, reflect.Value{}); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *Validator) validateStruct(val reflect.Value) Errors {
	var errs Errors
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get(v.tagName)
		if tag == "" || tag == "-" {
			continue
		}
		errs = append(errs, v.validateValue(val.Field(i), fieldName(field), tag, val)...)
		if v.stopOnFirst && len(errs) > 0 {
			return errs
		}
	}
	return errs
}

func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name := strings.Split(tag, ",")[0]; name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func (v *Validator) validateValue(val reflect.Value, name, tag string, structVal reflect.Value) Errors {
	rules := parseTag(tag)

	for _, r := range rules {
		if r.name == "omitempty" && isEmpty(val) {
			return nil
		}
	}

	var value any
	if val.IsValid() && val.CanInterface() {
		value = val.Interface()
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	var errs Errors
	for _, r := range rules {
		fn, ok := v.rules[r.name]
		if !ok {
			continue
		}
		key := fn(value, r.param, structVal)
		if key == "" {
			continue
		}
		errs = append(errs, &Error{
			Field:   name,
			Rule:    r.name,
			Param:   r.param,
			Message: v.format(key, name, r.param),
		})
		if v.stopOnFirst {
			return errs
		}
		// One message per field is enough; later rules tend to repeat it.
		break
	}
	return errs
}

type rule struct {
	name  string
	param string
}

func parseTag(tag string) []rule {
	var rules []rule
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r := rule{name: part}
		if idx := strings.IndexByte(part, '='); idx != -1 {
			r.name, r.param = part[:idx], part[idx+1:]
		}
		rules = append(rules, r)
	}
	return rules
}

func isEmpty(val reflect.Value) bool {
	if !val.IsValid() {
		return true
	}
	switch val.Kind() {
	case reflect.String:
		return strings.TrimSpace(val.String()) == ""
	case reflect.Bool:
		return !val.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return val.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return val.Float() == 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return val.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return val.IsNil()
	}
	return false
}

// Error is a single failed rule.
type Error struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Errors collects failed rules.
type Errors []*Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Message)
	}
	return strings.Join(msgs, "; ")
}

// First returns the first error, or nil.
func (e Errors) First() *Error {
	if len(e) == 0 {
		return nil
	}
	return e[0]
}

// Field returns the first error for field, or nil.
func (e Errors) Field(field string) *Error {
	for _, err := range e {
		if err.Field == field {
			return err
		}
	}
	return nil
}

// Map returns field -> message, first message per field.
func (e Errors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, err := range e {
		if _, ok := m[err.Field]; !ok {
			m[err.Field] = err.Message
		}
	}
	return m
}
