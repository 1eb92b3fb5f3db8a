// forms/forms.go
// Package forms holds the submission checks for the two desk forms: student
// registration and event creation.
//
// Each check reads trimmed values, stops at the first problem and reports it
// as a user-facing message. A failed check is a result, not an error: callers
// show Result.Message to the person who submitted the form.
//
//	v := forms.New()
//	res := v.ValidateRegistration(ctx, forms.RegistrationFrom(r.PostForm), confirmer)
//	if !res.OK {
//	    // show res.Message
//	}
package forms

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"
)

// Field names used by the registration and event pages.
const (
	FieldName       = "name"
	FieldRegNo      = "reg_no"
	FieldEmail      = "email"
	FieldDepartment = "department"

	FieldEventName = "event_name"
	FieldEventDate = "event_date"
	FieldLocation  = "location"
)

// Messages shown to the submitter.
const (
	MsgAllFieldsRequired   = "All fields are required."
	MsgRegNoTooShort       = "Register number must be at least 5 characters."
	MsgInvalidEmail        = "Please enter a valid email address."
	MsgEventFieldsRequired = "Please fill all required fields."
	MsgEventDateInPast     = "Event date cannot be in the past."

	PromptSubmitRegistration = "Do you want to submit the registration?"
)

// MinRegNoLength is the shortest accepted register number, in characters.
const MinRegNoLength = 5

// DateLayout is the ISO calendar date layout event dates are written in.
const DateLayout = "2006-01-02"

// emailPattern accepts local@domain.tld with no whitespace and a single '@'.
// The class also excludes Unicode separators and the BOM so it rejects the
// same characters a browser's \s would.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// Values is the read side of a submitted form. url.Values satisfies it.
type Values interface {
	Get(key string) string
}

// Registration is a student registration submission.
type Registration struct {
	Name       string `json:"name"`
	RegNo      string `json:"reg_no"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r Registration) Trimmed() Registration {
	return Registration{
		Name:       trim(r.Name),
		RegNo:      trim(r.RegNo),
		Email:      trim(r.Email),
		Department: trim(r.Department),
	}
}

// trim strips what a browser's String.prototype.trim strips: Unicode
// white space plus the byte order mark.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// codeUnits is the length a browser reports for s, in UTF-16 code units.
func codeUnits(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// Event is an event creation submission.
type Event struct {
	EventName string `json:"event_name"`
	EventDate string `json:"event_date"`
	Location  string `json:"location"`
}

// Trimmed returns a copy with the name and location trimmed. The date is
// kept as submitted; date inputs never carry padding.
func (e Event) Trimmed() Event {
	return Event{
		EventName: trim(e.EventName),
		EventDate: e.EventDate,
		Location:  trim(e.Location),
	}
}

// RegistrationFrom reads a Registration out of submitted form values.
func RegistrationFrom(v Values) Registration {
	return Registration{
		Name:       v.Get(FieldName),
		RegNo:      v.Get(FieldRegNo),
		Email:      v.Get(FieldEmail),
		Department: v.Get(FieldDepartment),
	}
}

// EventFrom reads an Event out of submitted form values.
func EventFrom(v Values) Event {
	return Event{
		EventName: v.Get(FieldEventName),
		EventDate: v.Get(FieldEventDate),
		Location:  v.Get(FieldLocation),
	}
}

// Result is the outcome of a form check.
type Result struct {
	// OK reports whether the form may be submitted.
	OK bool `json:"ok"`

	// Message is the problem to show when OK is false and the submitter
	// did not simply decline the confirmation.
	Message string `json:"message,omitempty"`

	// Prompt is the confirmation question asked before accepting.
	Prompt string `json:"prompt,omitempty"`

	// Declined is true when every check passed but the submitter answered
	// no to Prompt.
	Declined bool `json:"declined,omitempty"`
}

func fail(msg string) Result {
	return Result{Message: msg}
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Confirmer asks the submitter a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Answer is a Confirmer with a fixed reply, used when the answer is already
// known (a posted confirm field, a JSON flag).
type Answer bool

// Confirm implements Confirmer.
func (a Answer) Confirm(context.Context, string) bool { return bool(a) }

// Validator runs the form checks.
type Validator struct {
	clock Clock
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the clock used to decide what "today" is.
func WithClock(c Clock) Option {
	return func(v *Validator) {
		if c != nil {
			v.clock = c
		}
	}
}

// New creates a Validator using the system clock unless overridden.
func New(opts ...Option) *Validator {
	v := &Validator{clock: SystemClock}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// CheckRegistration runs the field and format checks of the registration form
// without asking for confirmation. On success Result.Prompt carries the
// question that must still be answered.
func (v *Validator) CheckRegistration(r Registration) Result {
	r = r.Trimmed()

	if r.Name == "" || r.RegNo == "" || r.Email == "" || r.Department == "" {
		return fail(MsgAllFieldsRequired)
	}
	if codeUnits(r.RegNo) < MinRegNoLength {
		return fail(MsgRegNoTooShort)
	}
	if !ValidEmail(r.Email) {
		return fail(MsgInvalidEmail)
	}
	return Result{OK: true, Prompt: PromptSubmitRegistration}
}

// ValidateRegistration runs CheckRegistration and, when it passes, asks c to
// confirm. The result is OK only if the submitter agrees.
func (v *Validator) ValidateRegistration(ctx context.Context, r Registration, c Confirmer) Result {
	res := v.CheckRegistration(r)
	if !res.OK {
		return res
	}
	if c == nil || !c.Confirm(ctx, res.Prompt) {
		return Result{Prompt: res.Prompt, Declined: true}
	}
	return res
}

// ValidateEvent runs the event form checks. Event dates are compared as ISO
// strings against today's UTC date, so today and later are accepted.
func (v *Validator) ValidateEvent(e Event) Result {
	e = e.Trimmed()

	if e.EventName == "" || e.EventDate == "" || e.Location == "" {
		return fail(MsgEventFieldsRequired)
	}
	if e.EventDate < Today(v.clock.Now()) {
		return fail(MsgEventDateInPast)
	}
	return Result{OK: true}
}

// Today formats t as the ISO date of its UTC instant.
func Today(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
