// campus/errors.go
package campus

import (
	"errors"
	"fmt"

	"github.com/dalemusser/eventdesk/store"
	"github.com/dalemusser/eventdesk/validate"
)

var (
	ErrRegistrationClosed = errors.New("campus: registration closed")
	ErrDeadlinePassed     = errors.New("campus: registration deadline passed")
	ErrAlreadyRegistered  = errors.New("campus: already registered")
	ErrCancelTooLate      = errors.New("campus: too late to cancel")
	ErrAlreadyAttended    = errors.New("campus: attendance already marked")
	ErrInvalidCredentials = errors.New("campus: invalid credentials")
	ErrForbidden          = errors.New("campus: forbidden")
	ErrNotConfirmed       = errors.New("campus: submission not confirmed")
	ErrStudentExists      = errors.New("campus: student already registered")
	ErrFacultyExists      = errors.New("campus: faculty email already registered")
)

// ValidationError reports input a person has to correct. Message is the
// text to show; Fields maps field names to messages when more than one
// field is involved.
type ValidationError struct {
	Form    string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(form, msg string) *ValidationError {
	return &ValidationError{Form: form, Message: msg}
}

// fromValidate converts tag validation failures. err must be a
// validate.Errors or nil.
func fromValidate(form string, err error) error {
	var errs validate.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	return &ValidationError{Form: form, Message: errs.First().Message, Fields: errs.Map()}
}

// Message is the sentence shown to a person for err. Unknown errors get a
// generic apology so internals never leak.
func Message(err error, leadDays int) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrRegistrationClosed):
		return "Registration is closed for this event."
	case errors.Is(err, ErrDeadlinePassed):
		return fmt.Sprintf("Registration deadline has passed (must register %d days in advance).", leadDays)
	case errors.Is(err, ErrAlreadyRegistered):
		return "You are already registered for this event."
	case errors.Is(err, ErrCancelTooLate):
		return fmt.Sprintf("Cannot cancel registration. Cancellation is only allowed %d days before the event.", leadDays)
	case errors.Is(err, ErrAlreadyAttended):
		return "Attendance has already been marked for this registration."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, ErrForbidden):
		return "You do not have access to this resource."
	case errors.Is(err, ErrNotConfirmed):
		return "Registration was not submitted."
	case errors.Is(err, ErrStudentExists):
		return "Student already registered (Check Reg No)"
	case errors.Is(err, ErrFacultyExists):
		return "Faculty email already registered"
	case errors.Is(err, store.ErrNotFound):
		return "Not found."
	}
	return "Something went wrong. Please try again."
}
