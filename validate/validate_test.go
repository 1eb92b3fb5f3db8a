package validate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Password string `json:"password" validate:"required,min=6"`
	Confirm  string `json:"confirm_password" validate:"required,eqfield=Password"`
	Semester int    `json:"semester" validate:"between=1:8"`
	Status   string `json:"status" validate:"omitempty,oneof=Open Closed"`
	Date     string `json:"event_date" validate:"omitempty,isodate"`
	Contact  string `json:"contact" validate:"omitempty,email"`
	internal string `validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	a := account{Password: "secret1", Confirm: "secret1", Semester: 3, Status: "Open", Date: "2026-10-19", Contact: "a@b.com"}
	assert.NoError(t, New().Struct(&a))
}

func TestStruct_Errors(t *testing.T) {
	a := account{Password: "abc", Confirm: "abd", Semester: 9, Status: "Paused", Date: "19/10/2026", Contact: "nope"}
	err := New().Struct(a)
	require.Error(t, err)

	var errs Errors
	require.True(t, errors.As(err, &errs))

	m := errs.Map()
	assert.Equal(t, "Password must be at least 6 characters.", m["password"])
	assert.Equal(t, "Confirm password does not match.", m["confirm_password"])
	assert.Equal(t, "Semester must be between 1 and 8.", m["semester"])
	assert.Equal(t, "Status must be one of: Open, Closed.", m["status"])
	assert.Equal(t, "Event date must be a date in YYYY-MM-DD form.", m["event_date"])
	assert.Equal(t, "Contact must be a valid email address.", m["contact"])
	assert.Len(t, errs, 6)
}

func TestStruct_RequiredIsReportedOncePerField(t *testing.T) {
	err := New().Struct(account{Semester: 1})
	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "Password is required.", errs.Field("password").Message)
	assert.Equal(t, "required", errs.Field("confirm_password").Rule)
	assert.Len(t, errs, 2)
}

func TestStopOnFirst(t *testing.T) {
	err := New(WithStopOnFirstError()).Struct(account{})
	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 1)
	assert.Equal(t, "password", errs.First().Field)
}

func TestStruct_NotAStruct(t *testing.T) {
	assert.Error(t, New().Struct("x"))
}

func TestVar(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("reg_no", "R1234", "required,min=5"))
	err := v.Var("reg_no", "R1", "required,min=5")
	require.Error(t, err)
	assert.Equal(t, "Reg no must be at least 5 characters.", err.Error())
}

func TestRegisterRule(t *testing.T) {
	v := New()
	v.RegisterRule("upper", func(value any, _ string, _ reflect.Value) string {
		if s, _ := value.(string); s != "" && s[0] >= 'a' && s[0] <= 'z' {
			return "upper"
		}
		return ""
	}, "{field} must start with a capital letter.")

	err := v.Var("department", "cs", "upper")
	require.Error(t, err)
	assert.Equal(t, "Department must start with a capital letter.", err.Error())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Register number", Label("register_number"))
	assert.Equal(t, "Name", Label("name"))
	assert.Equal(t, "Event name", Label("EVENT_NAME"))
}

func TestSimpleEmailValid(t *testing.T) {
	assert.True(t, SimpleEmailValid("a@b.com"))
	assert.False(t, SimpleEmailValid("a@b"))
	assert.False(t, SimpleEmailValid("@b.com"))
	assert.False(t, SimpleEmailValid("a@@b.com"))
}
