// campus/accounts.go
package campus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/eventdesk/auth"
	"github.com/dalemusser/eventdesk/forms"
	"github.com/dalemusser/eventdesk/mailer"
	"github.com/dalemusser/eventdesk/metrics"
	"github.com/dalemusser/eventdesk/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Account holds the registration fields that sit beside the validated
// form: the password pair and the semester.
type Account struct {
	Password string `json:"password" validate:"required,min=6"`
	Confirm  string `json:"confirm_password" validate:"required,eqfield=Password"`
	Semester string `json:"semester" validate:"required,numeric,max=2"`
}

// RegisterStudent creates a student account. The registration form is
// checked first; its failure message wins over any account problem. Only
// then is c asked to confirm, and a declined confirmation stores nothing.
func (s *Service) RegisterStudent(ctx context.Context, reg forms.Registration, acct Account, c forms.Confirmer) (store.Student, error) {
	if res := s.forms.CheckRegistration(reg); !res.OK {
		metrics.FormSubmitted("registration", metrics.OutcomeRejected)
		return store.Student{}, invalid("registration", res.Message)
	}
	if err := s.check.Struct(acct); err != nil {
		metrics.FormSubmitted("registration", metrics.OutcomeRejected)
		return store.Student{}, fromValidate("registration", err)
	}
	if res := s.forms.ValidateRegistration(ctx, reg, c); !res.OK {
		metrics.FormSubmitted("registration", metrics.OutcomeUnconfirmed)
		return store.Student{}, ErrNotConfirmed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.Student{}, fmt.Errorf("hash password: %w", err)
	}

	reg = reg.Trimmed()
	st, err := s.store.CreateStudent(ctx, store.Student{
		Name:         reg.Name,
		RegNo:        reg.RegNo,
		Email:        reg.Email,
		Department:   reg.Department,
		Semester:     strings.TrimSpace(acct.Semester),
		PasswordHash: string(hash),
	})
	if errors.Is(err, store.ErrDuplicate) {
		metrics.FormSubmitted("registration", metrics.OutcomeRejected)
		return store.Student{}, ErrStudentExists
	}
	if err != nil {
		return store.Student{}, err
	}

	metrics.FormSubmitted("registration", metrics.OutcomeAccepted)
	s.logger.Info("student registered", zap.Int64("student_id", st.ID), zap.String("register_number", st.RegNo))
	s.send(mailer.Welcome(st.Email, st.Name, st.RegNo))
	return st, nil
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	Admin     bool      `json:"admin"`
	Name      string    `json:"name"`
}

// Login accepts a faculty email or a student register number. Faculty are
// tried first.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	var id auth.Identity
	f, err := s.store.FacultyByEmail(ctx, username)
	switch {
	case err == nil:
		if !passwordMatches(f.PasswordHash, password) {
			return Session{}, ErrInvalidCredentials
		}
		id = auth.Identity{ID: f.ID, Role: auth.RoleFaculty, Admin: f.IsAdmin, Name: f.Name}
	case errors.Is(err, store.ErrNotFound):
		st, err := s.store.StudentByRegNo(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		if err != nil {
			return Session{}, err
		}
		if !passwordMatches(st.PasswordHash, password) {
			return Session{}, ErrInvalidCredentials
		}
		id = auth.Identity{ID: st.ID, Role: auth.RoleStudent, Name: st.Name}
	default:
		return Session{}, err
	}

	tok, exp, err := s.tokens.Issue(id)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, ExpiresAt: exp, UserID: id.ID, Role: id.Role, Admin: id.Admin, Name: id.Name}, nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// FacultyInput is the admin form for adding a faculty member.
type FacultyInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"max=100"`
	Password   string `json:"password" validate:"required,min=6"`
	Admin      bool   `json:"is_admin"`
}

// CreateFaculty adds a faculty member. Admins only.
func (s *Service) CreateFaculty(ctx context.Context, actor Actor, in FacultyInput) (store.Faculty, error) {
	if !actor.isAdmin() {
		return store.Faculty{}, ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Department = strings.TrimSpace(in.Department)
	if err := s.check.Struct(in); err != nil {
		return store.Faculty{}, fromValidate("faculty", err)
	}
	f, err := s.createFaculty(ctx, in)
	if err == nil {
		s.logger.Info("faculty created", zap.Int64("faculty_id", f.ID), zap.Int64("by", actor.ID))
	}
	return f, err
}

// Faculty lists every faculty member, for choosing a coordinator. Admins
// only.
func (s *Service) Faculty(ctx context.Context, actor Actor) ([]store.Faculty, error) {
	if !actor.isAdmin() {
		return nil, ErrForbidden
	}
	return s.store.ListFaculty(ctx)
}

func (s *Service) createFaculty(ctx context.Context, in FacultyInput) (store.Faculty, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.Faculty{}, fmt.Errorf("hash password: %w", err)
	}
	f, err := s.store.CreateFaculty(ctx, store.Faculty{
		Name:         in.Name,
		Email:        in.Email,
		Department:   in.Department,
		PasswordHash: string(hash),
		IsAdmin:      in.Admin,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return store.Faculty{}, ErrFacultyExists
	}
	return f, err
}

// SeedAdmin makes sure an administrator exists so the desk can be used on
// a fresh database. It does nothing when email is empty or already taken.
func (s *Service) SeedAdmin(ctx context.Context, email, password, name string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if password == "" {
		return errors.New("campus: admin_password is required with admin_email")
	}
	if name == "" {
		name = "Administrator"
	}
	_, err := s.createFaculty(ctx, FacultyInput{Name: name, Email: email, Password: password, Admin: true})
	if errors.Is(err, ErrFacultyExists) {
		return nil
	}
	if err == nil {
		s.logger.Info("seeded administrator", zap.String("email", email))
	}
	return err
}
