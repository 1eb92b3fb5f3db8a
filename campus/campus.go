// campus/campus.go
// Package campus implements the event desk: student and faculty accounts,
// events, registrations, attendance and notifications. Every form that
// reaches it passes through the forms validators first.
package campus

import (
	"time"

	"github.com/dalemusser/eventdesk/auth"
	"github.com/dalemusser/eventdesk/forms"
	"github.com/dalemusser/eventdesk/mailer"
	"github.com/dalemusser/eventdesk/store"
	"github.com/dalemusser/eventdesk/validate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Defaults for the tunables the config exposes.
const (
	DefaultLeadDays      = 2
	DefaultEventsPerPage = 6
)

// Mailer queues outgoing mail. *mailer.Queue satisfies it.
type Mailer interface {
	Enqueue(msg mailer.Message) (string, error)
}

// Actor is the signed-in caller an operation runs for.
type Actor struct {
	ID    int64
	Role  string
	Admin bool
	Name  string
}

// ActorFrom converts token claims.
func ActorFrom(c *auth.Claims) Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{ID: c.UserID(), Role: c.Role, Admin: c.Admin, Name: c.Name}
}

func (a Actor) isStudent() bool { return a.Role == auth.RoleStudent && a.ID > 0 }
func (a Actor) isFaculty() bool { return a.Role == auth.RoleFaculty && a.ID > 0 }
func (a Actor) isAdmin() bool   { return a.isFaculty() && a.Admin }

// Service runs the event desk operations.
type Service struct {
	store   *store.Store
	mail    Mailer
	tokens  *auth.Issuer
	logger  *zap.Logger
	forms   *forms.Validator
	check   *validate.Validator
	clock   forms.Clock
	newCode func() string

	leadDays int
	perPage  int
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of "today" for both the form validators and
// the deadline rules.
func WithClock(c forms.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLeadDays sets how many days before an event registration and
// cancellation close.
func WithLeadDays(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.leadDays = n
		}
	}
}

// WithEventsPerPage sets the listing page size.
func WithEventsPerPage(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// New builds a Service. mail may be nil, in which case nothing is sent.
func New(st *store.Store, mail Mailer, tokens *auth.Issuer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:    st,
		mail:     mail,
		tokens:   tokens,
		logger:   logger,
		clock:    forms.SystemClock,
		check:    validate.New(),
		newCode:  uuid.NewString,
		leadDays: DefaultLeadDays,
		perPage:  DefaultEventsPerPage,
	}
	for _, o := range opts {
		o(s)
	}
	s.forms = forms.New(forms.WithClock(s.clock))
	return s
}

// Forms exposes the validator so handlers can run the checks on their own.
func (s *Service) Forms() *forms.Validator { return s.forms }

// LeadDays reports the registration lead time.
func (s *Service) LeadDays() int { return s.leadDays }

func (s *Service) today() time.Time {
	y, m, d := s.clock.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysUntil counts whole days from today to the ISO date. Unparseable
// dates count as already past.
func (s *Service) daysUntil(date string) int {
	t, err := time.Parse(forms.DateLayout, date)
	if err != nil {
		return -1
	}
	return int(t.Sub(s.today()).Hours() / 24)
}

func (s *Service) send(msg mailer.Message) {
	if s.mail == nil {
		return
	}
	if _, err := s.mail.Enqueue(msg); err != nil {
		s.logger.Warn("mail not queued", zap.String("subject", msg.Subject), zap.Error(err))
	}
}
