// campus/events.go
package campus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/eventdesk/forms"
	"github.com/dalemusser/eventdesk/mailer"
	"github.com/dalemusser/eventdesk/metrics"
	"github.com/dalemusser/eventdesk/store"
	"go.uber.org/zap"
)

// EventExtras are the event fields beyond the validated form.
type EventExtras struct {
	Description   string `json:"description" validate:"max=2000"`
	CoordinatorID int64  `json:"coordinator_id" validate:"required"`
}

// CreateEvent stores a new Open event. Admins only. The coordinator and
// every student and other faculty member are notified, and each student
// is mailed an announcement.
func (s *Service) CreateEvent(ctx context.Context, actor Actor, ev forms.Event, extras EventExtras) (store.Event, error) {
	if !actor.isAdmin() {
		return store.Event{}, ErrForbidden
	}
	if res := s.forms.ValidateEvent(ev); !res.OK {
		metrics.FormSubmitted("event", metrics.OutcomeRejected)
		return store.Event{}, invalid("event", res.Message)
	}
	if err := s.check.Var("event_date", ev.EventDate, "isodate"); err != nil {
		metrics.FormSubmitted("event", metrics.OutcomeRejected)
		return store.Event{}, fromValidate("event", err)
	}
	extras.Description = strings.TrimSpace(extras.Description)
	if err := s.check.Struct(extras); err != nil {
		metrics.FormSubmitted("event", metrics.OutcomeRejected)
		return store.Event{}, fromValidate("event", err)
	}
	coord, err := s.store.FacultyByID(ctx, extras.CoordinatorID)
	if errors.Is(err, store.ErrNotFound) {
		metrics.FormSubmitted("event", metrics.OutcomeRejected)
		return store.Event{}, &ValidationError{
			Form:    "event",
			Message: "Coordinator not found.",
			Fields:  map[string]string{"coordinator_id": "Coordinator not found."},
		}
	}
	if err != nil {
		return store.Event{}, err
	}

	ev = ev.Trimmed()
	created, err := s.store.CreateEvent(ctx, store.Event{
		Name:          ev.EventName,
		Date:          ev.EventDate,
		Location:      ev.Location,
		Description:   extras.Description,
		CoordinatorID: coord.ID,
		Status:        store.StatusOpen,
	})
	if err != nil {
		return store.Event{}, err
	}
	metrics.FormSubmitted("event", metrics.OutcomeAccepted)
	s.logger.Info("event created",
		zap.Int64("event_id", created.ID),
		zap.String("event_date", created.Date),
		zap.Int64("coordinator_id", coord.ID))

	s.announce(ctx, created)
	return created, nil
}

func (s *Service) announce(ctx context.Context, ev store.Event) {
	s.notify(ctx, ev.CoordinatorID, store.RoleFaculty, fmt.Sprintf("Assigned Coordinator: %s.", ev.Name))

	students, err := s.store.StudentContacts(ctx)
	if err != nil {
		s.logger.Warn("announce: list students", zap.Error(err))
	}
	ids := make([]int64, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	s.notifyMany(ctx, ids, store.RoleStudent, fmt.Sprintf("New Event: %s on %s.", ev.Name, ev.Date))

	faculty, err := s.store.ListFaculty(ctx)
	if err != nil {
		s.logger.Warn("announce: list faculty", zap.Error(err))
	}
	ids = ids[:0]
	for _, f := range faculty {
		if f.ID != ev.CoordinatorID {
			ids = append(ids, f.ID)
		}
	}
	s.notifyMany(ctx, ids, store.RoleFaculty, fmt.Sprintf("Event Added: %s.", ev.Name))

	info := eventInfo(ev)
	for _, st := range students {
		s.send(mailer.EventAnnouncement(st.Email, info))
	}
}

func eventInfo(ev store.Event) mailer.EventInfo {
	return mailer.EventInfo{Name: ev.Name, Date: ev.Date, Location: ev.Location, Description: ev.Description}
}

// EventView is an event as listed, with whether registration has closed
// because the event is too close.
type EventView struct {
	store.Event
	DeadlinePassed bool `json:"deadline_passed"`
}

// EventPage is one page of the event listing.
type EventPage struct {
	Events     []EventView `json:"events"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}

func (p EventPage) HasPrev() bool { return p.Page > 1 }
func (p EventPage) HasNext() bool { return p.Page < p.TotalPages }
func (p EventPage) Prev() int     { return p.Page - 1 }
func (p EventPage) Next() int     { return p.Page + 1 }

// ListEvents returns page (1-based) of events, latest date first. Pages
// below 1 are treated as 1 and pages past the end as the last page.
func (s *Service) ListEvents(ctx context.Context, page int) (EventPage, error) {
	total, err := s.store.CountEvents(ctx)
	if err != nil {
		return EventPage{}, err
	}
	pages := (total + s.perPage - 1) / s.perPage
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	events, err := s.store.ListEvents(ctx, s.perPage, (page-1)*s.perPage)
	if err != nil {
		return EventPage{}, err
	}
	return EventPage{
		Events:     s.views(events),
		Page:       page,
		PerPage:    s.perPage,
		Total:      total,
		TotalPages: pages,
	}, nil
}

// UpcomingEvents lists events from today on, soonest first.
func (s *Service) UpcomingEvents(ctx context.Context) ([]EventView, error) {
	events, err := s.store.ListUpcoming(ctx, forms.Today(s.clock.Now()))
	if err != nil {
		return nil, err
	}
	return s.views(events), nil
}

func (s *Service) views(events []store.Event) []EventView {
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, EventView{Event: e, DeadlinePassed: s.daysUntil(e.Date) < s.leadDays})
	}
	return out
}

// SetEventStatus opens or closes registration. Admins only.
func (s *Service) SetEventStatus(ctx context.Context, actor Actor, eventID int64, status string) error {
	if !actor.isAdmin() {
		return ErrForbidden
	}
	if err := s.check.Var("status", status, "required,oneof=Open Closed"); err != nil {
		return fromValidate("status", err)
	}
	if err := s.store.SetEventStatus(ctx, eventID, status); err != nil {
		return err
	}
	s.logger.Info("event status changed", zap.Int64("event_id", eventID), zap.String("status", status))
	return nil
}

// DeleteEvent removes an event with its registrations. Admins only.
func (s *Service) DeleteEvent(ctx context.Context, actor Actor, eventID int64) error {
	if !actor.isAdmin() {
		return ErrForbidden
	}
	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		return err
	}
	s.logger.Info("event deleted", zap.Int64("event_id", eventID), zap.Int64("by", actor.ID))
	return nil
}

// Attendance returns the event and its attendees for export. Only the
// event's coordinator or an admin may see it.
func (s *Service) Attendance(ctx context.Context, actor Actor, eventID int64) (store.Event, []store.Attendee, error) {
	if !actor.isFaculty() {
		return store.Event{}, nil, ErrForbidden
	}
	ev, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return store.Event{}, nil, err
	}
	if ev.CoordinatorID != actor.ID && !actor.Admin {
		return store.Event{}, nil, ErrForbidden
	}
	people, err := s.store.Attendees(ctx, eventID)
	if err != nil {
		return store.Event{}, nil, err
	}
	return ev, people, nil
}
