// campus/registrations.go
package campus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/eventdesk/mailer"
	"github.com/dalemusser/eventdesk/store"
	"go.uber.org/zap"
)

// RegisterForEvent signs a student up. The event must be Open and at
// least the lead time away. The student is mailed their attendance code.
func (s *Service) RegisterForEvent(ctx context.Context, actor Actor, eventID int64) (store.Registration, error) {
	if !actor.isStudent() {
		return store.Registration{}, ErrForbidden
	}
	ev, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return store.Registration{}, fmt.Errorf("event %d: %w", eventID, err)
	}
	if ev.Status == store.StatusClosed {
		return store.Registration{}, ErrRegistrationClosed
	}
	if s.daysUntil(ev.Date) < s.leadDays {
		return store.Registration{}, ErrDeadlinePassed
	}
	exists, err := s.store.RegistrationExists(ctx, actor.ID, eventID)
	if err != nil {
		return store.Registration{}, err
	}
	if exists {
		return store.Registration{}, ErrAlreadyRegistered
	}
	st, err := s.store.StudentByID(ctx, actor.ID)
	if err != nil {
		return store.Registration{}, fmt.Errorf("student %d: %w", actor.ID, err)
	}

	reg, err := s.store.CreateRegistration(ctx, store.Registration{
		StudentID: st.ID,
		EventID:   ev.ID,
		Token:     s.newCode(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return store.Registration{}, ErrAlreadyRegistered
	}
	if err != nil {
		return store.Registration{}, err
	}
	s.logger.Info("student registered for event",
		zap.Int64("registration_id", reg.ID),
		zap.Int64("event_id", ev.ID),
		zap.Int64("student_id", st.ID))

	s.send(mailer.RegistrationConfirmed(st.Email, st.Name, eventInfo(ev), reg.Token))
	s.notify(ctx, st.ID, store.RoleStudent, fmt.Sprintf("Registered: %s.", ev.Name))
	s.notify(ctx, ev.CoordinatorID, store.RoleFaculty, fmt.Sprintf("Reg: %s - %s.", st.Name, ev.Name))
	s.notifyAdmins(ctx, fmt.Sprintf("Reg: %s - %s.", st.Name, ev.Name))
	return reg, nil
}

// CancelRegistration withdraws a student's registration. Someone else's
// registration looks the same as a missing one.
func (s *Service) CancelRegistration(ctx context.Context, actor Actor, regID int64) error {
	if !actor.isStudent() {
		return ErrForbidden
	}
	reg, err := s.store.RegistrationByID(ctx, regID)
	if err != nil {
		return err
	}
	if reg.StudentID != actor.ID {
		return store.ErrNotFound
	}
	if reg.Attendance == store.AttendancePresent {
		return ErrAlreadyAttended
	}
	ev, err := s.store.EventByID(ctx, reg.EventID)
	if err != nil {
		return err
	}
	if s.daysUntil(ev.Date) < s.leadDays {
		return ErrCancelTooLate
	}
	if err := s.store.DeleteRegistration(ctx, regID); err != nil {
		return err
	}
	s.logger.Info("registration cancelled", zap.Int64("registration_id", regID), zap.Int64("student_id", actor.ID))
	return nil
}

// RegistrationView is a student's registration with its event.
type RegistrationView struct {
	store.Registration
	Event     store.Event `json:"event"`
	CanCancel bool        `json:"can_cancel"`
}

// MyRegistrations lists the caller's registrations, newest first.
func (s *Service) MyRegistrations(ctx context.Context, actor Actor) ([]RegistrationView, error) {
	if !actor.isStudent() {
		return nil, ErrForbidden
	}
	regs, err := s.store.StudentRegistrations(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := make([]RegistrationView, 0, len(regs))
	for _, r := range regs {
		ev, err := s.store.EventByID(ctx, r.EventID)
		if err != nil {
			return nil, err
		}
		out = append(out, RegistrationView{
			Registration: r,
			Event:        ev,
			CanCancel:    r.Attendance != store.AttendancePresent && s.daysUntil(ev.Date) >= s.leadDays,
		})
	}
	return out, nil
}

// AttendanceMark describes a successful scan.
type AttendanceMark struct {
	RegistrationID int64  `json:"registration_id"`
	StudentName    string `json:"student_name"`
	EventName      string `json:"event_name"`
}

// MarkAttendance records a student as present from the code they were
// mailed, and moves their certificate to Pending. Faculty only.
func (s *Service) MarkAttendance(ctx context.Context, actor Actor, token string) (AttendanceMark, error) {
	if !actor.isFaculty() {
		return AttendanceMark{}, ErrForbidden
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return AttendanceMark{}, invalid("attendance", "No token provided")
	}
	reg, err := s.store.RegistrationByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return AttendanceMark{}, invalid("attendance", "Invalid attendance code")
	}
	if err != nil {
		return AttendanceMark{}, err
	}
	if reg.Attendance == store.AttendancePresent {
		return AttendanceMark{}, ErrAlreadyAttended
	}
	st, err := s.store.StudentByID(ctx, reg.StudentID)
	if err != nil {
		return AttendanceMark{}, err
	}
	ev, err := s.store.EventByID(ctx, reg.EventID)
	if err != nil {
		return AttendanceMark{}, err
	}
	// A concurrent scan may have won since the read above.
	if err := s.store.MarkPresent(ctx, token); errors.Is(err, store.ErrNotFound) {
		return AttendanceMark{}, ErrAlreadyAttended
	} else if err != nil {
		return AttendanceMark{}, err
	}
	s.logger.Info("attendance marked",
		zap.Int64("registration_id", reg.ID),
		zap.Int64("event_id", ev.ID),
		zap.Int64("marked_by", actor.ID))

	s.notify(ctx, st.ID, store.RoleStudent, fmt.Sprintf("Attendance marked: %s.", ev.Name))
	s.notifyAdmins(ctx, fmt.Sprintf("Certificate Pending Approval: %s - %s.", st.Name, ev.Name))
	return AttendanceMark{RegistrationID: reg.ID, StudentName: st.Name, EventName: ev.Name}, nil
}
