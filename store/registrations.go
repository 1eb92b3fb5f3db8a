// store/registrations.go
package store

import (
	"context"
	"errors"
	"fmt"
)

const registrationCols = `id, student_id, event_id, token, attendance, certificate_status, created_at`

func scanRegistration(row scanner) (Registration, error) {
	var r Registration
	err := row.Scan(&r.ID, &r.StudentID, &r.EventID, &r.Token, &r.Attendance, &r.CertificateStatus, &r.CreatedAt)
	return r, err
}

// CreateRegistration inserts r. A second registration of the same student
// for the same event yields ErrDuplicate.
func (s *Store) CreateRegistration(ctx context.Context, r Registration) (Registration, error) {
	r.CreatedAt = now()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO registrations (student_id, event_id, token, attendance, certificate_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.StudentID, r.EventID, r.Token, r.Attendance, r.CertificateStatus, r.CreatedAt)
	if err != nil {
		return Registration{}, fmt.Errorf("create registration: %w", err)
	}
	r.ID = id
	return r, nil
}

func (s *Store) RegistrationByID(ctx context.Context, id int64) (Registration, error) {
	r, err := scanRegistration(s.queryRow(ctx, s.db, `SELECT `+registrationCols+` FROM registrations WHERE id = ?`, id))
	return r, s.translate(err)
}

func (s *Store) RegistrationByToken(ctx context.Context, token string) (Registration, error) {
	r, err := scanRegistration(s.queryRow(ctx, s.db, `SELECT `+registrationCols+` FROM registrations WHERE token = ?`, token))
	return r, s.translate(err)
}

// RegistrationExists reports whether studentID is registered for eventID.
func (s *Store) RegistrationExists(ctx context.Context, studentID, eventID int64) (bool, error) {
	var id int64
	err := s.queryRow(ctx, s.db,
		`SELECT id FROM registrations WHERE student_id = ? AND event_id = ?`, studentID, eventID).Scan(&id)
	if err = s.translate(err); errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// StudentRegistrations lists a student's registrations, newest first.
func (s *Store) StudentRegistrations(ctx context.Context, studentID int64) ([]Registration, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+registrationCols+` FROM registrations WHERE student_id = ? ORDER BY id DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Registration{}
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DeleteRegistration(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM registrations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// MarkPresent records attendance for the registration holding token and
// moves its certificate to Pending. ErrNotFound is returned when no such
// registration exists or it is already marked Present.
func (s *Store) MarkPresent(ctx context.Context, token string) error {
	res, err := s.exec(ctx, s.db,
		`UPDATE registrations SET attendance = ?, certificate_status = ? WHERE token = ? AND attendance <> ?`,
		AttendancePresent, CertificatePending, token, AttendancePresent)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// Attendees lists everyone registered for eventID, by name.
func (s *Store) Attendees(ctx context.Context, eventID int64) ([]Attendee, error) {
	rows, err := s.query(ctx, s.db, `
		SELECT s.name, s.register_number, s.department, s.semester, s.email, r.attendance, r.certificate_status
		FROM registrations r
		JOIN students s ON s.id = r.student_id
		WHERE r.event_id = ?
		ORDER BY s.name, s.id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attendee{}
	for rows.Next() {
		var a Attendee
		if err := rows.Scan(&a.Name, &a.RegNo, &a.Department, &a.Semester, &a.Email, &a.Attendance, &a.CertificateStatus); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
