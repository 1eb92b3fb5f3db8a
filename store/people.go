// store/people.go
package store

import (
	"context"
	"fmt"
	"time"
)

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

const studentCols = `id, name, register_number, email, department, semester, password_hash, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (Student, error) {
	var st Student
	err := row.Scan(&st.ID, &st.Name, &st.RegNo, &st.Email, &st.Department, &st.Semester, &st.PasswordHash, &st.CreatedAt)
	return st, err
}

// CreateStudent inserts st and returns it with ID and CreatedAt set. A
// register number already on file yields ErrDuplicate.
func (s *Store) CreateStudent(ctx context.Context, st Student) (Student, error) {
	st.CreatedAt = now()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO students (name, register_number, email, department, semester, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.Name, st.RegNo, st.Email, st.Department, st.Semester, st.PasswordHash, st.CreatedAt)
	if err != nil {
		return Student{}, fmt.Errorf("create student: %w", err)
	}
	st.ID = id
	return st, nil
}

func (s *Store) StudentByRegNo(ctx context.Context, regNo string) (Student, error) {
	st, err := scanStudent(s.queryRow(ctx, s.db, `SELECT `+studentCols+` FROM students WHERE register_number = ?`, regNo))
	return st, s.translate(err)
}

func (s *Store) StudentByID(ctx context.Context, id int64) (Student, error) {
	st, err := scanStudent(s.queryRow(ctx, s.db, `SELECT `+studentCols+` FROM students WHERE id = ?`, id))
	return st, s.translate(err)
}

// StudentContacts lists every student for announcements.
func (s *Store) StudentContacts(ctx context.Context) ([]Contact, error) {
	rows, err := s.query(ctx, s.db, `SELECT id, name, email FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const facultyCols = `id, name, email, department, password_hash, is_admin, created_at`

func scanFaculty(row scanner) (Faculty, error) {
	var f Faculty
	err := row.Scan(&f.ID, &f.Name, &f.Email, &f.Department, &f.PasswordHash, &f.IsAdmin, &f.CreatedAt)
	return f, err
}

// CreateFaculty inserts f. An email already on file yields ErrDuplicate.
func (s *Store) CreateFaculty(ctx context.Context, f Faculty) (Faculty, error) {
	f.CreatedAt = now()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO faculty (name, email, department, password_hash, is_admin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.Name, f.Email, f.Department, f.PasswordHash, f.IsAdmin, f.CreatedAt)
	if err != nil {
		return Faculty{}, fmt.Errorf("create faculty: %w", err)
	}
	f.ID = id
	return f, nil
}

func (s *Store) FacultyByEmail(ctx context.Context, email string) (Faculty, error) {
	f, err := scanFaculty(s.queryRow(ctx, s.db, `SELECT `+facultyCols+` FROM faculty WHERE email = ?`, email))
	return f, s.translate(err)
}

func (s *Store) FacultyByID(ctx context.Context, id int64) (Faculty, error) {
	f, err := scanFaculty(s.queryRow(ctx, s.db, `SELECT `+facultyCols+` FROM faculty WHERE id = ?`, id))
	return f, s.translate(err)
}

// ListFaculty returns all faculty ordered by name.
func (s *Store) ListFaculty(ctx context.Context) ([]Faculty, error) {
	return s.listFaculty(ctx, `SELECT `+facultyCols+` FROM faculty ORDER BY name, id`)
}

// Admins returns the faculty flagged as administrators.
func (s *Store) Admins(ctx context.Context) ([]Faculty, error) {
	return s.listFaculty(ctx, `SELECT `+facultyCols+` FROM faculty WHERE is_admin = ? ORDER BY id`, true)
}

func (s *Store) listFaculty(ctx context.Context, query string, args ...any) ([]Faculty, error) {
	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Faculty
	for rows.Next() {
		f, err := scanFaculty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
