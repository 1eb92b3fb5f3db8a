package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func seedFaculty(t *testing.T, s *Store, email string, admin bool) Faculty {
	t.Helper()
	f, err := s.CreateFaculty(context.Background(), Faculty{
		Name: "Dr. " + email, Email: email, Department: "CSE", PasswordHash: "x", IsAdmin: admin,
	})
	require.NoError(t, err)
	return f
}

func seedStudent(t *testing.T, s *Store, regNo string) Student {
	t.Helper()
	st, err := s.CreateStudent(context.Background(), Student{
		Name: "Student " + regNo, RegNo: regNo, Email: regNo + "@campus.edu", Department: "ECE", Semester: "5", PasswordHash: "x",
	})
	require.NoError(t, err)
	return st
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{"sqlite3": SQLite, "": SQLite, "MySQL": MySQL, "pgx": Postgres, "postgresql": Postgres} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}

func TestRebindNumbered(t *testing.T) {
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", rebindNumbered("SELECT a FROM t WHERE x = ? AND y = ?"))
	assert.Equal(t, "SELECT 1", rebindNumbered("SELECT 1"))
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureSchema(context.Background()))
}

func TestStudents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	st := seedStudent(t, s, "21CS001")
	assert.NotZero(t, st.ID)

	got, err := s.StudentByRegNo(ctx, "21CS001")
	require.NoError(t, err)
	assert.Equal(t, st.Email, got.Email)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.CreateStudent(ctx, Student{Name: "Dup", RegNo: "21CS001", Email: "d@x.io", Department: "ECE", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.StudentByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	seedStudent(t, s, "21CS002")
	contacts, err := s.StudentContacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestFaculty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	admin := seedFaculty(t, s, "admin@campus.edu", true)
	seedFaculty(t, s, "coord@campus.edu", false)

	_, err := s.CreateFaculty(ctx, Faculty{Name: "Again", Email: "admin@campus.edu", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := s.FacultyByEmail(ctx, "admin@campus.edu")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	admins, err := s.Admins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, admin.ID, admins[0].ID)

	all, err := s.ListFaculty(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	coord := seedFaculty(t, s, "coord@campus.edu", false)

	for _, d := range []string{"2026-10-01", "2026-12-01", "2026-11-01"} {
		_, err := s.CreateEvent(ctx, Event{Name: "Event " + d, Date: d, Location: "Hall A", CoordinatorID: coord.ID})
		require.NoError(t, err)
	}

	n, err := s.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := s.ListEvents(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2026-12-01", page[0].Date)
	assert.Equal(t, "2026-11-01", page[1].Date)
	assert.Equal(t, StatusOpen, page[0].Status)

	up, err := s.ListUpcoming(ctx, "2026-10-19")
	require.NoError(t, err)
	require.Len(t, up, 2)
	assert.Equal(t, "2026-11-01", up[0].Date)

	require.NoError(t, s.SetEventStatus(ctx, page[0].ID, StatusClosed))
	require.NoError(t, s.SetEventStatus(ctx, page[0].ID, StatusClosed))
	e, err := s.EventByID(ctx, page[0].ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, e.Status)

	assert.ErrorIs(t, s.SetEventStatus(ctx, 999, StatusOpen), ErrNotFound)
}

func TestRegistrations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	coord := seedFaculty(t, s, "coord@campus.edu", false)
	st := seedStudent(t, s, "21CS001")
	ev, err := s.CreateEvent(ctx, Event{Name: "Hackathon", Date: "2026-11-01", Location: "Lab 3", CoordinatorID: coord.ID})
	require.NoError(t, err)

	reg, err := s.CreateRegistration(ctx, Registration{StudentID: st.ID, EventID: ev.ID, Token: "tok-1"})
	require.NoError(t, err)

	exists, err := s.RegistrationExists(ctx, st.ID, ev.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.CreateRegistration(ctx, Registration{StudentID: st.ID, EventID: ev.ID, Token: "tok-2"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, s.MarkPresent(ctx, "tok-1"))
	got, err := s.RegistrationByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, AttendancePresent, got.Attendance)
	assert.Equal(t, CertificatePending, got.CertificateStatus)

	assert.ErrorIs(t, s.MarkPresent(ctx, "nope"), ErrNotFound)
	// Only the first mark takes effect.
	assert.ErrorIs(t, s.MarkPresent(ctx, "tok-1"), ErrNotFound)

	att, err := s.Attendees(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, att, 1)
	assert.Equal(t, "21CS001", att[0].RegNo)

	mine, err := s.StudentRegistrations(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, s.DeleteRegistration(ctx, reg.ID))
	_, err = s.RegistrationByID(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEventRemovesRegistrations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	coord := seedFaculty(t, s, "coord@campus.edu", false)
	st := seedStudent(t, s, "21CS001")
	ev, err := s.CreateEvent(ctx, Event{Name: "Expo", Date: "2026-11-01", Location: "Ground", CoordinatorID: coord.ID})
	require.NoError(t, err)
	reg, err := s.CreateRegistration(ctx, Registration{StudentID: st.ID, EventID: ev.ID, Token: "tok"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteEvent(ctx, ev.ID))
	_, err = s.RegistrationByID(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteEvent(ctx, ev.ID), ErrNotFound)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 25; i++ {
		require.NoError(t, s.AddNotification(ctx, 1, RoleStudent, "hello"))
	}
	require.NoError(t, s.AddNotifications(ctx, []int64{1, 2}, RoleFaculty, "faculty note"))

	first, err := s.RecentNotifications(ctx, 1, RoleStudent, 0)
	require.NoError(t, err)
	assert.Len(t, first, NotificationLimit)
	assert.False(t, first[0].Read)

	again, err := s.RecentNotifications(ctx, 1, RoleStudent, 0)
	require.NoError(t, err)
	assert.True(t, again[0].Read)

	fac, err := s.RecentNotifications(ctx, 1, RoleFaculty, 0)
	require.NoError(t, err)
	require.Len(t, fac, 1)
	assert.False(t, fac[0].Read, "roles are kept apart")
}
