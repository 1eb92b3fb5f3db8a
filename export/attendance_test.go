package export

import (
	"bytes"
	"testing"

	"github.com/dalemusser/eventdesk/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAttendanceWorkbook(t *testing.T) {
	people := []store.Attendee{
		{Name: "Asha", RegNo: "21CS001", Department: "CSE", Semester: "5", Email: "asha@campus.edu",
			Attendance: store.AttendancePresent, CertificateStatus: store.CertificatePending},
		{Name: "Ravi Kumar", RegNo: "21CS002", Department: "CSE", Semester: "5", Email: "ravi@campus.edu"},
	}

	data, err := AttendanceBytes(people)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"Asha", "21CS001", "CSE", "5", "asha@campus.edu", "Present", "Pending"}, rows[1])
	assert.Equal(t, []string{"Ravi Kumar", "21CS002", "CSE", "5", "ravi@campus.edu", "Absent", "Not Issued"}, rows[2])

	w, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Ravi Kumar")+2), w)

	w, err = f.GetColWidth(SheetName, "F")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Attendance Status")+2), w)
}

func TestAttendanceWorkbook_Empty(t *testing.T) {
	data, err := AttendanceBytes(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Headers, rows[0])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Attendance_Tech Fest.xlsx", Filename("Tech Fest"))
	assert.Equal(t, "Attendance_a_b_c.xlsx", Filename(`a"b/c`))
	assert.Equal(t, "Attendance_event.xlsx", Filename("  "))
}
