// export/attendance.go
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dalemusser/eventdesk/store"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet in an attendance workbook.
const SheetName = "Attendance Sheet"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headers are the column titles, in order.
var Headers = []string{
	"Name",
	"Register Number",
	"Department",
	"Semester",
	"Email",
	"Attendance Status",
	"Certificate Status",
}

// Blank cells in the attendance and certificate columns read as these.
const (
	DefaultAttendance  = "Absent"
	DefaultCertificate = "Not Issued"
)

// Row converts an attendee to its sheet row.
func Row(a store.Attendee) []string {
	att := a.Attendance
	if att == "" {
		att = DefaultAttendance
	}
	cert := a.CertificateStatus
	if cert == "" {
		cert = DefaultCertificate
	}
	return []string{a.Name, a.RegNo, a.Department, a.Semester, a.Email, att, cert}
}

// Attendance writes the workbook for attendees to w. Each column is as wide
// as its longest value plus two.
func Attendance(w io.Writer, attendees []store.Attendee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, len(Headers))
	rows := make([][]string, 0, len(attendees)+1)
	rows = append(rows, Headers)
	for _, a := range attendees {
		rows = append(rows, Row(a))
	}

	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
			if n := utf8.RuneCountInString(v); n > widths[j] {
				widths[j] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return err
	}

	for i, n := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, float64(n+2)); err != nil {
			return fmt.Errorf("width %s: %w", col, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// AttendanceBytes is Attendance into memory.
func AttendanceBytes(attendees []store.Attendee) ([]byte, error) {
	var buf bytes.Buffer
	if err := Attendance(&buf, attendees); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the download name for an event's workbook. Characters that
// would break a Content-Disposition header become underscores.
func Filename(eventName string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\' || r == '/' || r == ';':
			return '_'
		case unicode.IsControl(r):
			return '_'
		}
		return r
	}, strings.TrimSpace(eventName))
	if clean == "" {
		clean = "event"
	}
	return "Attendance_" + clean + ".xlsx"
}
