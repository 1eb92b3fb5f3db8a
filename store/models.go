// store/models.go
package store

import "time"

// Event statuses.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// Registration attendance and certificate values. An empty value means
// not yet marked.
const (
	AttendancePresent  = "Present"
	CertificatePending = "Pending"
)

// Roles stored with notifications.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

type Student struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	RegNo        string    `json:"register_number"`
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	Semester     string    `json:"semester"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Faculty struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Event.Date is an ISO yyyy-mm-dd string so it compares lexically.
type Event struct {
	ID            int64     `json:"id"`
	Name          string    `json:"event_name"`
	Date          string    `json:"event_date"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	CoordinatorID int64     `json:"coordinator_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type Registration struct {
	ID                int64     `json:"id"`
	StudentID         int64     `json:"student_id"`
	EventID           int64     `json:"event_id"`
	Token             string    `json:"token"`
	Attendance        string    `json:"attendance"`
	CertificateStatus string    `json:"certificate_status"`
	CreatedAt         time.Time `json:"created_at"`
}

// Attendee is a registration joined with its student, as exported.
type Attendee struct {
	Name              string `json:"name"`
	RegNo             string `json:"register_number"`
	Department        string `json:"department"`
	Semester          string `json:"semester"`
	Email             string `json:"email"`
	Attendance        string `json:"attendance"`
	CertificateStatus string `json:"certificate_status"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Contact is the minimum needed to mail or notify a student.
type Contact struct {
	ID    int64
	Name  string
	Email string
}
