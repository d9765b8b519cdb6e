package attendance

import "time"

// SessionStatus is the lifecycle state of an attendance-taking window.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// RecordStatus is a student's standing for one session.
type RecordStatus string

const (
	StatusPresent RecordStatus = "present"
	StatusLate    RecordStatus = "late"
	StatusAbsent  RecordStatus = "absent"
)

// Session is a window of time during which attendance may be marked for a
// course meeting.
type Session struct {
	ID        string        `json:"id"`
	CourseID  string        `json:"course_id"`
	StartsAt  time.Time     `json:"starts_at"`
	EndsAt    time.Time     `json:"ends_at"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"-"`
}

// Record is one student's mark for one session.
type Record struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	StudentID string       `json:"student_id"`
	Status    RecordStatus `json:"status"`
	Method    string       `json:"method"`
	MarkedAt  time.Time    `json:"marked_at"`
}

// Summary aggregates a student's standing across a course.
type Summary struct {
	StudentID string `json:"student_id"`
	Present   int    `json:"present"`
	Late      int    `json:"late"`
	Absent    int    `json:"absent"`
	Total     int    `json:"total"`
}
