package course

import "time"

// Course represents a taught class that students enroll in and attend.
type Course struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	FacultyID   string    `json:"faculty_id"`
	Semester    string    `json:"semester"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`

	// EnrolledCount is populated by list queries, not stored.
	EnrolledCount int `json:"enrolled_count,omitempty"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	CourseID   string    `json:"course_id"`
	StudentID  string    `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
