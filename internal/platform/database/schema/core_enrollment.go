package schema

// CoreEnrollmentTable represents the 'core.enrollment' table
type CoreEnrollmentTable struct {
	Table      string
	CourseID   string
	StudentID  string
	EnrolledAt string
}

// CoreEnrollment is the schema definition for core.enrollment
var CoreEnrollment = CoreEnrollmentTable{
	Table:      "core.enrollment",
	CourseID:   "courseid",
	StudentID:  "studentid",
	EnrolledAt: "enrolledat",
}

func (t CoreEnrollmentTable) Columns() []string {
	return []string{t.CourseID, t.StudentID, t.EnrolledAt}
}
