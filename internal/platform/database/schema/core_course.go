package schema

// CoreCourseTable represents the 'core.course' table
type CoreCourseTable struct {
	Table       string
	ID          string
	Code        string
	Title       string
	Slug        string
	Description string
	FacultyID   string
	Semester    string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// CoreCourse is the schema definition for core.course
var CoreCourse = CoreCourseTable{
	Table:       "core.course",
	ID:          "id",
	Code:        "code",
	Title:       "title",
	Slug:        "slug",
	Description: "description",
	FacultyID:   "facultyid",
	Semester:    "semester",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

func (t CoreCourseTable) Columns() []string {
	return []string{t.ID, t.Code, t.Title, t.Slug, t.Description, t.FacultyID, t.Semester, t.CreatedAt, t.UpdatedAt, t.DeletedAt}
}
