package schema

// CoreAttendanceSessionTable represents the 'core.attendancesession' table
type CoreAttendanceSessionTable struct {
	Table     string
	ID        string
	CourseID  string
	StartsAt  string
	EndsAt    string
	Status    string
	CreatedAt string
}

// CoreAttendanceSession is the schema definition for core.attendancesession
var CoreAttendanceSession = CoreAttendanceSessionTable{
	Table:     "core.attendancesession",
	ID:        "id",
	CourseID:  "courseid",
	StartsAt:  "startsat",
	EndsAt:    "endsat",
	Status:    "status",
	CreatedAt: "createdat",
}

func (t CoreAttendanceSessionTable) Columns() []string {
	return []string{t.ID, t.CourseID, t.StartsAt, t.EndsAt, t.Status, t.CreatedAt}
}
