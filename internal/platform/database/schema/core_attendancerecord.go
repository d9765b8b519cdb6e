package schema

// CoreAttendanceRecordTable represents the 'core.attendancerecord' table
type CoreAttendanceRecordTable struct {
	Table     string
	ID        string
	SessionID string
	StudentID string
	Status    string
	Method    string
	MarkedAt  string
}

// CoreAttendanceRecord is the schema definition for core.attendancerecord
var CoreAttendanceRecord = CoreAttendanceRecordTable{
	Table:     "core.attendancerecord",
	ID:        "id",
	SessionID: "sessionid",
	StudentID: "studentid",
	Status:    "status",
	Method:    "method",
	MarkedAt:  "markedat",
}

func (t CoreAttendanceRecordTable) Columns() []string {
	return []string{t.ID, t.SessionID, t.StudentID, t.Status, t.Method, t.MarkedAt}
}
