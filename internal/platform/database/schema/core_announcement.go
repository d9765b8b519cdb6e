package schema

// CoreAnnouncementTable represents the 'core.announcement' table
type CoreAnnouncementTable struct {
	Table     string
	ID        string
	CourseID  string
	AuthorID  string
	Title     string
	Body      string
	CreatedAt string
	UpdatedAt string
	DeletedAt string
}

// CoreAnnouncement is the schema definition for core.announcement
var CoreAnnouncement = CoreAnnouncementTable{
	Table:     "core.announcement",
	ID:        "id",
	CourseID:  "courseid",
	AuthorID:  "authorid",
	Title:     "title",
	Body:      "body",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	DeletedAt: "deletedat",
}

func (t CoreAnnouncementTable) Columns() []string {
	return []string{t.ID, t.CourseID, t.AuthorID, t.Title, t.Body, t.CreatedAt, t.UpdatedAt, t.DeletedAt}
}
