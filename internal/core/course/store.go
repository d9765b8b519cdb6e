package course

import "context"

type Repository interface {
	Create(context context.Context, course *Course) error
	GetByID(context context.Context, id string) (*Course, error)
	GetBySlug(context context.Context, slug string) (*Course, error)
	ListByFaculty(context context.Context, facultyID string) ([]*Course, error)
	ListByStudent(context context.Context, studentID string) ([]*Course, error)
	Enroll(context context.Context, courseID, studentID string) error
	Unenroll(context context.Context, courseID, studentID string) error
}
