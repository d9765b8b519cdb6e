package course

import (
	"context"
	"log/slog"

	"github.com/vericlass/vericlass/pkg/slug"
	"github.com/vericlass/vericlass/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

type CreateInput struct {
	Code        string
	Title       string
	Description *string
	FacultyID   string
	Semester    string
}

func (service *Service) CreateCourse(context context.Context, input CreateInput) (*Course, error) {
	course := &Course{
		ID:          uuid.New(),
		Code:        input.Code,
		Title:       input.Title,
		Slug:        slug.From(input.Code + " " + input.Semester),
		Description: input.Description,
		FacultyID:   input.FacultyID,
		Semester:    input.Semester,
	}

	if err := service.repo.Create(context, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (service *Service) GetCourse(context context.Context, id string) (*Course, error) {
	return service.repo.GetByID(context, id)
}

func (service *Service) GetCourseBySlug(context context.Context, courseSlug string) (*Course, error) {
	return service.repo.GetBySlug(context, courseSlug)
}

func (service *Service) ListForFaculty(context context.Context, facultyID string) ([]*Course, error) {
	return service.repo.ListByFaculty(context, facultyID)
}

func (service *Service) ListForStudent(context context.Context, studentID string) ([]*Course, error) {
	return service.repo.ListByStudent(context, studentID)
}

func (service *Service) Enroll(context context.Context, courseID, studentID string) error {
	if _, err := service.repo.GetByID(context, courseID); err != nil {
		return err
	}
	return service.repo.Enroll(context, courseID, studentID)
}

func (service *Service) Unenroll(context context.Context, courseID, studentID string) error {
	return service.repo.Unenroll(context, courseID, studentID)
}
