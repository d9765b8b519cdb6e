package announcement

import (
	"context"
	"log/slog"

	"github.com/vericlass/vericlass/internal/platform/apperr"
	"github.com/vericlass/vericlass/pkg/uuid"
)

const defaultListLimit = 50

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
	CourseID string
	AuthorID string
	Title    string
	Body     string
}

func (service *Service) Post(context context.Context, input CreateInput) (*Announcement, error) {
	announcement := &Announcement{
		ID:       uuid.New(),
		CourseID: input.CourseID,
		AuthorID: input.AuthorID,
		Title:    input.Title,
		Body:     input.Body,
	}

	if err := service.repo.Create(context, announcement); err != nil {
		return nil, err
	}
	return announcement, nil
}

func (service *Service) ListForCourse(context context.Context, courseID string) ([]*Announcement, error) {
	return service.repo.ListByCourse(context, courseID, defaultListLimit)
}

// Remove deletes an announcement; only its author may do so.
func (service *Service) Remove(context context.Context, id, requesterID string) error {
	announcement, err := service.repo.GetByID(context, id)
	if err != nil {
		return err
	}
	if announcement.AuthorID != requesterID {
		return apperr.Forbidden("Only the author can delete an announcement")
	}
	return service.repo.Delete(context, id)
}
