package announcement

import "context"

type Repository interface {
	Create(context context.Context, announcement *Announcement) error
	GetByID(context context.Context, id string) (*Announcement, error)
	ListByCourse(context context.Context, courseID string, limit int) ([]*Announcement, error)
	Delete(context context.Context, id string) error
}
