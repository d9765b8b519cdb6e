package attendance

import "context"

type Repository interface {
	CreateSession(context context.Context, session *Session) error
	GetSession(context context.Context, id string) (*Session, error)
	CloseSession(context context.Context, id string) error
	ListSessionsByCourse(context context.Context, courseID string) ([]*Session, error)

	UpsertRecord(context context.Context, record *Record) error
	ListRecordsBySession(context context.Context, sessionID string) ([]*Record, error)
	SummarizeByCourse(context context.Context, courseID string) ([]*Summary, error)
	SummaryForStudent(context context.Context, courseID, studentID string) (*Summary, error)
}
