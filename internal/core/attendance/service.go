package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/vericlass/vericlass/internal/platform/apperr"
	"github.com/vericlass/vericlass/pkg/uuid"
)

// lateThreshold is how far into an open session a mark still counts as
// present rather than late.
const lateThreshold = 10 * time.Minute

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (service *Service) OpenSession(context context.Context, courseID string, startsAt, endsAt time.Time) (*Session, error) {
	if !endsAt.After(startsAt) {
		return nil, apperr.ValidationError("Session must end after it starts")
	}

	session := &Session{
		ID:       uuid.New(),
		CourseID: courseID,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Status:   SessionOpen,
	}

	if err := service.repo.CreateSession(context, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (service *Service) CloseSession(context context.Context, sessionID string) error {
	session, err := service.repo.GetSession(context, sessionID)
	if err != nil {
		return err
	}
	if session.Status == SessionClosed {
		return nil
	}
	return service.repo.CloseSession(context, sessionID)
}

func (service *Service) ListSessions(context context.Context, courseID string) ([]*Session, error) {
	return service.repo.ListSessionsByCourse(context, courseID)
}

// Mark records a student's presence in an open session. Arriving past the
// late threshold downgrades present to late; marks after the window close
// are rejected.
func (service *Service) Mark(context context.Context, sessionID, studentID, method string) (*Record, error) {
	session, err := service.repo.GetSession(context, sessionID)
	if err != nil {
		return nil, err
	}

	now := service.now()
	if session.Status == SessionClosed || now.After(session.EndsAt) {
		return nil, apperr.Unprocessable("Attendance window is closed")
	}
	if now.Before(session.StartsAt) {
		return nil, apperr.Unprocessable("Attendance window has not opened yet")
	}

	status := StatusPresent
	if now.After(session.StartsAt.Add(lateThreshold)) {
		status = StatusLate
	}

	record := &Record{
		ID:        uuid.New(),
		SessionID: sessionID,
		StudentID: studentID,
		Status:    status,
		Method:    method,
		MarkedAt:  now,
	}

	if err := service.repo.UpsertRecord(context, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Override lets faculty correct a record after the fact.
func (service *Service) Override(context context.Context, sessionID, studentID string, status RecordStatus) (*Record, error) {
	switch status {
	case StatusPresent, StatusLate, StatusAbsent:
	default:
		return nil, apperr.ValidationError("Status must be present, late, or absent")
	}

	if _, err := service.repo.GetSession(context, sessionID); err != nil {
		return nil, err
	}

	record := &Record{
		ID:        uuid.New(),
		SessionID: sessionID,
		StudentID: studentID,
		Status:    status,
		Method:    "manual",
		MarkedAt:  service.now(),
	}

	if err := service.repo.UpsertRecord(context, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (service *Service) Roster(context context.Context, sessionID string) ([]*Record, error) {
	return service.repo.ListRecordsBySession(context, sessionID)
}

func (service *Service) CourseSummary(context context.Context, courseID string) ([]*Summary, error) {
	return service.repo.SummarizeByCourse(context, courseID)
}

func (service *Service) StudentSummary(context context.Context, courseID, studentID string) (*Summary, error) {
	return service.repo.SummaryForStudent(context, courseID, studentID)
}
