package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vericlass/vericlass/internal/platform/apperr"
)

type fakeRepo struct {
	sessions map[string]*Session
	records  map[string]*Record // keyed sessionID+"/"+studentID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions: map[string]*Session{},
		records:  map[string]*Record{},
	}
}

func (repo *fakeRepo) CreateSession(_ context.Context, session *Session) error {
	repo.sessions[session.ID] = session
	return nil
}

func (repo *fakeRepo) GetSession(_ context.Context, id string) (*Session, error) {
	session, ok := repo.sessions[id]
	if !ok {
		return nil, apperr.NotFound("Attendance session")
	}
	return session, nil
}

func (repo *fakeRepo) CloseSession(_ context.Context, id string) error {
	session, ok := repo.sessions[id]
	if !ok {
		return apperr.NotFound("Attendance session")
	}
	session.Status = SessionClosed
	return nil
}

func (repo *fakeRepo) ListSessionsByCourse(_ context.Context, courseID string) ([]*Session, error) {
	var out []*Session
	for _, session := range repo.sessions {
		if session.CourseID == courseID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (repo *fakeRepo) UpsertRecord(_ context.Context, record *Record) error {
	repo.records[record.SessionID+"/"+record.StudentID] = record
	return nil
}

func (repo *fakeRepo) ListRecordsBySession(_ context.Context, sessionID string) ([]*Record, error) {
	var out []*Record
	for _, record := range repo.records {
		if record.SessionID == sessionID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (repo *fakeRepo) SummarizeByCourse(context.Context, string) ([]*Summary, error) {
	return nil, nil
}

func (repo *fakeRepo) SummaryForStudent(context.Context, string, string) (*Summary, error) {
	return &Summary{}, nil
}

func newTestService(repo *fakeRepo, at time.Time) *Service {
	service := NewService(repo, nil)
	service.now = func() time.Time { return at }
	return service
}

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func openSession(t *testing.T, repo *fakeRepo) *Session {
	t.Helper()
	session := &Session{
		ID:       "session-1",
		CourseID: "course-1",
		StartsAt: baseTime,
		EndsAt:   baseTime.Add(time.Hour),
		Status:   SessionOpen,
	}
	require.NoError(t, repo.CreateSession(context.Background(), session))
	return session
}

/*
TestService_OpenSession tests session creation and the window sanity check.
*/
func TestService_OpenSession(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo, baseTime)

	session, err := service.OpenSession(context.Background(), "course-1", baseTime, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, SessionOpen, session.Status)
	assert.NotEmpty(t, session.ID)

	_, err = service.OpenSession(context.Background(), "course-1", baseTime, baseTime)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_Mark tests the marking window: present inside the threshold,
late past it, rejected outside the session bounds.
*/
func TestService_Mark(t *testing.T) {
	tests := []struct {
		name           string
		at             time.Time
		expectedStatus RecordStatus
		expectedErr    string
	}{
		{"on_time", baseTime.Add(2 * time.Minute), StatusPresent, ""},
		{"at_threshold", baseTime.Add(10 * time.Minute), StatusPresent, ""},
		{"late", baseTime.Add(11 * time.Minute), StatusLate, ""},
		{"just_before_close", baseTime.Add(59 * time.Minute), StatusLate, ""},
		{"before_open", baseTime.Add(-time.Minute), "", "UNPROCESSABLE"},
		{"after_close", baseTime.Add(61 * time.Minute), "", "UNPROCESSABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			session := openSession(t, repo)
			service := newTestService(repo, tt.at)

			record, err := service.Mark(context.Background(), session.ID, "student-1", "face")
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedErr, apperr.As(err).Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, record.Status)
			assert.Equal(t, "face", record.Method)
			assert.Equal(t, tt.at, record.MarkedAt)
		})
	}

	t.Run("closed_session_rejected", func(t *testing.T) {
		repo := newFakeRepo()
		session := openSession(t, repo)
		session.Status = SessionClosed
		service := newTestService(repo, baseTime.Add(time.Minute))

		_, err := service.Mark(context.Background(), session.ID, "student-1", "face")
		require.Error(t, err)
		assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
	})

	t.Run("remark_replaces_record", func(t *testing.T) {
		repo := newFakeRepo()
		session := openSession(t, repo)
		service := newTestService(repo, baseTime.Add(time.Minute))

		_, err := service.Mark(context.Background(), session.ID, "student-1", "face")
		require.NoError(t, err)
		_, err = service.Mark(context.Background(), session.ID, "student-1", "face")
		require.NoError(t, err)

		roster, err := service.Roster(context.Background(), session.ID)
		require.NoError(t, err)
		assert.Len(t, roster, 1, "one record per student per session")
	})
}

/*
TestService_Override tests the faculty correction path.
*/
func TestService_Override(t *testing.T) {
	t.Run("valid_statuses", func(t *testing.T) {
		for _, status := range []RecordStatus{StatusPresent, StatusLate, StatusAbsent} {
			repo := newFakeRepo()
			session := openSession(t, repo)
			service := newTestService(repo, baseTime.Add(2*time.Hour))

			record, err := service.Override(context.Background(), session.ID, "student-1", status)
			require.NoError(t, err)
			assert.Equal(t, status, record.Status)
			assert.Equal(t, "manual", record.Method)
		}
	})

	t.Run("unknown_status", func(t *testing.T) {
		repo := newFakeRepo()
		session := openSession(t, repo)
		service := newTestService(repo, baseTime)

		_, err := service.Override(context.Background(), session.ID, "student-1", RecordStatus("excused"))
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("missing_session", func(t *testing.T) {
		service := newTestService(newFakeRepo(), baseTime)

		_, err := service.Override(context.Background(), "no-such-session", "student-1", StatusPresent)
		require.Error(t, err)
	})
}

/*
TestService_CloseSession tests that closing is idempotent.
*/
func TestService_CloseSession(t *testing.T) {
	repo := newFakeRepo()
	session := openSession(t, repo)
	service := newTestService(repo, baseTime)

	require.NoError(t, service.CloseSession(context.Background(), session.ID))
	assert.Equal(t, SessionClosed, session.Status)

	assert.NoError(t, service.CloseSession(context.Background(), session.ID))
}
