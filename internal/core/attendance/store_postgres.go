package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vericlass/vericlass/internal/platform/database/schema"
	"github.com/vericlass/vericlass/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) CreateSession(context context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.CoreAttendanceSession.Table,
		schema.CoreAttendanceSession.ID, schema.CoreAttendanceSession.CourseID,
		schema.CoreAttendanceSession.StartsAt, schema.CoreAttendanceSession.EndsAt,
		schema.CoreAttendanceSession.Status, schema.CoreAttendanceSession.CreatedAt,
	)

	session.CreatedAt = time.Now()

	_, err := repository.db.Exec(context, query,
		session.ID, session.CourseID, session.StartsAt, session.EndsAt, session.Status, session.CreatedAt,
	)
	return dberr.Wrap(err, "create_attendance_session")
}

func (repository *PostgresRepository) GetSession(context context.Context, id string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.CoreAttendanceSession.ID, schema.CoreAttendanceSession.CourseID,
		schema.CoreAttendanceSession.StartsAt, schema.CoreAttendanceSession.EndsAt,
		schema.CoreAttendanceSession.Status,
		schema.CoreAttendanceSession.Table,
		schema.CoreAttendanceSession.ID,
	)

	s := &Session{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&s.ID, &s.CourseID, &s.StartsAt, &s.EndsAt, &s.Status,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_attendance_session")
	}
	return s, nil
}

func (repository *PostgresRepository) CloseSession(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.CoreAttendanceSession.Table,
		schema.CoreAttendanceSession.Status,
		schema.CoreAttendanceSession.ID,
	)

	_, err := repository.db.Exec(context, query, id, SessionClosed)
	return dberr.Wrap(err, "close_attendance_session")
}

func (repository *PostgresRepository) ListSessionsByCourse(context context.Context, courseID string) ([]*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC`,
		schema.CoreAttendanceSession.ID, schema.CoreAttendanceSession.CourseID,
		schema.CoreAttendanceSession.StartsAt, schema.CoreAttendanceSession.EndsAt,
		schema.CoreAttendanceSession.Status,
		schema.CoreAttendanceSession.Table,
		schema.CoreAttendanceSession.CourseID,
		schema.CoreAttendanceSession.StartsAt,
	)

	rows, err := repository.db.Query(context, query, courseID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_attendance_sessions")
	}
	defer rows.Close()

	sessions := make([]*Session, 0)
	for rows.Next() {
		s := &Session{}
		if err := rows.Scan(&s.ID, &s.CourseID, &s.StartsAt, &s.EndsAt, &s.Status); err != nil {
			return nil, dberr.Wrap(err, "scan_attendance_session")
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (repository *PostgresRepository) UpsertRecord(context context.Context, record *Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%s, %s)
		DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		schema.CoreAttendanceRecord.Table,
		schema.CoreAttendanceRecord.ID, schema.CoreAttendanceRecord.SessionID,
		schema.CoreAttendanceRecord.StudentID, schema.CoreAttendanceRecord.Status,
		schema.CoreAttendanceRecord.Method, schema.CoreAttendanceRecord.MarkedAt,
		schema.CoreAttendanceRecord.SessionID, schema.CoreAttendanceRecord.StudentID,
		schema.CoreAttendanceRecord.Status, schema.CoreAttendanceRecord.Status,
		schema.CoreAttendanceRecord.Method, schema.CoreAttendanceRecord.Method,
		schema.CoreAttendanceRecord.MarkedAt, schema.CoreAttendanceRecord.MarkedAt,
	)

	_, err := repository.db.Exec(context, query,
		record.ID, record.SessionID, record.StudentID, record.Status, record.Method, record.MarkedAt,
	)
	return dberr.Wrap(err, "upsert_attendance_record")
}

func (repository *PostgresRepository) ListRecordsBySession(context context.Context, sessionID string) ([]*Record, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC`,
		schema.CoreAttendanceRecord.ID, schema.CoreAttendanceRecord.SessionID,
		schema.CoreAttendanceRecord.StudentID, schema.CoreAttendanceRecord.Status,
		schema.CoreAttendanceRecord.Method, schema.CoreAttendanceRecord.MarkedAt,
		schema.CoreAttendanceRecord.Table,
		schema.CoreAttendanceRecord.SessionID,
		schema.CoreAttendanceRecord.MarkedAt,
	)

	rows, err := repository.db.Query(context, query, sessionID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_attendance_records")
	}
	defer rows.Close()

	records := make([]*Record, 0)
	for rows.Next() {
		r := &Record{}
		if err := rows.Scan(&r.ID, &r.SessionID, &r.StudentID, &r.Status, &r.Method, &r.MarkedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_attendance_record")
		}
		records = append(records, r)
	}
	return records, nil
}

// summaryQuery counts records per status for each student across a course.
const summaryQuery = `
	SELECT r.studentid,
	       COUNT(*) FILTER (WHERE r.status = 'present'),
	       COUNT(*) FILTER (WHERE r.status = 'late'),
	       COUNT(*) FILTER (WHERE r.status = 'absent'),
	       COUNT(*)
	FROM core.attendancerecord r
	JOIN core.attendancesession s ON s.id = r.sessionid
	WHERE s.courseid = $1`

func (repository *PostgresRepository) SummarizeByCourse(context context.Context, courseID string) ([]*Summary, error) {
	rows, err := repository.db.Query(context, summaryQuery+`
		GROUP BY r.studentid
		ORDER BY r.studentid`, courseID)
	if err != nil {
		return nil, dberr.Wrap(err, "summarize_attendance")
	}
	defer rows.Close()

	summaries := make([]*Summary, 0)
	for rows.Next() {
		s := &Summary{}
		if err := rows.Scan(&s.StudentID, &s.Present, &s.Late, &s.Absent, &s.Total); err != nil {
			return nil, dberr.Wrap(err, "scan_attendance_summary")
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (repository *PostgresRepository) SummaryForStudent(context context.Context, courseID, studentID string) (*Summary, error) {
	s := &Summary{StudentID: studentID}
	err := repository.db.QueryRow(context, summaryQuery+`
		AND r.studentid = $2
		GROUP BY r.studentid`, courseID, studentID).Scan(
		&s.StudentID, &s.Present, &s.Late, &s.Absent, &s.Total,
	)
	if err != nil {
		// A student with no records yet has an all-zero summary, not an error.
		if dberr.Wrap(err, "student_attendance_summary") == dberr.ErrNotFound {
			return s, nil
		}
		return nil, dberr.Wrap(err, "student_attendance_summary")
	}
	return s, nil
}
