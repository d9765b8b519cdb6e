package course

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

func (repository *PostgresRepository) Create(context context.Context, course *Course) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.CoreCourse.Table,
		schema.CoreCourse.ID, schema.CoreCourse.Code, schema.CoreCourse.Title, schema.CoreCourse.Slug,
		schema.CoreCourse.Description, schema.CoreCourse.FacultyID, schema.CoreCourse.Semester,
		schema.CoreCourse.CreatedAt, schema.CoreCourse.UpdatedAt,
	)

	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	_, err := repository.db.Exec(context, query,
		course.ID, course.Code, course.Title, course.Slug,
		course.Description, course.FacultyID, course.Semester,
		course.CreatedAt, course.UpdatedAt,
	)
	return dberr.Wrap(err, "create_course")
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Course, error) {
	return repository.getByColumn(context, schema.CoreCourse.ID, id)
}

func (repository *PostgresRepository) GetBySlug(context context.Context, slug string) (*Course, error) {
	return repository.getByColumn(context, schema.CoreCourse.Slug, slug)
}

func (repository *PostgresRepository) getByColumn(context context.Context, column, value string) (*Course, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreCourse.ID, schema.CoreCourse.Code, schema.CoreCourse.Title, schema.CoreCourse.Slug,
		schema.CoreCourse.Description, schema.CoreCourse.FacultyID, schema.CoreCourse.Semester,
		schema.CoreCourse.CreatedAt,
		schema.CoreCourse.Table,
		column, schema.CoreCourse.DeletedAt,
	)

	c := &Course{}
	err := repository.db.QueryRow(context, query, value).Scan(
		&c.ID, &c.Code, &c.Title, &c.Slug, &c.Description, &c.FacultyID, &c.Semester, &c.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_course")
	}
	return c, nil
}

func (repository *PostgresRepository) ListByFaculty(context context.Context, facultyID string) ([]*Course, error) {
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
		       COUNT(e.%s)
		FROM %s c
		LEFT JOIN %s e ON e.%s = c.%s
		WHERE c.%s = $1 AND c.%s IS NULL
		GROUP BY c.%s
		ORDER BY c.%s ASC`,
		schema.CoreCourse.ID, schema.CoreCourse.Code, schema.CoreCourse.Title, schema.CoreCourse.Slug,
		schema.CoreCourse.Description, schema.CoreCourse.FacultyID, schema.CoreCourse.Semester,
		schema.CoreCourse.CreatedAt,
		schema.CoreEnrollment.StudentID,
		schema.CoreCourse.Table,
		schema.CoreEnrollment.Table, schema.CoreEnrollment.CourseID, schema.CoreCourse.ID,
		schema.CoreCourse.FacultyID, schema.CoreCourse.DeletedAt,
		schema.CoreCourse.ID,
		schema.CoreCourse.Code,
	)

	rows, err := repository.db.Query(context, query, facultyID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_courses_by_faculty")
	}
	defer rows.Close()

	courses := make([]*Course, 0)
	for rows.Next() {
		c := &Course{}
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Title, &c.Slug, &c.Description, &c.FacultyID, &c.Semester, &c.CreatedAt,
			&c.EnrolledCount,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_course")
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (repository *PostgresRepository) ListByStudent(context context.Context, studentID string) ([]*Course, error) {
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s
		FROM %s c
		JOIN %s e ON e.%s = c.%s
		WHERE e.%s = $1 AND c.%s IS NULL
		ORDER BY c.%s ASC`,
		schema.CoreCourse.ID, schema.CoreCourse.Code, schema.CoreCourse.Title, schema.CoreCourse.Slug,
		schema.CoreCourse.Description, schema.CoreCourse.FacultyID, schema.CoreCourse.Semester,
		schema.CoreCourse.CreatedAt,
		schema.CoreCourse.Table,
		schema.CoreEnrollment.Table, schema.CoreEnrollment.CourseID, schema.CoreCourse.ID,
		schema.CoreEnrollment.StudentID, schema.CoreCourse.DeletedAt,
		schema.CoreCourse.Code,
	)

	rows, err := repository.db.Query(context, query, studentID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_courses_by_student")
	}
	defer rows.Close()

	courses := make([]*Course, 0)
	for rows.Next() {
		c := &Course{}
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Title, &c.Slug, &c.Description, &c.FacultyID, &c.Semester, &c.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_course")
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (repository *PostgresRepository) Enroll(context context.Context, courseID, studentID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO NOTHING`,
		schema.CoreEnrollment.Table,
		schema.CoreEnrollment.CourseID, schema.CoreEnrollment.StudentID, schema.CoreEnrollment.EnrolledAt,
		schema.CoreEnrollment.CourseID, schema.CoreEnrollment.StudentID,
	)

	_, err := repository.db.Exec(context, query, courseID, studentID, time.Now())
	return dberr.Wrap(err, "enroll_student")
}

func (repository *PostgresRepository) Unenroll(context context.Context, courseID, studentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CoreEnrollment.Table,
		schema.CoreEnrollment.CourseID, schema.CoreEnrollment.StudentID,
	)

	_, err := repository.db.Exec(context, query, courseID, studentID)
	return dberr.Wrap(err, "unenroll_student")
}
