package announcement

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

func (repository *PostgresRepository) Create(context context.Context, announcement *Announcement) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.CoreAnnouncement.Table,
		schema.CoreAnnouncement.ID, schema.CoreAnnouncement.CourseID, schema.CoreAnnouncement.AuthorID,
		schema.CoreAnnouncement.Title, schema.CoreAnnouncement.Body,
		schema.CoreAnnouncement.CreatedAt, schema.CoreAnnouncement.UpdatedAt,
	)

	now := time.Now()
	announcement.CreatedAt = now
	announcement.UpdatedAt = now

	_, err := repository.db.Exec(context, query,
		announcement.ID, announcement.CourseID, announcement.AuthorID,
		announcement.Title, announcement.Body,
		announcement.CreatedAt, announcement.UpdatedAt,
	)
	return dberr.Wrap(err, "create_announcement")
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Announcement, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		schema.CoreAnnouncement.ID, schema.CoreAnnouncement.CourseID, schema.CoreAnnouncement.AuthorID,
		schema.CoreAnnouncement.Title, schema.CoreAnnouncement.Body, schema.CoreAnnouncement.CreatedAt,
		schema.CoreAnnouncement.Table,
		schema.CoreAnnouncement.ID, schema.CoreAnnouncement.DeletedAt,
	)

	a := &Announcement{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&a.ID, &a.CourseID, &a.AuthorID, &a.Title, &a.Body, &a.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_announcement")
	}
	return a, nil
}

func (repository *PostgresRepository) ListByCourse(context context.Context, courseID string, limit int) ([]*Announcement, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
		ORDER BY %s DESC
		LIMIT $2`,
		schema.CoreAnnouncement.ID, schema.CoreAnnouncement.CourseID, schema.CoreAnnouncement.AuthorID,
		schema.CoreAnnouncement.Title, schema.CoreAnnouncement.Body, schema.CoreAnnouncement.CreatedAt,
		schema.CoreAnnouncement.Table,
		schema.CoreAnnouncement.CourseID, schema.CoreAnnouncement.DeletedAt,
		schema.CoreAnnouncement.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, courseID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_announcements")
	}
	defer rows.Close()

	announcements := make([]*Announcement, 0)
	for rows.Next() {
		a := &Announcement{}
		if err := rows.Scan(&a.ID, &a.CourseID, &a.AuthorID, &a.Title, &a.Body, &a.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_announcement")
		}
		announcements = append(announcements, a)
	}
	return announcements, nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.CoreAnnouncement.Table,
		schema.CoreAnnouncement.DeletedAt,
		schema.CoreAnnouncement.ID, schema.CoreAnnouncement.DeletedAt,
	)

	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "delete_announcement")
}
