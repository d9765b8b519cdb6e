package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vericlass/vericlass/internal/core/course"
	"github.com/vericlass/vericlass/internal/platform/apperr"
)

type fakeRepo struct {
	courses     map[string]*course.Course
	enrollments map[string][]string // courseID -> studentIDs
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:     map[string]*course.Course{},
		enrollments: map[string][]string{},
	}
}

func (repo *fakeRepo) Create(_ context.Context, item *course.Course) error {
	repo.courses[item.ID] = item
	return nil
}

func (repo *fakeRepo) GetByID(_ context.Context, id string) (*course.Course, error) {
	item, ok := repo.courses[id]
	if !ok {
		return nil, apperr.NotFound("Course")
	}
	return item, nil
}

func (repo *fakeRepo) GetBySlug(_ context.Context, slug string) (*course.Course, error) {
	for _, item := range repo.courses {
		if item.Slug == slug {
			return item, nil
		}
	}
	return nil, apperr.NotFound("Course")
}

func (repo *fakeRepo) ListByFaculty(_ context.Context, facultyID string) ([]*course.Course, error) {
	var out []*course.Course
	for _, item := range repo.courses {
		if item.FacultyID == facultyID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (repo *fakeRepo) ListByStudent(_ context.Context, studentID string) ([]*course.Course, error) {
	var out []*course.Course
	for courseID, students := range repo.enrollments {
		for _, enrolled := range students {
			if enrolled == studentID {
				out = append(out, repo.courses[courseID])
			}
		}
	}
	return out, nil
}

func (repo *fakeRepo) Enroll(_ context.Context, courseID, studentID string) error {
	repo.enrollments[courseID] = append(repo.enrollments[courseID], studentID)
	return nil
}

func (repo *fakeRepo) Unenroll(_ context.Context, courseID, studentID string) error {
	students := repo.enrollments[courseID]
	for i, enrolled := range students {
		if enrolled == studentID {
			repo.enrollments[courseID] = append(students[:i], students[i+1:]...)
			return nil
		}
	}
	return nil
}

/*
TestService_CreateCourse tests creation and the derived slug.
*/
func TestService_CreateCourse(t *testing.T) {
	repo := newFakeRepo()
	service := course.NewService(repo, nil)

	created, err := service.CreateCourse(context.Background(), course.CreateInput{
		Code:      "CS301",
		Title:     "Computer Networks",
		FacultyID: "faculty-1",
		Semester:  "2026-spring",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "cs301-2026-spring", created.Slug)

	bySlug, err := service.GetCourseBySlug(context.Background(), "cs301-2026-spring")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)
}

/*
TestService_Enroll tests enrollment against existing and missing courses.
*/
func TestService_Enroll(t *testing.T) {
	repo := newFakeRepo()
	service := course.NewService(repo, nil)

	created, err := service.CreateCourse(context.Background(), course.CreateInput{
		Code:      "CS301",
		Title:     "Computer Networks",
		FacultyID: "faculty-1",
		Semester:  "2026-spring",
	})
	require.NoError(t, err)

	require.NoError(t, service.Enroll(context.Background(), created.ID, "student-1"))

	enrolled, err := service.ListForStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, created.ID, enrolled[0].ID)

	err = service.Enroll(context.Background(), "no-such-course", "student-1")
	require.Error(t, err)

	require.NoError(t, service.Unenroll(context.Background(), created.ID, "student-1"))
	enrolled, err = service.ListForStudent(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Empty(t, enrolled)
}
