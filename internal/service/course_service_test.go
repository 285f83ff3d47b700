package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caliberhq/question-bank/internal/models"
)

var courseCodePattern = regexp.MustCompile(`^[A-Z0-9]+_[A-Z0-9]{6}$`)

func TestCreateCourseGeneratesJoinCode(t *testing.T) {
	store, _, _, courses := newEnrollmentFixture(t)
	instructor := store.addUser("teacher-1", true, false)

	course := createTestCourse(t, courses, instructor)

	assert.Regexp(t, courseCodePattern, course.CourseCode)
	assert.Contains(t, course.CourseCode, "ORGANICCHEMISTRY_")
	assert.Equal(t, "teacher-1", course.InstructorID)
}

func TestCreateCourseRequiresInstructorRole(t *testing.T) {
	store, _, _, courses := newEnrollmentFixture(t)
	student := store.addUser("student-1", false, false)

	_, err := courses.Create(context.Background(), student, &models.CreateCourseRequest{
		CourseName: "Biology",
	})
	assert.ErrorIs(t, err, ErrNotInstructor)
}

func TestCourseCodeBaseFallsBackForSymbolOnlyNames(t *testing.T) {
	code, err := generateCourseCode(context.Background(), "中文 課程!!",
		func(context.Context, string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Regexp(t, `^COURSE_[A-Z0-9]{6}$`, code)
}

func TestGenerateCourseCodeRetriesOnCollision(t *testing.T) {
	collisions := 0
	code, err := generateCourseCode(context.Background(), "Physics",
		func(_ context.Context, candidate string) (bool, error) {
			if collisions < 3 {
				collisions++
				return true, nil
			}
			return false, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 3, collisions)
	assert.Regexp(t, courseCodePattern, code)
}

func TestGenerateCourseCodeGivesUpEventually(t *testing.T) {
	_, err := generateCourseCode(context.Background(), "Physics",
		func(context.Context, string) (bool, error) { return true, nil })
	assert.Error(t, err)
}

func TestCreateCourseStoresRosterWithCourse(t *testing.T) {
	store, enrollment, _, courses := newEnrollmentFixture(t)
	ctx := context.Background()

	instructor := store.addUser("teacher-1", true, false)
	store.addUser("student-1", false, false)

	// Unknown and instructor ids are filtered before the insert, so the
	// stored roster only carries valid students.
	course := createTestCourse(t, courses, instructor, "student-1", "teacher-1", "ghost-user")
	assert.Equal(t, []string{"student-1"}, course.StudentIDs)

	enrolled, err := enrollment.IsEnrolled(ctx, course.ID, "student-1")
	require.NoError(t, err)
	assert.True(t, enrolled)
}

type failingRosterUserRepo struct{ *fakeUserRepo }

func (r *failingRosterUserRepo) FilterStudents(ctx context.Context, userIDs []string) ([]string, error) {
	return nil, errors.New("roster lookup unavailable")
}

func TestCreateCourseRosterFailureLeavesNoCourse(t *testing.T) {
	store := newFakeStore()
	log := zerolog.Nop()
	userRepo := &failingRosterUserRepo{&fakeUserRepo{store: store}}
	courseRepo := &fakeCourseRepo{store: store}
	assignmentRepo := &fakeAssignmentRepo{store: store}
	enrollmentRepo := &fakeEnrollmentRepo{store: store}

	enrollment := NewEnrollmentService(enrollmentRepo, userRepo, log)
	courses := NewCourseService(courseRepo, assignmentRepo, userRepo, enrollment, log)

	instructor := store.addUser("teacher-1", true, false)
	store.addUser("student-1", false, false)

	_, err := courses.Create(context.Background(), instructor, &models.CreateCourseRequest{
		CourseName: "Biology",
		StudentIDs: []string{"student-1"},
	})
	require.Error(t, err)

	all, total, listErr := courseRepo.GetAll(context.Background(), 10, 0)
	require.NoError(t, listErr)
	assert.Zero(t, total)
	assert.Empty(t, all)
}

func TestJoinCourseByCode(t *testing.T) {
	store, enrollment, _, courses := newEnrollmentFixture(t)
	ctx := context.Background()

	instructor := store.addUser("teacher-1", true, false)
	student := store.addUser("student-1", false, false)
	course := createTestCourse(t, courses, instructor)

	joined, err := courses.Join(ctx, student, course.CourseCode)
	require.NoError(t, err)
	assert.Equal(t, course.ID, joined.ID)
	assert.Contains(t, joined.StudentIDs, "student-1")

	enrolled, err := enrollment.IsEnrolled(ctx, course.ID, "student-1")
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestJoinCourseNormalizesCode(t *testing.T) {
	store, _, _, courses := newEnrollmentFixture(t)
	ctx := context.Background()

	instructor := store.addUser("teacher-1", true, false)
	student := store.addUser("student-1", false, false)
	course := createTestCourse(t, courses, instructor)

	// Codes are matched case insensitively with surrounding whitespace
	// ignored.
	sloppy := "  " + strings.ToLower(course.CourseCode) + " "
	joined, err := courses.Join(ctx, student, sloppy)
	require.NoError(t, err)
	assert.Equal(t, course.ID, joined.ID)
}

func TestJoinCourseRejectsInstructorsAndBadCodes(t *testing.T) {
	store, _, _, courses := newEnrollmentFixture(t)
	ctx := context.Background()

	instructor := store.addUser("teacher-1", true, false)
	other := store.addUser("teacher-2", true, false)
	student := store.addUser("student-1", false, false)
	createTestCourse(t, courses, instructor)

	_, err := courses.Join(ctx, other, "WHATEVER_ABC123")
	assert.ErrorIs(t, err, ErrTeacherCannotJoin)

	_, err = courses.Join(ctx, student, "NOPE_000000")
	assert.ErrorIs(t, err, ErrInvalidCourseCode)

	_, err = courses.Join(ctx, student, "   ")
	assert.ErrorIs(t, err, ErrInvalidCourseCode)
}

func TestJoinCourseIsIdempotent(t *testing.T) {
	store, _, _, courses := newEnrollmentFixture(t)
	ctx := context.Background()

	instructor := store.addUser("teacher-1", true, false)
	student := store.addUser("student-1", false, false)
	course := createTestCourse(t, courses, instructor)

	_, err := courses.Join(ctx, student, course.CourseCode)
	require.NoError(t, err)
	joined, err := courses.Join(ctx, student, course.CourseCode)
	require.NoError(t, err)
	assert.Equal(t, []string{"student-1"}, joined.StudentIDs)
}

func TestUpdateCourseIgnoresBlankNames(t *testing.T) {
	store, _, _, courses := newEnrollmentFixture(t)
	ctx := context.Background()

	instructor := store.addUser("teacher-1", true, false)
	course := createTestCourse(t, courses, instructor)

	blank := "   "
	updated, err := courses.Update(ctx, instructor, course.ID, &models.UpdateCourseRequest{
		CourseName: &blank,
	})
	require.NoError(t, err)
	assert.Equal(t, "Organic Chemistry", updated.CourseName)
}

func TestUpdateCourseRequiresOwnership(t *testing.T) {
	store, _, _, courses := newEnrollmentFixture(t)
	ctx := context.Background()

	instructor := store.addUser("teacher-1", true, false)
	other := store.addUser("teacher-2", true, false)
	course := createTestCourse(t, courses, instructor)

	name := "Hijacked"
	_, err := courses.Update(ctx, other, course.ID, &models.UpdateCourseRequest{CourseName: &name})
	assert.ErrorIs(t, err, ErrNotCourseInstructor)

	err = courses.Delete(ctx, other, course.ID)
	assert.ErrorIs(t, err, ErrNotCourseInstructor)
}

func TestCourseReadAccess(t *testing.T) {
	store, _, _, courses := newEnrollmentFixture(t)
	ctx := context.Background()

	instructor := store.addUser("teacher-1", true, false)
	admin := store.addUser("admin-1", false, true)
	enrolledStudent := store.addUser("student-1", false, false)
	outsider := store.addUser("student-2", false, false)
	course := createTestCourse(t, courses, instructor, "student-1")

	for _, actor := range []*models.User{instructor, admin, enrolledStudent} {
		_, err := courses.Get(ctx, actor, course.ID)
		assert.NoError(t, err)
	}

	_, err := courses.Get(ctx, outsider, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestCourseListsByRole(t *testing.T) {
	store, _, _, courses := newEnrollmentFixture(t)
	ctx := context.Background()

	instructor := store.addUser("teacher-1", true, false)
	other := store.addUser("teacher-2", true, false)
	student := store.addUser("student-1", false, false)
	admin := store.addUser("admin-1", false, true)

	mine := createTestCourse(t, courses, instructor, "student-1")
	_, err := courses.Create(ctx, other, &models.CreateCourseRequest{CourseName: "Statistics"})
	require.NoError(t, err)

	owned, total, err := courses.List(ctx, instructor, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, mine.ID, owned[0].ID)

	enrolled, total, err := courses.List(ctx, student, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, mine.ID, enrolled[0].ID)

	all, total, err := courses.ListAll(ctx, admin, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	_, _, err = courses.ListAll(ctx, student, 1, 50)
	assert.ErrorIs(t, err, ErrNotAdmin)

	overview, total, err := courses.Overview(ctx, admin, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"student-1"}, overview[0].StudentIDs)

	_, _, err = courses.Overview(ctx, instructor, 1, 50)
	assert.ErrorIs(t, err, ErrNotAdmin)
}
