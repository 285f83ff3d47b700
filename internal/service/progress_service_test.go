package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caliberhq/question-bank/internal/models"
)

func newProgressFixture(t *testing.T) (*fakeStore, ProgressService, *models.User, *models.Assignment) {
	t.Helper()

	store, _, assignments, courses := newEnrollmentFixture(t)
	log := zerolog.Nop()

	instructor := store.addUser("teacher-1", true, false)
	student := store.addUser("student-1", false, false)

	course := createTestCourse(t, courses, instructor, "student-1")
	assignment := createTestAssignment(t, assignments, instructor, course.ID, "Quiz")

	progress := NewProgressService(
		&fakeProgressRepo{store: store},
		&fakeAssignmentRepo{store: store},
		NewEnrollmentService(&fakeEnrollmentRepo{store: store}, &fakeUserRepo{store: store}, log),
		log,
	)

	return store, progress, student, assignment
}

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func TestProgressDefaultsForEnrolledStudent(t *testing.T) {
	_, progress, student, assignment := newProgressFixture(t)

	row, err := progress.Get(context.Background(), student, assignment.ID)
	require.NoError(t, err)

	assert.Equal(t, assignment.ID, row.AssignmentID)
	assert.Equal(t, "student-1", row.StudentID)
	assert.Equal(t, map[string]string{}, row.Answers)
	assert.Equal(t, 0, row.CurrentQuestionIndex)
	assert.False(t, row.Submitted)
	assert.Nil(t, row.SubmittedAt)
}

func TestProgressSaveRoundTrip(t *testing.T) {
	_, progress, student, assignment := newProgressFixture(t)
	ctx := context.Background()

	answers := map[string]string{"0": "A", "1": "C"}
	saved, err := progress.Save(ctx, student, assignment.ID, &models.SaveProgressRequest{
		Answers:              &answers,
		CurrentQuestionIndex: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, answers, saved.Answers)
	assert.Equal(t, 2, saved.CurrentQuestionIndex)
	assert.False(t, saved.Submitted)

	loaded, err := progress.Get(ctx, student, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, answers, loaded.Answers)
	assert.Equal(t, 2, loaded.CurrentQuestionIndex)
}

func TestProgressPartialSaveLeavesOtherFields(t *testing.T) {
	_, progress, student, assignment := newProgressFixture(t)
	ctx := context.Background()

	answers := map[string]string{"0": "A"}
	_, err := progress.Save(ctx, student, assignment.ID, &models.SaveProgressRequest{
		Answers:              &answers,
		CurrentQuestionIndex: intPtr(1),
	})
	require.NoError(t, err)

	// Only the index moves; answers stay as saved.
	saved, err := progress.Save(ctx, student, assignment.ID, &models.SaveProgressRequest{
		CurrentQuestionIndex: intPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, answers, saved.Answers)
	assert.Equal(t, 3, saved.CurrentQuestionIndex)
}

func TestProgressSubmitStampsTimestamp(t *testing.T) {
	_, progress, student, assignment := newProgressFixture(t)
	ctx := context.Background()

	before := time.Now().UTC()
	saved, err := progress.Save(ctx, student, assignment.ID, &models.SaveProgressRequest{
		Submitted: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, saved.Submitted)
	require.NotNil(t, saved.SubmittedAt)
	assert.False(t, saved.SubmittedAt.Before(before))

	// Saves that do not mention submitted must not touch the timestamp.
	stamped := *saved.SubmittedAt
	answers := map[string]string{"0": "B"}
	saved, err = progress.Save(ctx, student, assignment.ID, &models.SaveProgressRequest{
		Answers: &answers,
	})
	require.NoError(t, err)
	assert.True(t, saved.Submitted)
	require.NotNil(t, saved.SubmittedAt)
	assert.Equal(t, stamped, *saved.SubmittedAt)
}

func TestProgressUnsubmitKeepsTimestamp(t *testing.T) {
	_, progress, student, assignment := newProgressFixture(t)
	ctx := context.Background()

	saved, err := progress.Save(ctx, student, assignment.ID, &models.SaveProgressRequest{
		Submitted: boolPtr(true),
	})
	require.NoError(t, err)
	stamped := *saved.SubmittedAt

	saved, err = progress.Save(ctx, student, assignment.ID, &models.SaveProgressRequest{
		Submitted: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, saved.Submitted)
	require.NotNil(t, saved.SubmittedAt)
	assert.Equal(t, stamped, *saved.SubmittedAt)
}

func TestProgressNegativeIndexClampsToZero(t *testing.T) {
	_, progress, student, assignment := newProgressFixture(t)

	saved, err := progress.Save(context.Background(), student, assignment.ID, &models.SaveProgressRequest{
		CurrentQuestionIndex: intPtr(-4),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, saved.CurrentQuestionIndex)
}

func TestProgressRequiresEnrollment(t *testing.T) {
	store, progress, _, assignment := newProgressFixture(t)
	outsider := store.addUser("student-99", false, false)

	_, err := progress.Get(context.Background(), outsider, assignment.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = progress.Save(context.Background(), outsider, assignment.ID, &models.SaveProgressRequest{
		CurrentQuestionIndex: intPtr(1),
	})
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestProgressUnknownAssignment(t *testing.T) {
	_, progress, student, _ := newProgressFixture(t)

	_, err := progress.Get(context.Background(), student, 9999)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}
