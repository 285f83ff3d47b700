package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/repository"
)

// EnrollmentService maintains the course roster invariant: every enrolled
// student holds exactly one progress row per assignment in the course.
type EnrollmentService interface {
	// Enroll adds one student to a course. Returns false when the student
	// was already enrolled; the call is idempotent either way.
	Enroll(ctx context.Context, courseID int64, studentID string) (bool, error)
	// SyncRoster replaces the course roster with the given set of user IDs.
	// IDs that do not resolve to a non-instructor account are silently
	// dropped. Returns the roster as stored.
	SyncRoster(ctx context.Context, courseID int64, desired []string) ([]string, error)
	Students(ctx context.Context, courseID int64) ([]string, error)
	IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error)
}

type enrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	userRepo       repository.UserRepository
	logger         zerolog.Logger
}

func NewEnrollmentService(enrollmentRepo repository.EnrollmentRepository, userRepo repository.UserRepository, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, courseID int64, studentID string) (bool, error) {
	enrolled, err := s.enrollmentRepo.Enroll(ctx, courseID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to enroll student: %w", err)
	}

	if enrolled {
		s.logger.Info().
			Int64("course_id", courseID).
			Str("student_id", studentID).
			Msg("Student enrolled")
	}

	return enrolled, nil
}

func (s *enrollmentService) SyncRoster(ctx context.Context, courseID int64, desired []string) ([]string, error) {
	valid, err := s.userRepo.FilterStudents(ctx, desired)
	if err != nil {
		return nil, fmt.Errorf("failed to validate roster: %w", err)
	}

	current, err := s.enrollmentRepo.GetStudents(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current roster: %w", err)
	}

	// Progress rows are only created for students not already on the
	// roster; students kept across the swap retain their existing rows.
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	var added []string
	for _, id := range valid {
		if _, ok := currentSet[id]; !ok {
			added = append(added, id)
		}
	}

	if err := s.enrollmentRepo.ReplaceRoster(ctx, courseID, valid, added); err != nil {
		return nil, fmt.Errorf("failed to replace roster: %w", err)
	}

	s.logger.Info().
		Int64("course_id", courseID).
		Int("roster_size", len(valid)).
		Int("added", len(added)).
		Msg("Course roster replaced")

	return valid, nil
}

func (s *enrollmentService) Students(ctx context.Context, courseID int64) ([]string, error) {
	students, err := s.enrollmentRepo.GetStudents(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}

	return students, nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error) {
	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return enrolled, nil
}
