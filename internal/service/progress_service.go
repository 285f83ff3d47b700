package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/repository"
)

// ProgressService reads and writes a student's per-assignment progress row.
// Only the student themselves can touch their row, and only while enrolled
// in the assignment's course.
type ProgressService interface {
	Get(ctx context.Context, actor *models.User, assignmentID int64) (*models.AssignmentProgress, error)
	Save(ctx context.Context, actor *models.User, assignmentID int64, req *models.SaveProgressRequest) (*models.AssignmentProgress, error)
}

type progressService struct {
	progressRepo   repository.ProgressRepository
	assignmentRepo repository.AssignmentRepository
	enrollment     EnrollmentService
	logger         zerolog.Logger
}

func NewProgressService(
	progressRepo repository.ProgressRepository,
	assignmentRepo repository.AssignmentRepository,
	enrollment EnrollmentService,
	logger zerolog.Logger,
) ProgressService {
	return &progressService{
		progressRepo:   progressRepo,
		assignmentRepo: assignmentRepo,
		enrollment:     enrollment,
		logger:         logger,
	}
}

func (s *progressService) Get(ctx context.Context, actor *models.User, assignmentID int64) (*models.AssignmentProgress, error) {
	if err := s.authorize(ctx, actor, assignmentID); err != nil {
		return nil, err
	}

	// The row normally exists already (created eagerly on enrollment or
	// assignment creation); GetOrCreate covers rows predating that or
	// removed out of band.
	progress, err := s.progressRepo.GetOrCreate(ctx, assignmentID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return progress, nil
}

func (s *progressService) Save(ctx context.Context, actor *models.User, assignmentID int64, req *models.SaveProgressRequest) (*models.AssignmentProgress, error) {
	if err := s.authorize(ctx, actor, assignmentID); err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.GetOrCreate(ctx, assignmentID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	if req.Answers != nil {
		answers := *req.Answers
		if answers == nil {
			answers = map[string]string{}
		}
		progress.Answers = answers
	}
	if req.CurrentQuestionIndex != nil {
		idx := *req.CurrentQuestionIndex
		if idx < 0 {
			idx = 0
		}
		progress.CurrentQuestionIndex = idx
	}
	if req.Submitted != nil {
		progress.Submitted = *req.Submitted
		if *req.Submitted {
			now := time.Now().UTC()
			progress.SubmittedAt = &now
		}
	}

	if err := s.progressRepo.Update(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	s.logger.Debug().
		Int64("assignment_id", assignmentID).
		Str("student_id", actor.UserID).
		Bool("submitted", progress.Submitted).
		Msg("Progress saved")

	return progress, nil
}

func (s *progressService) authorize(ctx context.Context, actor *models.User, assignmentID int64) error {
	if actor == nil {
		return ErrNotEnrolled
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return ErrAssignmentNotFound
	}

	enrolled, err := s.enrollment.IsEnrolled(ctx, assignment.CourseID, actor.UserID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	return nil
}
