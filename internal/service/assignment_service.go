package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/repository"
)

type AssignmentService interface {
	Create(ctx context.Context, actor *models.User, req *models.CreateAssignmentRequest) (*models.Assignment, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.Assignment, error)
	ListByCourse(ctx context.Context, actor *models.User, courseID int64) ([]models.Assignment, error)
	Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateAssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
	ReleaseNow(ctx context.Context, actor *models.User, id int64) (*models.Assignment, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	courseRepo     repository.CourseRepository
	userRepo       repository.UserRepository
	enrollment     EnrollmentService
	logger         zerolog.Logger
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	enrollment EnrollmentService,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		enrollment:     enrollment,
		logger:         logger,
	}
}

func (s *assignmentService) Create(ctx context.Context, actor *models.User, req *models.CreateAssignmentRequest) (*models.Assignment, error) {
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if actor == nil || course.InstructorID != actor.UserID {
		return nil, ErrNotCourseInstructor
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: assignment title must be non-blank", ErrValidation)
	}
	if err := validateSchedule(req.DueDateSoft, req.DueDateHard); err != nil {
		return nil, err
	}
	if err := validateLatePolicy(req.LatePolicyID); err != nil {
		return nil, err
	}

	assignmentType := req.Type
	if assignmentType == "" {
		assignmentType = "Other"
	}
	questions := req.Questions
	if questions == nil {
		questions = []int64{}
	}

	var instructorEmail string
	if actor.Email != nil {
		instructorEmail = *actor.Email
	}

	assignment := &models.Assignment{
		CourseID:        course.ID,
		InstructorID:    actor.UserID,
		InstructorEmail: instructorEmail,
		Title:           title,
		Description:     req.Description,
		Type:            assignmentType,
		NodeID:          req.NodeID,
		ReleaseDate:     req.ReleaseDate,
		DueDateSoft:     req.DueDateSoft,
		DueDateHard:     req.DueDateHard,
		LatePolicyID:    req.LatePolicyID,
		Questions:       questions,
	}

	// The repository creates progress rows for every enrolled student in
	// the same transaction as the assignment insert.
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info().
		Int64("assignment_id", assignment.ID).
		Int64("course_id", course.ID).
		Str("title", assignment.Title).
		Msg("Assignment created")

	return assignment, nil
}

func (s *assignmentService) Get(ctx context.Context, actor *models.User, id int64) (*models.Assignment, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeRead(ctx, actor, assignment.CourseID); err != nil {
		return nil, err
	}

	return assignment, nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, actor *models.User, courseID int64) ([]models.Assignment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	if err := s.authorizeRead(ctx, actor, courseID); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	return assignments, nil
}

func (s *assignmentService) Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateAssignmentRequest) (*models.Assignment, error) {
	assignment, err := s.getOwnedAssignment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != "" {
			assignment.Title = title
		}
	}
	if req.Type != nil {
		assignment.Type = *req.Type
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.NodeID != nil {
		assignment.NodeID = req.NodeID
	}
	if req.ReleaseDate != nil {
		assignment.ReleaseDate = req.ReleaseDate
	}
	if req.DueDateSoft != nil {
		assignment.DueDateSoft = req.DueDateSoft
	}
	if req.DueDateHard != nil {
		assignment.DueDateHard = req.DueDateHard
	}
	if req.LatePolicyID != nil {
		assignment.LatePolicyID = req.LatePolicyID
	}
	if req.Questions != nil {
		assignment.Questions = *req.Questions
	}

	// Validate the merged result so a partial update cannot leave the
	// schedule inconsistent.
	if err := validateSchedule(assignment.DueDateSoft, assignment.DueDateHard); err != nil {
		return nil, err
	}
	if err := validateLatePolicy(assignment.LatePolicyID); err != nil {
		return nil, err
	}

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	return assignment, nil
}

func (s *assignmentService) Delete(ctx context.Context, actor *models.User, id int64) error {
	assignment, err := s.getOwnedAssignment(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, assignment.ID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	s.logger.Info().
		Int64("assignment_id", id).
		Int64("course_id", assignment.CourseID).
		Msg("Assignment deleted")

	return nil
}

func (s *assignmentService) ReleaseNow(ctx context.Context, actor *models.User, id int64) (*models.Assignment, error) {
	assignment, err := s.getOwnedAssignment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	assignment.ReleaseDate = &now

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to release assignment: %w", err)
	}

	s.logger.Info().
		Int64("assignment_id", id).
		Time("release_date", now).
		Msg("Assignment released")

	return assignment, nil
}

func (s *assignmentService) getAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}

	return assignment, nil
}

func (s *assignmentService) getOwnedAssignment(ctx context.Context, actor *models.User, id int64) (*models.Assignment, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, assignment.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if actor == nil || course.InstructorID != actor.UserID {
		return nil, ErrNotCourseInstructor
	}

	return assignment, nil
}

func (s *assignmentService) authorizeRead(ctx context.Context, actor *models.User, courseID int64) error {
	if actor == nil {
		return ErrNotEnrolled
	}
	if actor.Admin {
		return nil
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return ErrCourseNotFound
	}
	if course.InstructorID == actor.UserID {
		return nil
	}

	enrolled, err := s.enrollment.IsEnrolled(ctx, courseID, actor.UserID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	return nil
}

func validateSchedule(soft, hard *time.Time) error {
	if soft != nil && hard != nil && hard.Before(*soft) {
		return fmt.Errorf("%w: hard due date must not precede soft due date", ErrValidation)
	}

	return nil
}

// validateLatePolicy accepts a percentage penalty encoded as a string, the
// shape the frontend sends. Empty means no policy.
func validateLatePolicy(policy *string) error {
	if policy == nil || strings.TrimSpace(*policy) == "" {
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(*policy))
	if err != nil || n < 0 || n > 100 {
		return fmt.Errorf("%w: late policy must be a percentage between 0 and 100", ErrValidation)
	}

	return nil
}
