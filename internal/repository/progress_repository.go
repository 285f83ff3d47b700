package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
)

type ProgressRepository interface {
	Get(ctx context.Context, assignmentID int64, studentID string) (*models.AssignmentProgress, error)
	// GetOrCreate returns the existing progress row, creating a default one
	// (empty answers, index 0, unsubmitted) if none exists. The insert is an
	// atomic upsert so concurrent callers converge on the same row.
	GetOrCreate(ctx context.Context, assignmentID int64, studentID string) (*models.AssignmentProgress, error)
	Update(ctx context.Context, progress *models.AssignmentProgress) error
}

type progressRepository struct {
	*PostgresRepository
}

func NewProgressRepository(db *sql.DB, logger zerolog.Logger) ProgressRepository {
	return &progressRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const progressColumns = `id, assignment_id, student_id, answers, current_question_index,
		submitted, submitted_at, updated_at`

func scanProgress(row interface{ Scan(...interface{}) error }) (*models.AssignmentProgress, error) {
	p := &models.AssignmentProgress{}
	var answersJSON string
	err := row.Scan(
		&p.ID,
		&p.AssignmentID,
		&p.StudentID,
		&answersJSON,
		&p.CurrentQuestionIndex,
		&p.Submitted,
		&p.SubmittedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(answersJSON), &p.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	if p.Answers == nil {
		p.Answers = map[string]string{}
	}

	return p, nil
}

func (r *progressRepository) Get(ctx context.Context, assignmentID int64, studentID string) (*models.AssignmentProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM assignment_progress
		WHERE assignment_id = $1 AND student_id = $2
	`

	progress, err := scanProgress(r.db.QueryRowContext(ctx, query, assignmentID, studentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return progress, err
}

func (r *progressRepository) GetOrCreate(ctx context.Context, assignmentID int64, studentID string) (*models.AssignmentProgress, error) {
	insertQuery := `
		INSERT INTO assignment_progress (assignment_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (assignment_id, student_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, insertQuery, assignmentID, studentID); err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	return r.Get(ctx, assignmentID, studentID)
}

func (r *progressRepository) Update(ctx context.Context, progress *models.AssignmentProgress) error {
	answers := progress.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	query := `
		UPDATE assignment_progress
		SET answers = $1, current_question_index = $2, submitted = $3, submitted_at = $4, updated_at = now()
		WHERE assignment_id = $5 AND student_id = $6
	`

	_, err = r.db.ExecContext(ctx, query,
		string(answersJSON),
		progress.CurrentQuestionIndex,
		progress.Submitted,
		progress.SubmittedAt,
		progress.AssignmentID,
		progress.StudentID,
	)

	return err
}
