package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
)

type AssignmentRepository interface {
	// Create persists the assignment and, in the same transaction, a default
	// progress row for every student currently enrolled in the course.
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id int64) (*models.Assignment, error)
	GetByCourse(ctx context.Context, courseID int64) ([]models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id int64) error
}

type assignmentRepository struct {
	*PostgresRepository
}

func NewAssignmentRepository(db *sql.DB, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const assignmentColumns = `id, course_id, instructor_id, instructor_email, title, description,
		type, node_id, release_date, due_date_soft, due_date_hard, late_policy_id,
		assignment_questions, created_at, updated_at`

func scanAssignment(row interface{ Scan(...interface{}) error }) (*models.Assignment, error) {
	a := &models.Assignment{}
	var questionsJSON string
	err := row.Scan(
		&a.ID,
		&a.CourseID,
		&a.InstructorID,
		&a.InstructorEmail,
		&a.Title,
		&a.Description,
		&a.Type,
		&a.NodeID,
		&a.ReleaseDate,
		&a.DueDateSoft,
		&a.DueDateHard,
		&a.LatePolicyID,
		&questionsJSON,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(questionsJSON), &a.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode assignment questions: %w", err)
	}
	if a.Questions == nil {
		a.Questions = []int64{}
	}

	return a, nil
}

func encodeQuestions(questions []int64) (string, error) {
	if questions == nil {
		questions = []int64{}
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("failed to encode assignment questions: %w", err)
	}
	return string(raw), nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	questionsJSON, err := encodeQuestions(assignment.Questions)
	if err != nil {
		return err
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO assignments (course_id, instructor_id, instructor_email, title, description,
			type, node_id, release_date, due_date_soft, due_date_hard, late_policy_id, assignment_questions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, insertQuery,
		assignment.CourseID,
		assignment.InstructorID,
		assignment.InstructorEmail,
		assignment.Title,
		assignment.Description,
		assignment.Type,
		assignment.NodeID,
		assignment.ReleaseDate,
		assignment.DueDateSoft,
		assignment.DueDateHard,
		assignment.LatePolicyID,
		questionsJSON,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	progressQuery := `
		INSERT INTO assignment_progress (assignment_id, student_id)
		SELECT $1, cs.student_id
		FROM course_students cs
		WHERE cs.course_id = $2
		ON CONFLICT (assignment_id, student_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, progressQuery, assignment.ID, assignment.CourseID); err != nil {
		return fmt.Errorf("failed to create progress rows: %w", err)
	}

	return tx.Commit()
}

func (r *assignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE id = $1
	`

	assignment, err := scanAssignment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return assignment, err
}

func (r *assignmentRepository) GetByCourse(ctx context.Context, courseID int64) ([]models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE course_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	questionsJSON, err := encodeQuestions(assignment.Questions)
	if err != nil {
		return err
	}

	query := `
		UPDATE assignments
		SET title = $1, description = $2, type = $3, node_id = $4, release_date = $5,
			due_date_soft = $6, due_date_hard = $7, late_policy_id = $8,
			assignment_questions = $9, updated_at = now()
		WHERE id = $10
	`

	_, err = r.db.ExecContext(ctx, query,
		assignment.Title,
		assignment.Description,
		assignment.Type,
		assignment.NodeID,
		assignment.ReleaseDate,
		assignment.DueDateSoft,
		assignment.DueDateHard,
		assignment.LatePolicyID,
		questionsJSON,
		assignment.ID,
	)

	return err
}

func (r *assignmentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM assignments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
