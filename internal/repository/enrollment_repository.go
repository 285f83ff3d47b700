package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// EnrollmentRepository owns the course_students rows and the eager creation
// of assignment_progress rows that keeps enrollment and progress consistent.
// Every mutating method commits a single transaction; progress inserts use
// ON CONFLICT DO NOTHING so an existing row is never reset.
type EnrollmentRepository interface {
	// Enroll inserts the enrollment row and a default progress row for every
	// assignment currently in the course. Returns false if the student was
	// already enrolled (committed no-op).
	Enroll(ctx context.Context, courseID int64, studentID string) (bool, error)
	// ReplaceRoster swaps the full enrollment set of a course and eagerly
	// creates progress rows for the newly added students only. Progress rows
	// of removed students are left in place.
	ReplaceRoster(ctx context.Context, courseID int64, studentIDs, added []string) error
	GetStudents(ctx context.Context, courseID int64) ([]string, error)
	IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error)
}

type enrollmentRepository struct {
	*PostgresRepository
}

func NewEnrollmentRepository(db *sql.DB, logger zerolog.Logger) EnrollmentRepository {
	return &enrollmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const insertProgressForStudent = `
	INSERT INTO assignment_progress (assignment_id, student_id)
	SELECT a.id, $2
	FROM assignments a
	WHERE a.course_id = $1
	ON CONFLICT (assignment_id, student_id) DO NOTHING
`

func (r *enrollmentRepository) Enroll(ctx context.Context, courseID int64, studentID string) (bool, error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO course_students (course_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (course_id, student_id) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, insertQuery, courseID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to insert enrollment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		// Already enrolled: commit the no-op so the read is repeatable.
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, insertProgressForStudent, courseID, studentID); err != nil {
		return false, fmt.Errorf("failed to create progress rows: %w", err)
	}

	return true, tx.Commit()
}

func (r *enrollmentRepository) ReplaceRoster(ctx context.Context, courseID int64, studentIDs, added []string) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM course_students WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}

	insertQuery := `
		INSERT INTO course_students (course_id, student_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (course_id, student_id) DO NOTHING
	`
	if len(studentIDs) > 0 {
		if _, err := tx.ExecContext(ctx, insertQuery, courseID, pq.Array(studentIDs)); err != nil {
			return fmt.Errorf("failed to insert roster: %w", err)
		}
	}

	progressQuery := `
		INSERT INTO assignment_progress (assignment_id, student_id)
		SELECT a.id, s.student_id
		FROM assignments a
		CROSS JOIN unnest($2::text[]) AS s(student_id)
		WHERE a.course_id = $1
		ON CONFLICT (assignment_id, student_id) DO NOTHING
	`
	if len(added) > 0 {
		if _, err := tx.ExecContext(ctx, progressQuery, courseID, pq.Array(added)); err != nil {
			return fmt.Errorf("failed to create progress rows: %w", err)
		}
	}

	return tx.Commit()
}

func (r *enrollmentRepository) GetStudents(ctx context.Context, courseID int64) ([]string, error) {
	query := `
		SELECT student_id
		FROM course_students
		WHERE course_id = $1
		ORDER BY enrolled_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		students = append(students, id)
	}

	return students, rows.Err()
}

func (r *enrollmentRepository) IsEnrolled(ctx context.Context, courseID int64, studentID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM course_students WHERE course_id = $1 AND student_id = $2)`

	var enrolled bool
	err := r.db.QueryRowContext(ctx, query, courseID, studentID).Scan(&enrolled)
	return enrolled, err
}
