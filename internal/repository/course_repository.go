package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
)

type CourseRepository interface {
	// Create inserts the course and its initial roster in one transaction,
	// so a failed roster write leaves no orphan course row. The roster must
	// already be validated; a new course has no assignments yet, so no
	// progress rows are needed here.
	Create(ctx context.Context, course *models.Course, roster []string) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	GetByInstructor(ctx context.Context, instructorID string, limit, offset int) ([]models.Course, int, error)
	GetByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.Course, int, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.Course, int, error)
	Overview(ctx context.Context, limit, offset int) ([]models.CourseOverview, int, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

type courseRepository struct {
	*PostgresRepository
}

func NewCourseRepository(db *sql.DB, logger zerolog.Logger) CourseRepository {
	return &courseRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const courseColumns = `id, course_name, course_code, school_name, instructor_id, created_at, updated_at`

func scanCourse(row interface{ Scan(...interface{}) error }) (*models.Course, error) {
	course := &models.Course{}
	err := row.Scan(
		&course.ID,
		&course.CourseName,
		&course.CourseCode,
		&course.SchoolName,
		&course.InstructorID,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course, roster []string) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO courses (course_name, course_code, school_name, instructor_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		course.CourseName,
		course.CourseCode,
		course.SchoolName,
		course.InstructorID,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return err
	}

	if len(roster) > 0 {
		rosterQuery := `
			INSERT INTO course_students (course_id, student_id)
			SELECT $1, unnest($2::text[])
			ON CONFLICT (course_id, student_id) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, rosterQuery, course.ID, pq.Array(roster)); err != nil {
			return fmt.Errorf("failed to insert initial roster: %w", err)
		}
	}

	return tx.Commit()
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE id = $1
	`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return course, err
}

func (r *courseRepository) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE course_code = $1
	`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return course, err
}

func (r *courseRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM courses WHERE course_code = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, code).Scan(&exists)
	return exists, err
}

func (r *courseRepository) GetByInstructor(ctx context.Context, instructorID string, limit, offset int) ([]models.Course, int, error) {
	countQuery := `SELECT COUNT(*) FROM courses WHERE instructor_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, instructorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE instructor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, instructorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses, err := collectCourses(rows)
	return courses, total, err
}

func (r *courseRepository) GetByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.Course, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM courses c
		JOIN course_students cs ON cs.course_id = c.id
		WHERE cs.student_id = $1
	`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, studentID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT c.id, c.course_name, c.course_code, c.school_name, c.instructor_id, c.created_at, c.updated_at
		FROM courses c
		JOIN course_students cs ON cs.course_id = c.id
		WHERE cs.student_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses, err := collectCourses(rows)
	return courses, total, err
}

func (r *courseRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Course, int, error) {
	countQuery := `SELECT COUNT(*) FROM courses`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses, err := collectCourses(rows)
	return courses, total, err
}

// Overview builds the compact admin dashboard listing: per-course assignment
// counts plus the roster with display names resolved from the users table.
func (r *courseRepository) Overview(ctx context.Context, limit, offset int) ([]models.CourseOverview, int, error) {
	countQuery := `SELECT COUNT(*) FROM courses`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT c.id, c.course_name, c.course_code, c.school_name, c.instructor_id,
			COUNT(a.id) AS assignment_count
		FROM courses c
		LEFT JOIN assignments a ON a.course_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var overviews []models.CourseOverview
	var courseIDs []int64
	byID := make(map[int64]*models.CourseOverview)

	for rows.Next() {
		var o models.CourseOverview
		if err := rows.Scan(&o.ID, &o.CourseName, &o.CourseCode, &o.SchoolName, &o.InstructorID, &o.AssignmentCount); err != nil {
			return nil, 0, err
		}
		o.StudentIDs = []string{}
		o.StudentNameByID = make(map[string]string)
		overviews = append(overviews, o)
		courseIDs = append(courseIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range overviews {
		byID[overviews[i].ID] = &overviews[i]
	}

	if len(courseIDs) == 0 {
		return overviews, total, nil
	}

	studentQuery := `
		SELECT cs.course_id, cs.student_id, u.first_name, u.last_name, u.email
		FROM course_students cs
		JOIN users u ON u.user_id = cs.student_id
		WHERE cs.course_id = ANY($1)
		ORDER BY cs.enrolled_at ASC
	`

	studentRows, err := r.db.QueryContext(ctx, studentQuery, pq.Array(courseIDs))
	if err != nil {
		return nil, 0, err
	}
	defer studentRows.Close()

	for studentRows.Next() {
		var courseID int64
		var studentID string
		var firstName, lastName, email *string
		if err := studentRows.Scan(&courseID, &studentID, &firstName, &lastName, &email); err != nil {
			return nil, 0, err
		}

		overview, ok := byID[courseID]
		if !ok {
			continue
		}
		overview.StudentIDs = append(overview.StudentIDs, studentID)
		overview.StudentNameByID[studentID] = displayName(studentID, firstName, lastName, email)
	}

	return overviews, total, studentRows.Err()
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET course_name = $1, school_name = $2, updated_at = now()
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query,
		course.CourseName,
		course.SchoolName,
		course.ID,
	)

	return err
}

func (r *courseRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM courses WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func collectCourses(rows *sql.Rows) ([]models.Course, error) {
	var courses []models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

func displayName(studentID string, firstName, lastName, email *string) string {
	first := ""
	if firstName != nil {
		first = strings.TrimSpace(*firstName)
	}
	last := ""
	if lastName != nil {
		last = strings.TrimSpace(*lastName)
	}
	if name := strings.TrimSpace(first + " " + last); name != "" {
		return name
	}
	if email != nil && *email != "" {
		return *email
	}
	return studentID
}
