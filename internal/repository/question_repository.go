package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
)

// QuestionFilter narrows GetByUser listings. VerifiedOnly false means no
// verification filter, not "unverified only".
type QuestionFilter struct {
	VerifiedOnly bool
	SourcePDF    *string
	Limit        int
	Offset       int
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id int64) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error)
	GetByUser(ctx context.Context, userID string, filter QuestionFilter) ([]models.Question, int, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.Question, int, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id int64, userID string) (bool, error)
}

type questionRepository struct {
	*PostgresRepository
}

func NewQuestionRepository(db *sql.DB, logger zerolog.Logger) QuestionRepository {
	return &questionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const questionColumns = `id, title, text, tags, keywords, school, course, course_type,
		question_type, blooms_taxonomy, answer_choices, correct_answer,
		pdf_url, source_pdf, image_url, user_id, is_verified, created_at`

func scanQuestion(row interface{ Scan(...interface{}) error }) (*models.Question, error) {
	q := &models.Question{}
	err := row.Scan(
		&q.ID,
		&q.Title,
		&q.Text,
		&q.Tags,
		&q.Keywords,
		&q.School,
		&q.Course,
		&q.CourseType,
		&q.QuestionType,
		&q.BloomsTaxonomy,
		&q.AnswerChoices,
		&q.CorrectAnswer,
		&q.PDFURL,
		&q.SourcePDF,
		&q.ImageURL,
		&q.UserID,
		&q.IsVerified,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (title, text, tags, keywords, school, course, course_type,
			question_type, blooms_taxonomy, answer_choices, correct_answer,
			pdf_url, source_pdf, image_url, user_id, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at
	`

	return r.db.QueryRowContext(ctx, query,
		question.Title,
		question.Text,
		question.Tags,
		question.Keywords,
		question.School,
		question.Course,
		question.CourseType,
		question.QuestionType,
		question.BloomsTaxonomy,
		question.AnswerChoices,
		question.CorrectAnswer,
		question.PDFURL,
		question.SourcePDF,
		question.ImageURL,
		question.UserID,
		question.IsVerified,
	).Scan(&question.ID, &question.CreatedAt)
}

func (r *questionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE id = $1
	`

	question, err := scanQuestion(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return question, err
}

func (r *questionRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE id = ANY($1)
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQuestions(rows)
}

func (r *questionRepository) GetByUser(ctx context.Context, userID string, filter QuestionFilter) ([]models.Question, int, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.VerifiedOnly {
		where += " AND is_verified = TRUE"
	}
	if filter.SourcePDF != nil {
		args = append(args, *filter.SourcePDF)
		where += fmt.Sprintf(" AND source_pdf = $%d", len(args))
	}

	countQuery := `SELECT COUNT(*) FROM questions ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT `+questionColumns+`
		FROM questions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	questions, err := collectQuestions(rows)
	return questions, total, err
}

func (r *questionRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Question, int, error) {
	countQuery := `SELECT COUNT(*) FROM questions`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + questionColumns + `
		FROM questions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	questions, err := collectQuestions(rows)
	return questions, total, err
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	query := `
		UPDATE questions
		SET title = $1, text = $2, tags = $3, keywords = $4, school = $5, course = $6,
			course_type = $7, question_type = $8, blooms_taxonomy = $9,
			answer_choices = $10, correct_answer = $11, pdf_url = $12,
			source_pdf = $13, image_url = $14, is_verified = $15
		WHERE id = $16 AND user_id = $17
	`

	_, err := r.db.ExecContext(ctx, query,
		question.Title,
		question.Text,
		question.Tags,
		question.Keywords,
		question.School,
		question.Course,
		question.CourseType,
		question.QuestionType,
		question.BloomsTaxonomy,
		question.AnswerChoices,
		question.CorrectAnswer,
		question.PDFURL,
		question.SourcePDF,
		question.ImageURL,
		question.IsVerified,
		question.ID,
		question.UserID,
	)

	return err
}

func (r *questionRepository) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	query := `DELETE FROM questions WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func collectQuestions(rows *sql.Rows) ([]models.Question, error) {
	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}
