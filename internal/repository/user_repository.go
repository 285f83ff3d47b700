package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
)

type UserRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	GetOrCreate(ctx context.Context, userID string, email *string) (*models.User, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) error
	FilterStudents(ctx context.Context, userIDs []string) ([]string, error)
}

type userRepository struct {
	*PostgresRepository
}

func NewUserRepository(db *sql.DB, logger zerolog.Logger) UserRepository {
	return &userRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const userColumns = `id, user_id, email, first_name, last_name, admin, teacher, pending,
		icon_shape, icon_color, initials, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.UserID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Admin,
		&user.Teacher,
		&user.Pending,
		&user.IconShape,
		&user.IconColor,
		&user.Initials,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *userRepository) GetOrCreate(ctx context.Context, userID string, email *string) (*models.User, error) {
	query := `
		INSERT INTO users (user_id, email)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, userID, email); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return r.GetByUserID(ctx, userID)
}

func (r *userRepository) GetAll(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	countQuery := `SELECT COUNT(*) FROM users`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}

	return users, total, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, admin = $4, teacher = $5,
			pending = $6, icon_shape = $7, icon_color = $8, initials = $9, updated_at = now()
		WHERE user_id = $10
	`

	_, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Admin,
		user.Teacher,
		user.Pending,
		user.IconShape,
		user.IconColor,
		user.Initials,
		user.UserID,
	)

	return err
}

// FilterStudents returns the subset of userIDs that reference existing
// non-teacher users. Unknown ids and teacher ids are silently dropped.
func (r *userRepository) FilterStudents(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT user_id
		FROM users
		WHERE user_id = ANY($1) AND teacher = false
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	valid := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		valid[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve caller order, drop duplicates.
	var result []string
	seen := make(map[string]bool)
	for _, id := range userIDs {
		if valid[id] && !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}

	return result, nil
}
