package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, email, name, business_name, business_type, created_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, id); err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT id, email, name, business_name, business_type, created_at
		FROM users
		ORDER BY id
	`

	var users []domain.User
	if err := sqlx.SelectContext(ctx, r.db, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, name, business_name, business_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
			business_name = EXCLUDED.business_name,
			business_type = EXCLUDED.business_type
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Email, user.Name, user.BusinessName, user.BusinessType).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
