package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toy-catalog/internal/domain"
	"toy-catalog/internal/repository"

	"github.com/google/uuid"
)

const userColumns = `id, name, email, password, role, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a UserRepository on the users table
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user domain.User
		id   uuid.UUID
		role string
	)

	if err := row.Scan(&id, &user.Name, &user.Email, &user.Password, &role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}

	user.ID = id.String()
	user.Role = domain.Role(role)
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	id := uuid.New()
	query := `
		INSERT INTO users (id, name, email, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		id,
		user.Name,
		user.Email,
		user.Password,
		string(user.Role),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id.String()
	return nil
}

func (r *userRepository) FindAll(ctx context.Context, page, limit int) ([]*domain.User, error) {
	page, limit = repository.NormalizePage(page, limit)
	if repository.PastEnd(page, limit) {
		return []*domain.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY seq LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, repository.Offset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	userID, ok := parseID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch *domain.UserPatch) (*domain.User, error) {
	var role *string
	if patch.Role != nil {
		s := string(*patch.Role)
		role = &s
	}

	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    password = COALESCE($4, password),
		    role = COALESCE($5, role),
		    updated_at = $6
		WHERE id = $1
		RETURNING ` + userColumns

	return r.updateReturning(ctx, id, query, patch.Name, patch.Email, patch.Password, role, time.Now())
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	query := `
		UPDATE users
		SET role = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + userColumns

	return r.updateReturning(ctx, id, query, string(role), time.Now())
}

func (r *userRepository) updateReturning(ctx context.Context, id, query string, args ...any) (*domain.User, error) {
	userID, ok := parseID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, append([]any{userID}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	userID, ok := parseID(id)
	if !ok {
		return domain.ErrUserNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}
