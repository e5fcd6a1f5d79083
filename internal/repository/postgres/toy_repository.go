package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"toy-catalog/internal/domain"
	"toy-catalog/internal/repository"

	"github.com/google/uuid"
)

const toyColumns = `id, title, category, description, review, rating, image_url, images, tags, created_at, updated_at`

type toyRepository struct {
	db *sql.DB
}

// NewToyRepository creates a ToyRepository on the toys table
func NewToyRepository(db *sql.DB) repository.ToyRepository {
	return &toyRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToy(row rowScanner) (*domain.Toy, error) {
	var (
		toy    domain.Toy
		id     uuid.UUID
		images []byte
		tags   []byte
	)

	err := row.Scan(
		&id,
		&toy.Title,
		&toy.Category,
		&toy.Description,
		&toy.Review,
		&toy.Rating,
		&toy.ImageURL,
		&images,
		&tags,
		&toy.CreatedAt,
		&toy.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	toy.ID = id.String()
	toy.Images = []domain.ImageRef{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &toy.Images); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &toy.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	return &toy, nil
}

// encodeImages renders refs as a JSONB literal. A nil slice is stored as [].
func encodeImages(refs []domain.ImageRef) (string, error) {
	if refs == nil {
		refs = []domain.ImageRef{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("failed to encode images: %w", err)
	}
	return string(b), nil
}

// encodeTags renders tags as a JSONB literal, or NULL when absent.
func encodeTags(tags []string) (*string, error) {
	if tags == nil {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	s := string(b)
	return &s, nil
}

// Create inserts toy with a fresh id
func (r *toyRepository) Create(ctx context.Context, toy *domain.Toy) error {
	images, err := encodeImages(toy.Images)
	if err != nil {
		return err
	}
	tags, err := encodeTags(toy.Tags)
	if err != nil {
		return err
	}

	id := uuid.New()
	query := `
		INSERT INTO toys (id, title, category, description, review, rating, image_url, images, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10, $11)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		id,
		toy.Title,
		toy.Category,
		toy.Description,
		toy.Review,
		toy.Rating,
		toy.ImageURL,
		images,
		tags,
		toy.CreatedAt,
		toy.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create toy: %w", err)
	}

	toy.ID = id.String()
	return nil
}

func (r *toyRepository) FindAll(ctx context.Context, page, limit int) ([]*domain.Toy, error) {
	page, limit = repository.NormalizePage(page, limit)
	if repository.PastEnd(page, limit) {
		return []*domain.Toy{}, nil
	}

	query := `SELECT ` + toyColumns + ` FROM toys ORDER BY seq LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, repository.Offset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list toys: %w", err)
	}
	defer rows.Close()

	toys := make([]*domain.Toy, 0, limit)
	for rows.Next() {
		toy, err := scanToy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan toy: %w", err)
		}
		toys = append(toys, toy)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating toys: %w", err)
	}

	return toys, nil
}

func (r *toyRepository) FindByID(ctx context.Context, id string) (*domain.Toy, error) {
	toyID, ok := parseID(id)
	if !ok {
		return nil, domain.ErrToyNotFound
	}

	query := `SELECT ` + toyColumns + ` FROM toys WHERE id = $1`

	toy, err := scanToy(r.db.QueryRowContext(ctx, query, toyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrToyNotFound
		}
		return nil, fmt.Errorf("failed to find toy by ID: %w", err)
	}

	return toy, nil
}

// Update applies patch with COALESCE so absent fields keep their stored value.
func (r *toyRepository) Update(ctx context.Context, id string, patch *domain.ToyPatch) (*domain.Toy, error) {
	toyID, ok := parseID(id)
	if !ok {
		return nil, domain.ErrToyNotFound
	}

	var tags *string
	if patch.Tags != nil {
		encoded, err := encodeTags(*patch.Tags)
		if err != nil {
			return nil, err
		}
		if encoded == nil {
			empty := "[]"
			encoded = &empty
		}
		tags = encoded
	}

	query := `
		UPDATE toys
		SET title = COALESCE($2, title),
		    category = COALESCE($3, category),
		    description = COALESCE($4, description),
		    review = COALESCE($5, review),
		    rating = COALESCE($6, rating),
		    tags = COALESCE($7::jsonb, tags),
		    updated_at = $8
		WHERE id = $1
		RETURNING ` + toyColumns

	toy, err := scanToy(r.db.QueryRowContext(
		ctx,
		query,
		toyID,
		patch.Title,
		patch.Category,
		patch.Description,
		patch.Review,
		patch.Rating,
		tags,
		time.Now(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrToyNotFound
		}
		return nil, fmt.Errorf("failed to update toy: %w", err)
	}

	return toy, nil
}

func (r *toyRepository) Save(ctx context.Context, toy *domain.Toy) error {
	toyID, ok := parseID(toy.ID)
	if !ok {
		return domain.ErrToyNotFound
	}

	images, err := encodeImages(toy.Images)
	if err != nil {
		return err
	}
	tags, err := encodeTags(toy.Tags)
	if err != nil {
		return err
	}

	query := `
		UPDATE toys
		SET title = $2, category = $3, description = $4, review = $5, rating = $6,
		    image_url = $7, images = $8::jsonb, tags = $9::jsonb, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		toyID,
		toy.Title,
		toy.Category,
		toy.Description,
		toy.Review,
		toy.Rating,
		toy.ImageURL,
		images,
		tags,
		toy.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save toy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrToyNotFound
	}

	return nil
}

func (r *toyRepository) Delete(ctx context.Context, id string) error {
	toyID, ok := parseID(id)
	if !ok {
		return domain.ErrToyNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM toys WHERE id = $1`, toyID)
	if err != nil {
		return fmt.Errorf("failed to delete toy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrToyNotFound
	}

	return nil
}
