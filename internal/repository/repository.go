// Package repository defines the persistence contracts for toys and users.
// Implementations live in the mongodb and postgres subpackages.
package repository

import (
	"context"
	"math"

	"toy-catalog/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ToyRepository defines the interface for toy data access.
// Lookups by an unknown or malformed id fail with domain.ErrToyNotFound.
type ToyRepository interface {
	Create(ctx context.Context, toy *domain.Toy) error
	// FindAll returns at most limit toys in insertion order, skipping (page-1)*limit.
	FindAll(ctx context.Context, page, limit int) ([]*domain.Toy, error)
	FindByID(ctx context.Context, id string) (*domain.Toy, error)
	// Update merges patch into the stored toy and returns the updated record.
	Update(ctx context.Context, id string, patch *domain.ToyPatch) (*domain.Toy, error)
	// Save overwrites the stored toy with every field of toy.
	Save(ctx context.Context, toy *domain.Toy) error
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access.
// A second user with an existing email fails with domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindAll(ctx context.Context, page, limit int) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, patch *domain.UserPatch) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// NormalizePage clamps page and limit to at least 1, using the defaults for
// non-positive values.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

// Offset returns how many records precede page, saturating at math.MaxInt
// instead of overflowing.
func Offset(page, limit int) int {
	page, limit = NormalizePage(page, limit)
	if PastEnd(page, limit) {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// PastEnd reports whether (page-1)*limit does not fit in an int. No store
// can hold a record on such a page, so callers return an empty page
// without querying.
func PastEnd(page, limit int) bool {
	page, limit = NormalizePage(page, limit)
	return page-1 > math.MaxInt/limit
}
