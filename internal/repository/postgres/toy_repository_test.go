package postgres

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"toy-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestToy(title string) *domain.Toy {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Toy{
		Title:       title,
		Category:    domain.CategoryBoardGames,
		Description: "Family strategy game",
		Review:      "Fun with four players",
		Rating:      3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestToyRepository_CreateAndFind(t *testing.T) {
	truncate(t, "toys")
	repo := NewToyRepository(testDB)
	ctx := context.Background()

	toy := newTestToy("Catan")
	toy.Tags = []string{"strategy", "family"}
	require.NoError(t, repo.Create(ctx, toy))
	_, err := uuid.Parse(toy.ID)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, toy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Catan", found.Title)
	assert.Equal(t, domain.CategoryBoardGames, found.Category)
	assert.Equal(t, []string{"strategy", "family"}, found.Tags)
	assert.NotNil(t, found.Images)
	assert.Empty(t, found.Images)
	assert.Empty(t, found.ImageURL)
}

func TestToyRepository_FindByIDUnknownOrMalformed(t *testing.T) {
	repo := NewToyRepository(testDB)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "12")
	assert.ErrorIs(t, err, domain.ErrToyNotFound)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrToyNotFound)
}

func TestToyRepository_LongTextAndHugePage(t *testing.T) {
	truncate(t, "toys")
	repo := NewToyRepository(testDB)
	ctx := context.Background()

	toy := newTestToy(strings.Repeat("t", 1000))
	require.NoError(t, repo.Create(ctx, toy))

	found, err := repo.FindByID(ctx, toy.ID)
	require.NoError(t, err)
	assert.Len(t, found.Title, 1000)

	toys, err := repo.FindAll(ctx, math.MaxInt/5+1, 10)
	require.NoError(t, err)
	assert.Empty(t, toys)
}

func TestToyRepository_UpdateKeepsAbsentFields(t *testing.T) {
	truncate(t, "toys")
	repo := NewToyRepository(testDB)
	ctx := context.Background()

	toy := newTestToy("Catan")
	toy.ImageURL = "/uploads/toys/a.png"
	toy.Images = []domain.ImageRef{{Filename: "a.png", Path: "uploads/toys/a.png"}}
	require.NoError(t, repo.Create(ctx, toy))

	title := "Catan Deluxe"
	updated, err := repo.Update(ctx, toy.ID, &domain.ToyPatch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Catan Deluxe", updated.Title)
	assert.Equal(t, 3, updated.Rating)
	assert.Equal(t, "/uploads/toys/a.png", updated.ImageURL)
	require.Len(t, updated.Images, 1)
	assert.Equal(t, "a.png", updated.Images[0].Filename)

	tags := []string{"classic"}
	updated, err = repo.Update(ctx, toy.ID, &domain.ToyPatch{Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, []string{"classic"}, updated.Tags)

	_, err = repo.Update(ctx, uuid.NewString(), &domain.ToyPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrToyNotFound)
}

func TestToyRepository_SaveAndDelete(t *testing.T) {
	truncate(t, "toys")
	repo := NewToyRepository(testDB)
	ctx := context.Background()

	toy := newTestToy("Catan")
	require.NoError(t, repo.Create(ctx, toy))

	toy.Images = []domain.ImageRef{
		{Filename: "a.png", Path: "uploads/toys/a.png"},
		{Filename: "b.png", Path: "uploads/toys/b.png"},
	}
	toy.ImageURL = "/uploads/toys/b.png"
	require.NoError(t, repo.Save(ctx, toy))

	found, err := repo.FindByID(ctx, toy.ID)
	require.NoError(t, err)
	assert.Equal(t, toy.Images, found.Images)
	assert.Equal(t, "/uploads/toys/b.png", found.ImageURL)

	require.NoError(t, repo.Delete(ctx, toy.ID))
	assert.ErrorIs(t, repo.Delete(ctx, toy.ID), domain.ErrToyNotFound)
	assert.ErrorIs(t, repo.Save(ctx, toy), domain.ErrToyNotFound)
}

func TestProperty_ToyPaginationPreservesInsertionOrder(t *testing.T) {
	truncate(t, "toys")
	repo := NewToyRepository(testDB)
	ctx := context.Background()

	const total = 9
	for i := 0; i < total; i++ {
		require.NoError(t, repo.Create(ctx, newTestToy(fmt.Sprintf("toy-%d", i))))
	}

	properties := gopter.NewProperties(nil)

	properties.Property("page items follow insertion order", prop.ForAll(
		func(page, limit int) bool {
			toys, err := repo.FindAll(ctx, page, limit)
			if err != nil {
				return false
			}
			offset := (page - 1) * limit
			for i, toy := range toys {
				if toy.Title != fmt.Sprintf("toy-%d", offset+i) {
					return false
				}
			}
			expected := total - offset
			if expected < 0 {
				expected = 0
			}
			return len(toys) == min(limit, expected)
		},
		gen.IntRange(1, 4),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
