package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindAndResource(t *testing.T) {
	wrapped := fmt.Errorf("find toy: %w", ErrToyNotFound)

	assert.True(t, errors.Is(wrapped, ErrToyNotFound))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrImageNotFound))
	assert.False(t, errors.Is(wrapped, ErrUserNotFound))
	assert.False(t, errors.Is(wrapped, ErrValidation))
}

func TestError_ConstructorsCarryKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", Validation("validation failed", []FieldError{{Field: "title", Message: "title is required"}}), KindValidation},
		{"upload", UploadRejected("No image has been uploaded"), KindUploadRejected},
		{"internal", Internal("boom", errors.New("disk full")), KindInternal},
		{"conflict", ErrEmailTaken, KindConflict},
		{"plain error", errors.New("plain"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_InternalUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to save toy", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save toy: connection reset", err.Error())
}

func TestToy_IsMainImage(t *testing.T) {
	toy := &Toy{
		ImageURL: "/uploads/toys/a.png",
		Images:   []ImageRef{{Filename: "a.png"}, {Filename: "b.png"}},
	}

	assert.True(t, toy.IsMainImage("a.png"))
	assert.False(t, toy.IsMainImage("b.png"))
	assert.False(t, toy.IsMainImage(".png"))
	assert.Equal(t, 1, toy.ImageIndex("b.png"))
	assert.Equal(t, -1, toy.ImageIndex("c.png"))
}

func TestToyPatch_Apply(t *testing.T) {
	title := "Robot"
	rating := 4
	toy := &Toy{Title: "Old", Rating: 2, Review: "ok"}

	patch := &ToyPatch{Title: &title, Rating: &rating}
	patch.Apply(toy)

	assert.Equal(t, "Robot", toy.Title)
	assert.Equal(t, 4, toy.Rating)
	assert.Equal(t, "ok", toy.Review)
	assert.False(t, patch.IsEmpty())
	assert.True(t, (&ToyPatch{}).IsEmpty())
}
