package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"toy-catalog/internal/domain"
	"toy-catalog/internal/repository"
	"toy-catalog/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

// ToyService defines toy CRUD and the image workflow that maintains a toy's
// main image.
type ToyService interface {
	Create(ctx context.Context, toy *domain.Toy) (*domain.Toy, error)
	FindAll(ctx context.Context, page, limit int) ([]*domain.Toy, error)
	FindByID(ctx context.Context, id string) (*domain.Toy, error)
	Update(ctx context.Context, id string, patch *domain.ToyPatch) (*domain.Toy, error)
	Delete(ctx context.Context, id string) error

	AddImage(ctx context.Context, id string, file domain.UploadedFile) (*domain.Toy, error)
	AddMultipleImages(ctx context.Context, id string, files []domain.UploadedFile) (*domain.Toy, error)
	DeleteImage(ctx context.Context, id, filename string) error
	SetMainImage(ctx context.Context, id, filename string) (*domain.Toy, error)
	GetAllImages(ctx context.Context, id string) ([]domain.ImageRef, error)
}

type toyService struct {
	toys       repository.ToyRepository
	images     storage.ImageStore
	publicPath string
	now        func() time.Time
}

// NewToyService creates a ToyService. publicPath is the URL prefix that
// main image references are built from.
func NewToyService(toys repository.ToyRepository, images storage.ImageStore, publicPath string) ToyService {
	return &toyService{
		toys:       toys,
		images:     images,
		publicPath: strings.TrimRight(publicPath, "/"),
		now:        time.Now,
	}
}

// ImageURL returns the public reference for filename under publicPath.
func ImageURL(publicPath, filename string) string {
	return strings.TrimRight(publicPath, "/") + "/" + filename
}

// Create stores a new toy with no images
func (s *toyService) Create(ctx context.Context, toy *domain.Toy) (*domain.Toy, error) {
	now := s.now()
	toy.ImageURL = ""
	toy.Images = []domain.ImageRef{}
	toy.CreatedAt = now
	toy.UpdatedAt = now

	if err := s.toys.Create(ctx, toy); err != nil {
		return nil, fmt.Errorf("failed to create toy: %w", err)
	}

	return toy, nil
}

func (s *toyService) FindAll(ctx context.Context, page, limit int) ([]*domain.Toy, error) {
	return s.toys.FindAll(ctx, page, limit)
}

func (s *toyService) FindByID(ctx context.Context, id string) (*domain.Toy, error) {
	return s.toys.FindByID(ctx, id)
}

func (s *toyService) Update(ctx context.Context, id string, patch *domain.ToyPatch) (*domain.Toy, error) {
	return s.toys.Update(ctx, id, patch)
}

// Delete removes the toy record. Stored image files are left in place.
func (s *toyService) Delete(ctx context.Context, id string) error {
	return s.toys.Delete(ctx, id)
}

// AddImage stores file and appends it to the toy. The first image a toy
// receives becomes its main image.
func (s *toyService) AddImage(ctx context.Context, id string, file domain.UploadedFile) (*domain.Toy, error) {
	return s.AddMultipleImages(ctx, id, []domain.UploadedFile{file})
}

// AddMultipleImages stores files in order and persists the toy once at the
// end. Only the first file can become the main image, and only when the toy
// had none. A storage failure aborts the batch without persisting anything;
// files already written stay on the store.
func (s *toyService) AddMultipleImages(ctx context.Context, id string, files []domain.UploadedFile) (*domain.Toy, error) {
	toy, err := s.toys.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		ref, err := s.images.Store(ctx, file.Content, extensionFor(file))
		if err != nil {
			return nil, domain.Internal("failed to store image", err)
		}

		toy.Images = append(toy.Images, ref)
		if toy.ImageURL == "" {
			toy.ImageURL = ImageURL(s.publicPath, ref.Filename)
		}
	}

	toy.UpdatedAt = s.now()
	if err := s.toys.Save(ctx, toy); err != nil {
		return nil, fmt.Errorf("failed to save toy images: %w", err)
	}

	return toy, nil
}

// DeleteImage removes filename from the store and, only when a file was
// actually removed, from the toy. A removed main image is replaced by the
// first remaining image.
func (s *toyService) DeleteImage(ctx context.Context, id, filename string) error {
	toy, err := s.toys.FindByID(ctx, id)
	if err != nil {
		return err
	}

	idx := toy.ImageIndex(filename)
	if idx < 0 {
		return domain.ErrImageNotFound
	}

	removed, err := s.images.Remove(ctx, filename)
	if err != nil {
		return domain.Internal("failed to remove image", err)
	}
	if !removed {
		return nil
	}

	wasMain := toy.IsMainImage(filename)
	toy.Images = append(toy.Images[:idx], toy.Images[idx+1:]...)

	if wasMain {
		if len(toy.Images) > 0 {
			toy.ImageURL = ImageURL(s.publicPath, toy.Images[0].Filename)
		} else {
			toy.ImageURL = ""
		}
	}

	toy.UpdatedAt = s.now()
	if err := s.toys.Save(ctx, toy); err != nil {
		return fmt.Errorf("failed to save toy images: %w", err)
	}

	return nil
}

func (s *toyService) SetMainImage(ctx context.Context, id, filename string) (*domain.Toy, error) {
	toy, err := s.toys.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if toy.ImageIndex(filename) < 0 {
		return nil, domain.ErrImageNotFound
	}

	toy.ImageURL = ImageURL(s.publicPath, filename)
	toy.UpdatedAt = s.now()

	if err := s.toys.Save(ctx, toy); err != nil {
		return nil, fmt.Errorf("failed to save toy images: %w", err)
	}

	return toy, nil
}

func (s *toyService) GetAllImages(ctx context.Context, id string) ([]domain.ImageRef, error) {
	toy, err := s.toys.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if toy.Images == nil {
		return []domain.ImageRef{}, nil
	}
	return toy.Images, nil
}

// extensionFor keeps the original extension, falling back to the one
// registered for the sniffed MIME type.
func extensionFor(file domain.UploadedFile) string {
	if ext := filepath.Ext(file.OriginalName); ext != "" {
		return strings.ToLower(ext)
	}
	if m := mimetype.Lookup(file.MimeType); m != nil {
		return m.Extension()
	}
	return ""
}
