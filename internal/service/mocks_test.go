package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"toy-catalog/internal/domain"
	"toy-catalog/internal/repository"
)

// Mock repositories for testing. Records are copied on the way in and out
// so unsaved changes never leak into the store.
type mockToyRepository struct {
	mu    sync.Mutex
	seq   int
	order []string
	toys  map[string]*domain.Toy
	saves int
}

func newMockToyRepository() *mockToyRepository {
	return &mockToyRepository{toys: make(map[string]*domain.Toy)}
}

func cloneToy(t *domain.Toy) *domain.Toy {
	c := *t
	c.Images = append([]domain.ImageRef{}, t.Images...)
	if t.Tags != nil {
		c.Tags = append([]string{}, t.Tags...)
	}
	return &c
}

func (m *mockToyRepository) Create(ctx context.Context, toy *domain.Toy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	toy.ID = fmt.Sprintf("toy-%d", m.seq)
	m.toys[toy.ID] = cloneToy(toy)
	m.order = append(m.order, toy.ID)
	return nil
}

func (m *mockToyRepository) FindAll(ctx context.Context, page, limit int) ([]*domain.Toy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, limit = repository.NormalizePage(page, limit)
	offset := repository.Offset(page, limit)

	out := []*domain.Toy{}
	for i := offset; i < len(m.order) && len(out) < limit; i++ {
		if toy, ok := m.toys[m.order[i]]; ok {
			out = append(out, cloneToy(toy))
		}
	}
	return out, nil
}

func (m *mockToyRepository) FindByID(ctx context.Context, id string) (*domain.Toy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	toy, ok := m.toys[id]
	if !ok {
		return nil, domain.ErrToyNotFound
	}
	return cloneToy(toy), nil
}

func (m *mockToyRepository) Update(ctx context.Context, id string, patch *domain.ToyPatch) (*domain.Toy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	toy, ok := m.toys[id]
	if !ok {
		return nil, domain.ErrToyNotFound
	}
	patch.Apply(toy)
	return cloneToy(toy), nil
}

func (m *mockToyRepository) Save(ctx context.Context, toy *domain.Toy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.toys[toy.ID]; !ok {
		return domain.ErrToyNotFound
	}
	m.toys[toy.ID] = cloneToy(toy)
	m.saves++
	return nil
}

func (m *mockToyRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.toys[id]; !ok {
		return domain.ErrToyNotFound
	}
	delete(m.toys, id)
	return nil
}

func (m *mockToyRepository) stored(id string) *domain.Toy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneToy(m.toys[id])
}

type mockUserRepository struct {
	users  map[string]*domain.User
	emails map[string]string
	seq    int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[string]*domain.User),
		emails: make(map[string]string),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.emails[user.Email]; exists {
		return domain.ErrEmailTaken
	}
	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	c := *user
	m.users[user.ID] = &c
	m.emails[user.Email] = user.ID
	return nil
}

func (m *mockUserRepository) FindAll(ctx context.Context, page, limit int) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id string, patch *domain.UserPatch) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	patch.Apply(user)
	c := *user
	return &c, nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	return m.Update(ctx, id, &domain.UserPatch{Role: &role})
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

var errDiskFull = errors.New("disk full")

// failingImageStore accepts okCount files and fails every later Store.
type failingImageStore struct {
	okCount int
	stored  []string
}

func (f *failingImageStore) Store(ctx context.Context, content []byte, ext string) (domain.ImageRef, error) {
	if len(f.stored) >= f.okCount {
		return domain.ImageRef{}, errDiskFull
	}
	name := fmt.Sprintf("img-%d%s", len(f.stored), ext)
	f.stored = append(f.stored, name)
	return domain.ImageRef{Filename: name, Path: "mem/" + name}, nil
}

func (f *failingImageStore) Remove(ctx context.Context, filename string) (bool, error) {
	return false, nil
}
