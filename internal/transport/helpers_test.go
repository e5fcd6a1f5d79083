package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"toy-catalog/internal/domain"
	"toy-catalog/internal/repository"
	"toy-catalog/internal/service"
	"toy-catalog/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memToyRepository struct {
	seq   int
	order []string
	toys  map[string]domain.Toy
}

func newMemToyRepository() *memToyRepository {
	return &memToyRepository{toys: map[string]domain.Toy{}}
}

func (m *memToyRepository) copyOf(t domain.Toy) *domain.Toy {
	t.Images = append([]domain.ImageRef{}, t.Images...)
	return &t
}

func (m *memToyRepository) Create(ctx context.Context, toy *domain.Toy) error {
	m.seq++
	toy.ID = fmt.Sprintf("%d", m.seq)
	m.toys[toy.ID] = *m.copyOf(*toy)
	m.order = append(m.order, toy.ID)
	return nil
}

func (m *memToyRepository) FindAll(ctx context.Context, page, limit int) ([]*domain.Toy, error) {
	page, limit = repository.NormalizePage(page, limit)
	out := []*domain.Toy{}
	for i := repository.Offset(page, limit); i < len(m.order) && len(out) < limit; i++ {
		if t, ok := m.toys[m.order[i]]; ok {
			out = append(out, m.copyOf(t))
		}
	}
	return out, nil
}

func (m *memToyRepository) FindByID(ctx context.Context, id string) (*domain.Toy, error) {
	t, ok := m.toys[id]
	if !ok {
		return nil, domain.ErrToyNotFound
	}
	return m.copyOf(t), nil
}

func (m *memToyRepository) Update(ctx context.Context, id string, patch *domain.ToyPatch) (*domain.Toy, error) {
	t, ok := m.toys[id]
	if !ok {
		return nil, domain.ErrToyNotFound
	}
	patch.Apply(&t)
	m.toys[id] = t
	return m.copyOf(t), nil
}

func (m *memToyRepository) Save(ctx context.Context, toy *domain.Toy) error {
	if _, ok := m.toys[toy.ID]; !ok {
		return domain.ErrToyNotFound
	}
	m.toys[toy.ID] = *m.copyOf(*toy)
	return nil
}

func (m *memToyRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.toys[id]; !ok {
		return domain.ErrToyNotFound
	}
	delete(m.toys, id)
	return nil
}

type memUserRepository struct {
	seq   int
	users map[string]domain.User
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: map[string]domain.User{}}
}

func (m *memUserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range m.users {
		if u.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

func (m *memUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.emailTaken(user.Email, "") {
		return domain.ErrEmailTaken
	}
	m.seq++
	user.ID = fmt.Sprintf("%d", m.seq)
	m.users[user.ID] = *user
	return nil
}

func (m *memUserRepository) FindAll(ctx context.Context, page, limit int) ([]*domain.User, error) {
	out := []*domain.User{}
	for i := 1; i <= m.seq; i++ {
		if u, ok := m.users[fmt.Sprintf("%d", i)]; ok {
			out = append(out, &u)
		}
	}
	return out, nil
}

func (m *memUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUserRepository) Update(ctx context.Context, id string, patch *domain.UserPatch) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Email != nil && m.emailTaken(*patch.Email, id) {
		return nil, domain.ErrEmailTaken
	}
	patch.Apply(&u)
	m.users[id] = u
	return &u, nil
}

func (m *memUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	return m.Update(ctx, id, &domain.UserPatch{Role: &role})
}

func (m *memUserRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type testAPI struct {
	router http.Handler
	toys   *memToyRepository
	users  *memUserRepository
	fs     afero.Fs
}

func newTestAPI(limits UploadLimits) *testAPI {
	fs := afero.NewMemMapFs()
	toys := newMemToyRepository()
	users := newMemUserRepository()
	logger := zap.NewNop()

	toyService := service.NewToyService(toys, storage.NewLocalImageStore(fs, "uploads"), "/uploads/toys")
	userService := service.NewUserService(users)

	r := chi.NewRouter()
	NewToyHandler(toyService, limits, logger).RegisterRoutes(r)
	NewUserHandler(userService, logger).RegisterRoutes(r)

	return &testAPI{router: r, toys: toys, users: users, fs: fs}
}

func defaultLimits() UploadLimits {
	return UploadLimits{MaxFileSize: 1024, MaxFiles: 3}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

type part struct {
	field    string
	filename string
	content  []byte
}

func (a *testAPI) upload(t *testing.T, path string, parts ...part) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func validToyBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Lego Castle",
		"category":    domain.CategoryLegos,
		"description": "Big castle",
		"review":      "Took all weekend",
		"rating":      5,
	}
}

func (a *testAPI) createToy(t *testing.T) domain.Toy {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/toys", validToyBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.Toy](t, rec)
}
