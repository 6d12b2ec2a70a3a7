package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"TASKMANAGER_BACK-END/internal/config"
	"TASKMANAGER_BACK-END/internal/handlers"
	"TASKMANAGER_BACK-END/internal/models"
	"TASKMANAGER_BACK-END/internal/repository"
	"TASKMANAGER_BACK-END/internal/routes"
)

// memUserStore is an in-memory UserStore with the same duplicate-email
// atomicity contract as the Postgres implementation.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]models.User)}
}

func (s *memUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		found := u
		return &found, nil
	}
	return nil, repository.ErrNotFound
}

func (s *memUserStore) countByEmail(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		if u.Email == email {
			n++
		}
	}
	return n
}

func (s *memUserStore) get(id uuid.UUID) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// memTaskStore is an in-memory owner-scoped TaskStore.
type memTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]models.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[uuid.UUID]models.Task)}
}

func (s *memTaskStore) Create(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

func (s *memTaskStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memTaskStore) GetByID(_ context.Context, id, ownerID uuid.UUID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok && t.OwnerID == ownerID {
		found := t
		return &found, nil
	}
	return nil, repository.ErrNotFound
}

func (s *memTaskStore) Update(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[task.ID]; ok && t.OwnerID == task.OwnerID {
		s.tasks[task.ID] = *task
		return nil
	}
	return repository.ErrNotFound
}

func (s *memTaskStore) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok && t.OwnerID == ownerID {
		delete(s.tasks, id)
		return nil
	}
	return repository.ErrNotFound
}

func (s *memTaskStore) get(id uuid.UUID) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

// newTestMux wires the real routes, middleware, and handlers over in-memory stores.
func newTestMux(t *testing.T) (*http.ServeMux, *memUserStore, *memTaskStore) {
	t.Helper()
	jwtCfg := &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: 30 * time.Minute}
	users := newMemUserStore()
	tasks := newMemTaskStore()

	mux := http.NewServeMux()
	routes.SetupRoutes(mux,
		handlers.NewAuthHandler(users, jwtCfg),
		handlers.NewTasksHandler(tasks),
		handlers.NewHealthHandler(okPinger{}),
		nil,
		users,
		jwtCfg,
	)
	return mux, users, tasks
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerUser(t *testing.T, mux *http.ServeMux, name, email, password string) map[string]any {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/auth/register", "",
		`{"name":"`+name+`","email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

func loginUser(t *testing.T, mux *http.ServeMux, email, password string) string {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/auth/login", "",
		`{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}
