package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/accounthub/apiserver/internal/events"
	"github.com/accounthub/apiserver/internal/security"
	"github.com/accounthub/apiserver/internal/services"
	"github.com/accounthub/apiserver/internal/store"
	"github.com/accounthub/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// testEnv wires the full router against an in-memory repository, mirroring
// the production wiring in internal/server.
type testEnv struct {
	router *chi.Mux
	repo   *memUserRepo
	users  *services.UserService
	auth   *services.AuthService
	codec  *security.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newMemUserRepo()
	bus := events.NewBus(nil, "test")
	codec := security.NewCodec(security.TokenConfig{
		Secret:     "test-secret",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	userService := services.NewUserService(repo, bus)
	authService := services.NewAuthService(userService, codec, bus)
	guard := NewAccessGuard(userService, codec)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, authService, guard)
	})
	router.Route("/users", func(r chi.Router) {
		UsersRouter(r, userService, guard)
	})

	return &testEnv{
		router: router,
		repo:   repo,
		users:  userService,
		auth:   authService,
		codec:  codec,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, email, username string) types.User {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"username": username,
		"password": "supersecret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user types.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func (e *testEnv) login(t *testing.T, email string) services.TokenPair {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "supersecret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pair services.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func (e *testEnv) promote(t *testing.T, id int) {
	t.Helper()
	user, err := e.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	user.IsSuperuser = true
	_, err = e.repo.Update(context.Background(), user)
	require.NoError(t, err)
}

func (e *testEnv) deactivate(t *testing.T, id int) {
	t.Helper()
	user, err := e.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	user.IsActive = false
	_, err = e.repo.Update(context.Background(), user)
	require.NoError(t, err)
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Code, envelope.Message
}

// memUserRepo is an in-memory services.UserRepository for router tests.
type memUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (m *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return types.User{}, store.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = m.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	m.nextID++
	m.users[user.ID] = user
	return user, nil
}

func (m *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := m.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	for _, existing := range m.users {
		if existing.ID != user.ID && (existing.Email == user.Email || existing.Username == user.Username) {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = user
	return user, nil
}

func (m *memUserRepo) UpdateLastLogin(_ context.Context, id int, at time.Time) error {
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.LastLogin = &at
	user.UpdatedAt = at
	m.users[id] = user
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) List(_ context.Context, skip, limit int) ([]types.User, int, error) {
	all := make([]types.User, 0, len(m.users))
	for _, user := range m.users {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if skip >= total {
		return []types.User{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}
