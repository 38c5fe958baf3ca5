package handlers

import (
	"net/http"

	"github.com/accounthub/apiserver/internal/apperr"
	"github.com/accounthub/apiserver/internal/services"
	"github.com/accounthub/apiserver/types"
	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// UsersHandler provides user-management endpoints. The /me pair is available
// to any authenticated user; everything else is superuser-only.
type UsersHandler struct {
	users *services.UserService
}

func NewUsersHandler(users *services.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// UsersRouter registers user routes on the given router.
func UsersRouter(r chi.Router, users *services.UserService, guard *AccessGuard) {
	handler := NewUsersHandler(users)

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireUser)
		r.Get("/me", handler.Me)
		r.Patch("/me", handler.UpdateMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireUser, guard.RequireSuperuser)
		r.Post("/", handler.CreateUser)
		r.Get("/", handler.ListUsers)
		r.Get("/{userID}", handler.GetUser)
		r.Delete("/{userID}", handler.DeleteUser)
	})
}

// UpdateUserRequest is a partial update: absent fields stay untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Length(3, 254), is.Email),
		validation.Field(&r.Username, validation.Length(3, 150), is.Alphanumeric),
		validation.Field(&r.Password, validation.Length(8, 128)),
		validation.Field(&r.FirstName, validation.Length(0, 150)),
		validation.Field(&r.LastName, validation.Length(0, 150)),
	)
}

// UserListResponse is the paginated list payload.
type UserListResponse struct {
	Items   []types.User `json:"items"`
	Total   int          `json:"total"`
	Skip    int          `json:"skip"`
	Limit   int          `json:"limit"`
	HasMore bool         `json:"has_more"`
}

// Me returns the current user's record.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		writeError(w, apperr.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe applies a partial update to the current user's own record.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		writeError(w, apperr.ErrUnauthorized)
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.users.Update(r.Context(), user.ID, services.UpdateUserParams{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// CreateUser is the administrative create. Same input as registration.
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Create(r.Context(), services.CreateUserParams{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetUser fetches any user by id.
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ListUsers returns an id-ordered page of users plus the total count.
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, err)
		return
	}

	users, total, err := h.users.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		Items:   users,
		Total:   total,
		Skip:    skip,
		Limit:   limit,
		HasMore: total > skip+limit,
	})
}

// DeleteUser physically removes a user. Deleting twice reports not_found.
func (h *UsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
