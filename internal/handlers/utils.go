package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/accounthub/apiserver/internal/apperr"
	"github.com/accounthub/apiserver/types"
	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
	maxLimit     = 1000
)

type contextKey string

const contextUserKey contextKey = "current_user"

// currentUser returns the user resolved by the access guard for this request.
func currentUser(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

func withCurrentUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeError translates any failure into the uniform {code, message}
// envelope. Unknown errors degrade to internal_error/500.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	writeJSON(w, appErr.Status, appErr)
}

// decodeJSON decodes the body and runs the request's own validation.
// Malformed JSON is a validation failure, same as an out-of-range field.
func decodeJSON(r *http.Request, dst interface{ Validate() error }) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ErrValidation.WithMessage("Malformed request body.")
	}
	if err := dst.Validate(); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return apperr.ErrValidation.WithMessage(verrs.Error())
		}
		return apperr.ErrValidation
	}
	return nil
}

func parsePagination(r *http.Request) (skip, limit int, err error) {
	skip = defaultSkip
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("skip")); raw != "" {
		skip, err = strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return 0, 0, apperr.ErrValidation.WithMessage("Invalid skip parameter.")
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, apperr.ErrValidation.WithMessage("Invalid limit parameter.")
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit, nil
}

func parseUserID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperr.ErrValidation.WithMessage("Invalid user id.")
	}
	return id, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", apperr.ErrUnauthorized
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperr.ErrUnauthorized
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", apperr.ErrUnauthorized
	}
	return token, nil
}
