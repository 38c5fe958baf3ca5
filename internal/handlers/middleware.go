package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/accounthub/apiserver/internal/apperr"
	"github.com/accounthub/apiserver/internal/security"
	"github.com/accounthub/apiserver/internal/services"
)

// AccessGuard resolves the current user from a bearer token and enforces
// role checks. Each check is strictly ordered and terminal on first failure:
// token verification, subject resolution, active status, then (for elevated
// routes) the superuser role.
type AccessGuard struct {
	users *services.UserService
	codec *security.Codec
}

func NewAccessGuard(users *services.UserService, codec *security.Codec) *AccessGuard {
	return &AccessGuard{users: users, codec: codec}
}

// RequireUser verifies the access token, resolves its subject to an active
// user, and injects the user into the request context. Token failures
// propagate unchanged; an unresolvable subject is unauthorized, never a 404.
func (g *AccessGuard) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			writeError(w, err)
			return
		}

		subject, err := g.codec.Verify(token, security.TokenAccess)
		if err != nil {
			writeError(w, err)
			return
		}

		id, err := strconv.Atoi(subject)
		if err != nil {
			writeError(w, apperr.ErrInvalidToken)
			return
		}

		user, err := g.users.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				writeError(w, apperr.ErrUnauthorized)
				return
			}
			writeError(w, err)
			return
		}

		if !user.IsActive {
			writeError(w, apperr.ErrInactiveUser)
			return
		}

		next.ServeHTTP(w, r.WithContext(withCurrentUser(r.Context(), user)))
	})
}

// RequireSuperuser gates elevated operations. It assumes RequireUser already
// ran on the route.
func (g *AccessGuard) RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r.Context())
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		if !user.IsSuperuser {
			writeError(w, apperr.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
