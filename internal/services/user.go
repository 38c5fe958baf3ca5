package services

import (
	"context"
	"errors"
	"time"

	"github.com/accounthub/apiserver/internal/apperr"
	"github.com/accounthub/apiserver/internal/events"
	"github.com/accounthub/apiserver/internal/security"
	"github.com/accounthub/apiserver/internal/store"
	"github.com/accounthub/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, skip, limit int) ([]types.User, int, error)
}

// CreateUserParams is the input for creating an account.
type CreateUserParams struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// UpdateUserParams is a partial update: nil fields are left untouched,
// never reset to a default.
type UpdateUserParams struct {
	Email     *string
	Username  *string
	Password  *string
	FirstName *string
	LastName  *string
}

// UserService encapsulates user directory use-cases: CRUD with uniqueness
// enforcement, credential verification, and pagination.
type UserService struct {
	repo UserRepository
	bus  *events.Bus
}

func NewUserService(repo UserRepository, bus *events.Bus) *UserService {
	return &UserService{repo: repo, bus: bus}
}

// GetByID returns the user or apperr.ErrNotFound. Lookups that must not fail
// on absence (uniqueness probes) use lookupByEmail/lookupByUsername instead.
func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// Create builds a user from params: active by default, no elevated roles,
// password hashed before it ever reaches the store. Uniqueness is pre-checked
// here and enforced again by the store's unique indexes on concurrent creates.
func (s *UserService) Create(ctx context.Context, params CreateUserParams) (types.User, error) {
	if _, ok, err := s.lookupByEmail(ctx, params.Email); err != nil {
		return types.User{}, err
	} else if ok {
		return types.User{}, apperr.ErrDuplicateIdentity
	}
	if _, ok, err := s.lookupByUsername(ctx, params.Username); err != nil {
		return types.User{}, err
	} else if ok {
		return types.User{}, apperr.ErrDuplicateIdentity
	}

	hash, err := security.HashPassword(params.Password)
	if err != nil {
		return types.User{}, err
	}

	user := types.User{
		Username:     params.Username,
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: hash,
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, apperr.ErrDuplicateIdentity
		}
		return types.User{}, err
	}
	return created, nil
}

// Update applies a partial update. Only fields present in params change;
// email/username changes re-check uniqueness against other records, and a
// new password is re-hashed before storing.
func (s *UserService) Update(ctx context.Context, id int, params UpdateUserParams) (types.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if params.Email != nil && *params.Email != user.Email {
		if other, ok, err := s.lookupByEmail(ctx, *params.Email); err != nil {
			return types.User{}, err
		} else if ok && other.ID != id {
			return types.User{}, apperr.ErrDuplicateIdentity
		}
		user.Email = *params.Email
	}
	if params.Username != nil && *params.Username != user.Username {
		if other, ok, err := s.lookupByUsername(ctx, *params.Username); err != nil {
			return types.User{}, err
		} else if ok && other.ID != id {
			return types.User{}, apperr.ErrDuplicateIdentity
		}
		user.Username = *params.Username
	}
	if params.Password != nil {
		hash, err := security.HashPassword(*params.Password)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = hash
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return types.User{}, apperr.ErrNotFound
		case errors.Is(err, store.ErrDuplicate):
			return types.User{}, apperr.ErrDuplicateIdentity
		}
		return types.User{}, err
	}
	return updated, nil
}

// Delete physically removes the record. There is no soft delete.
func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	s.bus.Emit(ctx, events.Event{
		Type:   events.UserDeleted,
		UserID: id,
		At:     time.Now().UTC(),
	})
	return nil
}

// Authenticate verifies email+password and returns the matching user.
// Unknown email and password mismatch are indistinguishable to the caller.
// Active status is not checked here; callers check it only after the
// credentials match.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, ok, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	if !ok || !security.CheckPassword(password, user.PasswordHash) {
		return types.User{}, apperr.ErrInvalidCredentials
	}
	return user, nil
}

// List returns a stable id-ordered page plus the total unfiltered count.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]types.User, int, error) {
	return s.repo.List(ctx, skip, limit)
}

func (s *UserService) lookupByEmail(ctx context.Context, email string) (types.User, bool, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, false, nil
		}
		return types.User{}, false, err
	}
	return user, true, nil
}

func (s *UserService) lookupByUsername(ctx context.Context, username string) (types.User, bool, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, false, nil
		}
		return types.User{}, false, err
	}
	return user, true, nil
}
