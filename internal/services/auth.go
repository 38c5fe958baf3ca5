package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/accounthub/apiserver/internal/apperr"
	"github.com/accounthub/apiserver/internal/events"
	"github.com/accounthub/apiserver/internal/security"
	"github.com/accounthub/apiserver/types"
)

// TokenPair is an access/refresh token set issued at login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthService composes the user directory, the token codec, and the event
// bus into registration, login, refresh, and logout use-cases.
type AuthService struct {
	users *UserService
	codec *security.Codec
	bus   *events.Bus
}

func NewAuthService(users *UserService, codec *security.Codec, bus *events.Bus) *AuthService {
	return &AuthService{
		users: users,
		codec: codec,
		bus:   bus,
	}
}

// Register creates an immediately usable account: active, joined now, no
// email-verification gate.
func (a *AuthService) Register(ctx context.Context, params CreateUserParams) (types.User, error) {
	user, err := a.users.Create(ctx, params)
	if err != nil {
		return types.User{}, err
	}

	a.bus.Emit(ctx, events.Event{
		Type:   events.UserRegistered,
		UserID: user.ID,
		Email:  user.Email,
		At:     time.Now().UTC(),
	})
	return user, nil
}

// Login verifies credentials, then checks active status. The order matters:
// a wrong password on an inactive account reports invalid credentials, not
// inactivity. On success the last-login timestamp is stamped and both token
// types are issued for the user id.
func (a *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := a.users.Authenticate(ctx, email, password)
	if err != nil {
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, apperr.ErrInactiveUser.WithStatus(http.StatusUnauthorized)
	}

	if err := a.users.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return TokenPair{}, err
	}

	pair, err := a.issuePair(user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	a.bus.Emit(ctx, events.Event{
		Type:   events.UserLoggedIn,
		UserID: user.ID,
		Email:  user.Email,
		At:     time.Now().UTC(),
	})
	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The presented
// token stays valid until its natural expiry; there is no revocation list.
// A subject that no longer resolves to an active user is an invalid token,
// not a not-found.
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	subject, err := a.codec.Verify(refreshToken, security.TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	id, err := strconv.Atoi(subject)
	if err != nil {
		return TokenPair{}, apperr.ErrInvalidToken
	}

	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return TokenPair{}, apperr.ErrInvalidToken
		}
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, apperr.ErrInvalidToken
	}

	return a.issuePair(user.ID)
}

// Logout is a stateless acknowledgment. Tokens remain valid until expiry;
// this is the hook for a future revocation mechanism.
func (a *AuthService) Logout(ctx context.Context, user types.User) string {
	a.bus.Emit(ctx, events.Event{
		Type:   events.UserLoggedOut,
		UserID: user.ID,
		Email:  user.Email,
		At:     time.Now().UTC(),
	})
	return "Successfully logged out"
}

func (a *AuthService) issuePair(userID int) (TokenPair, error) {
	subject := strconv.Itoa(userID)

	access, err := a.codec.Issue(subject, security.TokenAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := a.codec.Issue(subject, security.TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
