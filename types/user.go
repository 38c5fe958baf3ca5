package types

import "time"

// User represents an account in the system.
// It contains identity, role flags, and audit metadata.
type User struct {
	// ID is the unique identifier of the user. Immutable once assigned.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user. Case-sensitive.
	Username string `json:"username" db:"username"`

	// Email is the user's unique email address.
	Email string `json:"email" db:"email"`

	// FirstName is the user's given name. Optional.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name. Optional.
	LastName string `json:"last_name" db:"last_name"`

	// PasswordHash stores the hashed representation of the user's password,
	// or the unusable-password sentinel for accounts provisioned without
	// login capability. Never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// IsActive reports whether the account may authenticate.
	IsActive bool `json:"is_active" db:"is_active"`

	// IsStaff marks staff accounts. Carried for admin tooling parity;
	// grants no extra permissions in this service.
	IsStaff bool `json:"is_staff" db:"is_staff"`

	// IsSuperuser grants access to the user-management endpoints.
	IsSuperuser bool `json:"is_superuser" db:"is_superuser"`

	// DateJoined is when the account was registered.
	DateJoined time.Time `json:"date_joined" db:"date_joined"`

	// LastLogin is the timestamp of the most recent successful login.
	LastLogin *time.Time `json:"last_login" db:"last_login"`

	// CreatedAt is the timestamp when the record was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent mutation.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the first name plus the last name, with a space in between.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
