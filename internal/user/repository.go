// Package user manages user profiles: signup, the one-time profile setup
// that claims a unique username, and later profile edits.
package user

import (
	"context"
	"errors"
)

// Error definitions
var (
	// ErrNotFound is returned when a user does not exist
	ErrNotFound = errors.New("user not found")

	// ErrAlreadyExists is returned when creating a user whose ID is taken
	ErrAlreadyExists = errors.New("user already exists")

	// ErrUsernameTaken is returned when another user holds the username
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrProfileAlreadyComplete is returned when setup runs a second time
	ErrProfileAlreadyComplete = errors.New("profile is already set up")

	// ErrProfileIncomplete is returned when an operation needs a set-up profile
	ErrProfileIncomplete = errors.New("profile setup is not complete")
)

// Repository defines the interface for user storage operations
type Repository interface {
	// Create stores a new user under user.ID.
	// Returns ErrAlreadyExists if the ID is taken.
	Create(ctx context.Context, user User) error

	// Get retrieves a user by ID.
	// Returns nil without error if the user does not exist.
	Get(ctx context.Context, id string) (*User, error)

	// GetByUsername retrieves the user holding a lowercase username.
	// Returns nil without error if no user holds it.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Update merges the stored fields of user into its document
	Update(ctx context.Context, user User) error

	// ClaimUsername reserves username for uid.
	// Returns ErrUsernameTaken if it is already reserved.
	ClaimUsername(ctx context.Context, username, uid string) error

	// ReleaseUsername drops a reservation made by ClaimUsername
	ReleaseUsername(ctx context.Context, username string) error
}
