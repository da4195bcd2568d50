package user

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyExists is returned by Create when the username is taken.
	ErrAlreadyExists = errors.New("user already exists")

	// ErrNotFound is returned when the referenced username does not exist.
	ErrNotFound = errors.New("user not found")
)

// Update describes a partial mutation of a user record. Nil fields are left
// untouched, so concurrent updates to disjoint fields never clobber each other.
type Update struct {
	Nick    *string
	Balance *float64
	Avatar  *string
}

// Store is the durable mapping from username to account record.
//
// Implementations must keep the check-and-insert of Create atomic with respect
// to concurrent registrations of the same name, and must complete the durable
// write before reporting a mutation as successful.
type Store interface {
	// Get returns the user with the given name, or ErrNotFound.
	Get(ctx context.Context, name string) (User, error)

	// Create inserts a new user, or returns ErrAlreadyExists.
	Create(ctx context.Context, u User) error

	// Update applies the non-nil fields of upd to the named user, or returns
	// ErrNotFound. Nicknames are truncated to MaxNickLen on write.
	Update(ctx context.Context, name string, upd Update) error

	// List returns a snapshot of all users ordered by registration time.
	// The snapshot is isolated from later store writes.
	List(ctx context.Context) ([]User, error)
}
