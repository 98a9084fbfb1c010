package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when the user bound or a friend-list
	// bound has been reached.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidUser is returned for identifiers outside the allocated range.
	ErrInvalidUser = errors.New("invalid user")

	// ErrSelfFriendship is returned when a user is befriended with itself.
	ErrSelfFriendship = fmt.Errorf("%w: self friendship", ErrInvalidUser)

	// ErrUserNotFound is returned when a name lookup has no match.
	ErrUserNotFound = errors.New("user not found")
)

func invalidUser(id UserID) error {
	return fmt.Errorf("%w: id %d", ErrInvalidUser, id)
}
