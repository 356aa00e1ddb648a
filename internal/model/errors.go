package model

import "errors"

var (
	// ErrNotFound is returned when a referenced user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyRequested is returned for a duplicate pending request.
	ErrAlreadyRequested = errors.New("friend request already sent")
	// ErrNoSuchRequest is returned when accept or reject finds no pending entry.
	ErrNoSuchRequest = errors.New("no friend request from this user")
	// ErrSelfRequest is returned when a user targets themselves.
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")
	// ErrUsernameTaken is returned when creating a user with an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrStorage wraps failures of the underlying persistence.
	ErrStorage = errors.New("storage failure")
)
