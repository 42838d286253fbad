package repository

import "errors"

// Common repository errors
var (
	// ErrBoardNotFound is returned when a board is not found
	ErrBoardNotFound = errors.New("board not found")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrElementNotFound is returned when a board element is not found
	ErrElementNotFound = errors.New("board element not found")

	// ErrInvalidElementID is returned when a block id cannot be used as an
	// element row primary key
	ErrInvalidElementID = errors.New("block id is not a valid UUID")

	// ErrElementConflict is returned when an incoming block id already
	// identifies an element row on a different board
	ErrElementConflict = errors.New("element id belongs to another board")
)
