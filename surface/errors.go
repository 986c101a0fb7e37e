package surface

import "errors"

// Sentinel errors for the surface package.
var (
	// ErrNilOwner is returned by New when no owning loop is given.
	ErrNilOwner = errors.New("surface: nil owner loop")

	// ErrNotOwner is returned by screen methods when the calling
	// context is not on the owner loop's goroutine.
	ErrNotOwner = errors.New("surface: caller is not on the owner loop")

	// ErrClosed is returned once the surface has been closed.
	ErrClosed = errors.New("surface: surface is closed")
)
