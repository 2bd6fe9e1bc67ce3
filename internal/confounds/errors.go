// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package confounds

import (
	"errors"
	"fmt"
)

var (
	// ErrConfoundsNotFound is returned when the resolved confound table
	// does not exist.
	ErrConfoundsNotFound = errors.New("confound table not found")

	// ErrEmptyHeader is returned when the confound table has no header line.
	ErrEmptyHeader = errors.New("confound table has no header")
)

// NotFoundError reports the confound table path that was expected but absent.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConfoundsNotFound, e.Path)
}

// Unwrap lets errors.Is match ErrConfoundsNotFound.
func (e *NotFoundError) Unwrap() error { return ErrConfoundsNotFound }

// DuplicateColumnError reports a header that names the same column twice.
type DuplicateColumnError struct {
	Path   string
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column %q in header of %s", e.Column, e.Path)
}
