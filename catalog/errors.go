package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every lookup that finds nothing
var ErrNotFound = errors.New("not found")

// ValidationError is a malformed or incomplete request
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

// DuplicateError is a project name collision
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("Project %q already exists", e.Name)
}

// StoreError is a failure of the database or the object store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
}
