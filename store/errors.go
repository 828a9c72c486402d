package store

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("invalid command")
	ErrDuplicate   = errors.New("duplicate command")
	ErrNotFound    = errors.New("command not found")
	ErrPersistence = errors.New("could not save commands")
	ErrCorruptData = errors.New("command data file is corrupted")
)

// ValidationError reports a missing or blank field on add.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps a failure to write the data file.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
