package library

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrNotFound        = errors.New("not found")
	ErrBookUnavailable = errors.New("book unavailable")
)

// NotFoundError names the record a lookup could not resolve.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string        { return fmt.Sprintf("%s %d not found", e.Entity, e.ID) }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateKeyError reports a value that collides with a unique column.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s \"%s\" is already in use", e.Field, e.Value)
}
func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// InvalidInputError carries one human readable sentence per rejected field.
type InvalidInputError struct {
	Problems []string
}

func (e *InvalidInputError) Error() string        { return strings.Join(e.Problems, " ") }
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// UnavailableError is returned when a book is asked for while it is out.
type UnavailableError struct {
	BookID uint
	Title  string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("book \"%s\" is currently not available", e.Title)
}
func (e *UnavailableError) Is(target error) bool { return target == ErrBookUnavailable }
