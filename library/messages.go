package library

import (
	"errors"
	"fmt"
	"strings"
)

// Message returns the sentence shown to a librarian for err, or "" when err
// is not one the librarian can act on.
func Message(err error) string {
	var (
		invalid     *InvalidInputError
		dup         *DuplicateKeyError
		unavailable *UnavailableError
		notFound    *NotFoundError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.As(err, &dup):
		return dup.Error() + "."
	case errors.As(err, &unavailable):
		return fmt.Sprintf("Book \"%s\" is currently not available.", unavailable.Title)
	case errors.As(err, &notFound):
		return capitalize(notFound.Entity) + " not found."
	case errors.Is(err, ErrDuplicateKey):
		return "That value is already in use."
	case errors.Is(err, ErrBookUnavailable):
		return "That book is currently not available."
	case errors.Is(err, ErrNotFound):
		return "Record not found."
	case errors.Is(err, ErrInvalidInput):
		return "Please correct the form."
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
