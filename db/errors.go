package db

import (
	"errors"
	"fmt"

	"librarydesk/library"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// translate maps store errors onto the library error taxonomy.
func translate(err error, entity string, id uint) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &library.NotFoundError{Entity: entity, ID: id}
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", entity, library.ErrDuplicateKey)
	}
	return err
}
