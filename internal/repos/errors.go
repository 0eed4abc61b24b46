package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookmarket/internal/domain"
)

// notFound maps sql.ErrNoRows to a domain NotFound error and wraps anything else.
func notFound(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity)
	}
	return fmt.Errorf("load %s: %w", entity, err)
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
