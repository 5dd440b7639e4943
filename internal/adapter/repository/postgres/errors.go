package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/simaogato/folio-backend/internal/domain"
)

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
}

// scanError maps sql.ErrNoRows to domain.ErrNotFound and wraps anything else
func scanError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(what)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
