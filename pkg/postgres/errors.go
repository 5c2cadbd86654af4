package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/harunaka/careshift/pkg/core/model"
)

const uniqueViolationCode = "23505"

// translatePgError maps driver-level failures onto the engine's error
// taxonomy so callers can classify with errors.Is
func translatePgError(err error, subject string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", subject, model.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%s: %w", subject, model.ErrConflict)
	}

	return err
}
