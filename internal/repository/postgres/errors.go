package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes this layer inspects.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// IsPgDuplicateError reports whether err is a unique constraint
// violation
func IsPgDuplicateError(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeUniqueViolation
}

// IsPgNoRowsError reports whether err means the query matched nothing
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError reports whether err is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeForeignKeyViolation
}

// IsPgCheckError reports whether err is a check constraint violation,
// e.g. the depth bound on the folders table
func IsPgCheckError(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeCheckViolation
}

// ConstraintName extracts the violated constraint's name, if any
func ConstraintName(err error) string {
	if pgErr := pgError(err); pgErr != nil {
		return pgErr.ConstraintName
	}
	return ""
}
