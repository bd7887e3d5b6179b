package postgres

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrEthical07/campusauth/store"
)

// reKeyField extracts column names from "Key (email)=(x) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// mapError translates driver errors into store errors. Unrecognized errors
// are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return &store.DuplicateKeyError{Fields: uniqueViolationFields(pgErr), Err: err}
	}
	return err
}

func uniqueViolationFields(pgErr *pgconn.PgError) []string {
	if pgErr.ColumnName != "" {
		return []string{pgErr.ColumnName}
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		var fields []string
		for _, f := range strings.Split(m[1], ",") {
			fields = append(fields, strings.TrimSpace(f))
		}
		return fields
	}
	return fieldsFromConstraint(pgErr.ConstraintName)
}

// fieldsFromConstraint infers the column from names like "users_email_key".
func fieldsFromConstraint(name string) []string {
	parts := strings.Split(name, "_")
	if len(parts) != 3 {
		return nil
	}
	switch parts[2] {
	case "key", "unique", "idx":
		return []string{parts[1]}
	}
	return nil
}
