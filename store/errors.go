package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("store: not found")

// DuplicateKeyError reports a unique constraint violation. Fields names the
// offending columns when the backend exposes them.
type DuplicateKeyError struct {
	Fields []string
	Err    error
}

func (e *DuplicateKeyError) Error() string {
	if len(e.Fields) == 0 {
		return "store: duplicate key"
	}
	return fmt.Sprintf("store: duplicate key on %s", strings.Join(e.Fields, ", "))
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// HasField reports whether field is among the violated columns.
func (e *DuplicateKeyError) HasField(field string) bool {
	for _, f := range e.Fields {
		if strings.EqualFold(f, field) {
			return true
		}
	}
	return false
}

// IsDuplicate reports whether err is a duplicate on field.
func IsDuplicate(err error, field string) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup) && dup.HasField(field)
}
