package repository

import (
	"errors"
	"strings"
)

// Sentinel errors returned by repositories. Handlers translate these into
// API error codes.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInvalidInput   = errors.New("invalid input")
)

// isDuplicateKeyError reports whether err is a unique-constraint violation.
// Matched textually so it works for both the postgres driver and the sqlite
// driver used in tests.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "23505")
}
