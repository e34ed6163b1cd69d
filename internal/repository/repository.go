// Package repository provides data access layer implementations for the application.
//
// Lookups return (nil, nil) for a missing row; deciding whether a miss is a
// user-facing error belongs to the service layer. Deletes by id are no-ops
// when the row is already gone.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicate reports a violated uniqueness invariant (duplicate email or
// nickname, second like for the same (post, user) pair).
var ErrDuplicate = errors.New("duplicate row")

// isUniqueConstraintError detects unique violations across postgres
// (SQLSTATE 23505) and the sqlite driver used in tests.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
