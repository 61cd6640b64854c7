package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a concurrent writer changed the row first.
	ErrConflict = errors.New("concurrent modification")
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// IsLockContention reports whether err means another transaction held the
// lock: SQLite busy/locked, or a PostgreSQL deadlock or serialization failure.
func IsLockContention(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40p01")
}
