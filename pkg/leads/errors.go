package leads

import "strings"

// isUniqueViolation matches unique constraint failures from drivers that
// do not expose typed error codes (the sqlite driver used in tests).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
