// Package sqlxrepos holds the Postgres repositories built on sqlx.
package sqlxrepos

import (
	"strings"

	"github.com/google/uuid"

	"github.com/belajarku/backend/core"
)

func newID() string {
	return uuid.New().String()
}

// orderBy renders an ORDER BY clause from the requested ordering, falling
// back to the given default clause.
func orderBy(ordering []core.DBOrdering, fallback string) string {
	if len(ordering) == 0 {
		if fallback == "" {
			return ""
		}
		return " ORDER BY " + fallback
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
