package database

import (
	"fmt"
	"strings"
)

// OrderClause turns client sort keys into an ORDER BY list. Keys are looked up
// in allowed (client name -> column); unknown keys are ignored. A leading "-"
// sorts descending. fallback is used when nothing valid remains.
func OrderClause(keys []string, allowed map[string]string, fallback string) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		dir := "ASC"
		if strings.HasPrefix(key, "-") {
			dir = "DESC"
			key = key[1:]
		}
		col, ok := allowed[key]
		if !ok {
			continue
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}

// Paginate appends LIMIT/OFFSET. A non-positive limit means no limit.
func Paginate(query string, offset, limit int) string {
	if limit <= 0 {
		return query
	}
	if offset < 0 {
		offset = 0
	}
	return query + fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

// ContainsPattern builds a LIKE operand for a case-insensitive substring match
// against LOWER(column).
func ContainsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
