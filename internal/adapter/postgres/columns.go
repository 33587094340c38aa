package postgres

import "strings"

// JoinColumns renders a column list for RETURNING clauses.
func JoinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
