package shared

import (
	"strings"

	"golang.org/x/text/cases"
)

// MinSearchLength is the shortest customer-name query the API accepts.
const MinSearchLength = 2

var foldCaser = cases.Fold()

// FoldName normalizes a name for case-insensitive comparison. Customer name
// uniqueness is enforced over this form.
func FoldName(s string) string {
	return foldCaser.String(strings.TrimSpace(s))
}

// MatchesQuery reports whether name contains query as a case-insensitive
// substring. Queries below MinSearchLength never match.
func MatchesQuery(name, query string) bool {
	q := FoldName(query)
	if len(q) < MinSearchLength {
		return false
	}
	return strings.Contains(FoldName(name), q)
}
