// internal/app/system/search/search.go
package search

import "strings"

// EmailPivotOK reports whether a paged user search should pivot from
// name-based sorting to email-based sorting: the query clearly targets
// an email (contains '@') and the status filter is constrained enough
// to keep the indexed path selective.
func EmailPivotOK(query, status string) bool {
	return strings.Contains(query, "@") && equalsAnyFold(status, "active", "disabled")
}

func equalsAnyFold(s string, vals ...string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, v := range vals {
		if s == strings.ToLower(v) {
			return true
		}
	}
	return false
}
