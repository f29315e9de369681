// Package normalize centralizes the trim/case rules applied to incoming
// string fields before they are validated or persisted.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Currency uppercases and trims an ISO 4217 currency code.
func Currency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// TransactionType lowercases and trims a transaction type ("in"/"out").
func TransactionType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Category trims an expense category, preserving case.
func Category(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a free-text query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
