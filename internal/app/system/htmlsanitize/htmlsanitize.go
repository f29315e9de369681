// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize strips dangerous markup from user-supplied text.
// Transaction notes and other free-text fields pass through here before
// they are persisted.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize keeps user-generated-content markup (formatting, safe links)
// and removes scripts, event handlers and javascript: URLs.
func Sanitize(s string) string {
	return ugcPolicy.Sanitize(s)
}

// Text strips all markup, leaving plain text only.
func Text(s string) string {
	return strictPolicy.Sanitize(s)
}
