// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are stored and
// compared in this normalized form everywhere.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// GroupName trims surrounding whitespace but preserves case. Uniqueness is
// enforced on the folded form (see models.Group.NameCI), not on this value.
func GroupName(s string) string {
	return strings.TrimSpace(s)
}
