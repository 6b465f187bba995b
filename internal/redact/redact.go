// Package redact removes sensitive fragments from strings before they are
// logged. Error text from the persistence layer can carry database file
// paths, SQL fragments, and host names that have no business in log output.
package redact

import "regexp"

// Placeholders substituted for matched fragments.
const (
	RedactedPathPlaceholder = "[REDACTED_PATH]"
	RedactedSQLPlaceholder  = "[REDACTED_SQL]"
	RedactedHostPlaceholder = "[REDACTED_HOST]"
)

var (
	// File paths, Unix and Windows.
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	winPathRegex  = regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`)

	// SQL queries and fragments.
	sqlRegex = regexp.MustCompile(
		`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()?=]+(?:FROM|INTO|SET|TABLE|WHERE)(?:[\s\w,*()='"?]+)?`,
	)

	// Host names with optional ports.
	hostPortRegex = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	)

	patternPlaceholders = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{unixPathRegex, RedactedPathPlaceholder},
		{winPathRegex, RedactedPathPlaceholder},
		{sqlRegex, RedactedSQLPlaceholder},
		{hostPortRegex, RedactedHostPlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range patternPlaceholders {
		result = p.pattern.ReplaceAllString(result, p.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
