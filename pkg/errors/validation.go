package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length limits in runes.
const (
	maxNameLength = 256
	maxPathLength = 4096
)

// checkText rejects empty, overlong and control-character text. what names
// the value in the message.
func checkText(what, s string, limit int) error {
	switch {
	case strings.TrimSpace(s) == "":
		return New(ErrCodeInvalidInput, "%s cannot be empty", what)
	case utf8.RuneCountInString(s) > limit:
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", what, limit)
	case strings.ContainsFunc(s, unicode.IsControl):
		return New(ErrCodeInvalidInput, "%s contains control characters", what)
	}
	return nil
}

// ValidateName checks a session or snapshot name. Names are free text shown
// in headers and lists, but must fit on one line.
func ValidateName(name string) error {
	return checkText("name", name, maxNameLength)
}

// ValidatePath checks a local file path given on the command line.
func ValidatePath(path string) error {
	return checkText("path", path, maxPathLength)
}

// sessionIDPattern accepts generated UUIDs and hand-picked slugs.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateSessionID checks an id before it becomes a storage key. The file
// backend hashes keys, but ids also appear in Mongo filters and export file
// names, so anything path-like is refused.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if strings.Contains(id, "..") || !sessionIDPattern.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid session id %q", id)
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "malformed URL")
	}
	if !IsURL(rawURL) || u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must be http(s) with a host: %s", rawURL)
	}
	return nil
}

// IsURL reports whether s is meant as an http(s) URL rather than a path.
func IsURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
