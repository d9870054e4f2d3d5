package protocol

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/akismet/akismetclient-go/errors"
)

// dateLayout is the ISO-8601 UTC form used by the *_gmt fields
const dateLayout = "2006-01-02T15:04:05.000Z"

// stringValue returns m[key] if it holds a string, otherwise ""
func stringValue(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// setIfNotEmpty stores value under key unless it is empty
func setIfNotEmpty(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// formatDate renders t in UTC, or "" for the zero time
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// parseDate reads an optional date field. Non-string and empty values leave the date unset;
// anything else must be RFC 3339.
func parseDate(m map[string]any, key string) (time.Time, error) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.NewParseError(key, err)
	}
	return t.UTC(), nil
}

// formatURL renders u, or "" when u is nil
func formatURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

// parseURLField reads an optional URL field; a present but invalid value fails the parse
func parseURLField(m map[string]any, key string) (*url.URL, error) {
	s := stringValue(m, key)
	if s == "" {
		return nil, nil
	}
	return ParseURL(key, s)
}

// ParseURL parses an absolute URL. Hierarchical URLs without a path get "/" so that
// "https://example.com" and "https://example.com/" serialize identically.
func ParseURL(field, raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.NewParseError(field, err)
	}
	if u.Scheme == "" {
		return nil, errors.NewParseError(field, fmt.Errorf("%q is not an absolute URL", raw))
	}
	if u.Host != "" && u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u, nil
}

// MustParseURL is like ParseURL but panics on error. Intended for constants and tests.
func MustParseURL(raw string) *url.URL {
	u, err := ParseURL("url", raw)
	if err != nil {
		panic(err)
	}
	return u
}
