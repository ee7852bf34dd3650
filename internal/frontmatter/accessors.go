package frontmatter

import (
	"strconv"
	"strings"
	"time"
)

// String returns a trimmed, non-blank scalar value.
func (f FrontMatter) String(key string) (string, bool) {
	v, ok := f.Get(key)
	if !ok || v.IsList {
		return "", false
	}
	s := strings.TrimSpace(v.Scalar)
	if s == "" {
		return "", false
	}
	return s, true
}

// StringOr returns the first non-blank scalar among keys, or def.
func (f FrontMatter) StringOr(def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := f.String(k); ok {
			return s
		}
	}
	return def
}

// Bool accepts true/false, yes/no, y/n and 1/0 in any case. Absent or
// unrecognised values yield def.
func (f FrontMatter) Bool(key string, def bool) bool {
	s, ok := f.String(key)
	if !ok {
		return def
	}
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return true
	case "false", "no", "n", "0":
		return false
	default:
		return def
	}
}

// Int parses a scalar integer, returning def when absent or invalid.
func (f FrontMatter) Int(key string, def int) int {
	s, ok := f.String(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// List returns the list stored under key. A scalar is returned as a single item
// list; an absent key returns an empty, non-nil slice.
func (f FrontMatter) List(key string) []string {
	v, ok := f.Get(key)
	if !ok {
		return []string{}
	}
	if v.IsList {
		return v.List
	}
	if s := strings.TrimSpace(v.Scalar); s != "" {
		return []string{s}
	}
	return []string{}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Date parses an ISO-8601 style timestamp into a UTC instant. Values without a
// zone are read as UTC. Parse failures report false and never error.
func (f FrontMatter) Date(key string) (time.Time, bool) {
	s, ok := f.String(key)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
