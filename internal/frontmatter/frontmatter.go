// Package frontmatter parses the `---` delimited metadata header at the top of a
// Markdown document.
//
// The grammar is a small, line-oriented subset of YAML: `key: value` scalars and
// `key:` followed by `- item` lines for lists. Anything the parser does not
// understand is skipped rather than reported, so a document with a broken header
// still renders.
package frontmatter

import (
	"strings"
)

const delimiter = "---"

// Value is a single front matter value. Lists and scalars are kept distinct.
type Value struct {
	Scalar string
	List   []string
	IsList bool
}

type field struct {
	key   string
	value Value
}

// FrontMatter is an ordered, case-insensitive key/value map. The zero value is an
// empty map ready for lookups.
type FrontMatter struct {
	fields []field
	byKey  map[string]int
}

// Parse splits raw document text into its front matter and body.
//
// Text that does not open with a delimiter line, or whose block is never closed,
// yields an empty FrontMatter and the original text unchanged.
func Parse(raw string) (FrontMatter, string) {
	var fm FrontMatter

	rest, ok := stripOpening(raw)
	if !ok {
		return fm, raw
	}

	block, body, ok := splitClosing(rest)
	if !ok {
		return fm, raw
	}

	fm.parseBlock(block)
	return fm, strings.TrimLeft(body, "\r\n")
}

func stripOpening(raw string) (string, bool) {
	switch {
	case strings.HasPrefix(raw, delimiter+"\r\n"):
		return raw[len(delimiter)+2:], true
	case strings.HasPrefix(raw, delimiter+"\n"):
		return raw[len(delimiter)+1:], true
	default:
		return "", false
	}
}

// splitClosing finds the first line consisting only of the delimiter and returns
// the text before it and the text after its line break.
func splitClosing(rest string) (block, body string, ok bool) {
	offset := 0
	for offset <= len(rest) {
		end := strings.IndexByte(rest[offset:], '\n')
		var line string
		next := len(rest)
		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}
		if strings.TrimRight(line, "\r \t") == delimiter {
			return rest[:offset], rest[next:], true
		}
		if end < 0 {
			break
		}
		offset = next
	}
	return "", "", false
}

func (f *FrontMatter) parseBlock(block string) {
	block = strings.ReplaceAll(block, "\r\n", "\n")

	var listKey string
	var items []string
	flush := func() {
		if listKey != "" && len(items) > 0 {
			f.set(listKey, Value{List: items, IsList: true})
		}
		listKey = ""
		items = nil
	}

	for _, line := range strings.Split(block, "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}

		if listKey != "" && (strings.HasPrefix(s, "- ") || s == "-") {
			item := unquote(strings.TrimSpace(strings.TrimPrefix(s, "-")))
			if item != "" {
				items = append(items, item)
			}
			continue
		}

		flush()

		idx := strings.IndexByte(s, ':')
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(s[:idx])
		val := strings.TrimSpace(s[idx+1:])
		if key == "" {
			continue
		}
		if val == "" {
			listKey = key
			continue
		}
		f.set(key, Value{Scalar: unquote(val)})
	}
	flush()
}

func (f *FrontMatter) set(key string, v Value) {
	norm := strings.ToLower(key)
	if f.byKey == nil {
		f.byKey = make(map[string]int)
	}
	if i, ok := f.byKey[norm]; ok {
		f.fields[i].value = v
		return
	}
	f.byKey[norm] = len(f.fields)
	f.fields = append(f.fields, field{key: key, value: v})
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Len reports the number of keys.
func (f FrontMatter) Len() int { return len(f.fields) }

// Keys returns keys in the order they first appeared, with their original casing.
func (f FrontMatter) Keys() []string {
	keys := make([]string, len(f.fields))
	for i, fd := range f.fields {
		keys[i] = fd.key
	}
	return keys
}

// Get looks a key up case-insensitively.
func (f FrontMatter) Get(key string) (Value, bool) {
	i, ok := f.byKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Value{}, false
	}
	v := f.fields[i].value
	if v.IsList {
		v.List = append([]string(nil), v.List...)
	}
	return v, true
}

// Map returns a plain copy suitable for templates and JSON. Lists become []string.
func (f FrontMatter) Map() map[string]any {
	out := make(map[string]any, len(f.fields))
	for _, fd := range f.fields {
		if fd.value.IsList {
			out[fd.key] = append([]string(nil), fd.value.List...)
			continue
		}
		out[fd.key] = fd.value.Scalar
	}
	return out
}
