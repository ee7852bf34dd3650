// Package foundation holds small generic helpers shared by the configuration
// and presentation layers.
package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Check validates one value and reports field problems.
type Check[T any] func(T) Problems

// FieldProblem is a single invalid field.
type FieldProblem struct {
	Field   string
	Code    string
	Message string
}

func (p FieldProblem) Error() string {
	if p.Field == "" {
		return p.Message
	}
	return fmt.Sprintf("%s: %s", p.Field, p.Message)
}

// Problems collects field problems; the zero value means valid.
type Problems []FieldProblem

// Problem builds a single-entry Problems.
func Problem(field, code, format string, args ...any) Problems {
	return Problems{{Field: field, Code: code, Message: fmt.Sprintf(format, args...)}}
}

// Err converts the problems to a configuration error, or nil when empty.
func (p Problems) Err() error {
	if len(p) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(p))
	fields := make([]string, 0, len(p))
	for _, fp := range p {
		msgs = append(msgs, fp.Error())
		fields = append(fields, fp.Field)
	}
	return errors.ConfigError("invalid configuration: "+strings.Join(msgs, "; ")).
		WithContext("fields", fields).
		Build()
}

// Run applies every check to value and concatenates the problems.
func Run[T any](value T, checks ...Check[T]) Problems {
	var out Problems
	for _, c := range checks {
		out = append(out, c(value)...)
	}
	return out
}

// OneOf requires the value to be one of allowed.
func OneOf[T comparable](field string, allowed ...T) Check[T] {
	return func(v T) Problems {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return Problem(field, "one_of", "must be one of %v, got %v", allowed, v)
	}
}

// Between requires lo <= value <= hi.
func Between(field string, lo, hi int) Check[int] {
	return func(v int) Problems {
		if v < lo || v > hi {
			return Problem(field, "range", "must be between %d and %d, got %d", lo, hi, v)
		}
		return nil
	}
}

// NotBlank requires a non-empty string after trimming.
func NotBlank(field string) Check[string] {
	return func(v string) Problems {
		if strings.TrimSpace(v) == "" {
			return Problem(field, "required", "must not be empty")
		}
		return nil
	}
}
