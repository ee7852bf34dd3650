// Package sets provides a minimal generic hash set.
package sets

// Set is a hash set for comparable keys.
// Usage: s := sets.New("a", "b"); s.Add("c"); if s.Has("b") {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with vals.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// WithCapacity creates an empty set sized for n values.
func WithCapacity[T comparable](n int) Set[T] { return make(Set[T], n) }

// Add inserts v.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// TryAdd inserts v and reports whether it was absent.
func (s Set[T]) TryAdd(v T) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Delete removes v if present.
func (s Set[T]) Delete(v T) { delete(s, v) }
