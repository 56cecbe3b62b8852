// extset.go implements the type-keyed extension state store.
package mdit

import "reflect"

// ExtSet is a heterogeneous store holding at most one value per type.
//
// Plugins attach state to a parser (MarkdownIt.Ext), to a document
// (Root.Ext) or to a single node (Node.Ext) without a central registry of
// types: state of type T is invisible to code that only knows about U.
//
// An ExtSet is not safe for concurrent mutation.
type ExtSet struct {
	m map[reflect.Type]any
}

// NewExtSet returns an empty set.
func NewExtSet() *ExtSet {
	return &ExtSet{}
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Get returns the stored T. Absence is not an error: callers default explicitly.
// The returned pointer aliases the stored value, so mutating through it
// updates the set.
func Get[T any](s *ExtSet) (*T, bool) {
	if s == nil || s.m == nil {
		return nil, false
	}
	v, ok := s.m[keyOf[T]()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// Insert stores v, fully replacing any previous T. There is no merge.
func Insert[T any](s *ExtSet, v T) {
	if s.m == nil {
		s.m = make(map[reflect.Type]any)
	}
	p := new(T)
	*p = v
	s.m[keyOf[T]()] = p
}

// GetOrInsertDefault returns the stored T, inserting the zero value first if absent.
func GetOrInsertDefault[T any](s *ExtSet) *T {
	if p, ok := Get[T](s); ok {
		return p
	}
	var zero T
	Insert(s, zero)
	p, _ := Get[T](s)
	return p
}

// Remove deletes T from the set and returns the value that was stored.
func Remove[T any](s *ExtSet) (T, bool) {
	var zero T
	p, ok := Get[T](s)
	if !ok {
		return zero, false
	}
	delete(s.m, keyOf[T]())
	return *p, true
}

// Has reports whether a T is stored.
func Has[T any](s *ExtSet) bool {
	_, ok := Get[T](s)
	return ok
}

// Len returns the number of stored values.
func (s *ExtSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}
