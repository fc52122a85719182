// Package manager implements the inheritance-aware scoped lookup behind
// both the Precedence Manager and the Semantic Action Manager (spec.md
// §4.4): each value is registered against one grammar, looked up through
// that grammar's inheritance chain (most-derived first hit wins), and
// cached per (grammar, name) with invalidation on every registration that
// could change the answer.
//
// This replaces the source pattern spec.md §9 calls out for
// re-architecture: mutable global-ish managers keyed by "grammar::name"
// string concatenation. Key is an explicit composite struct instead, and
// the cache is a two-level structure invalidated via the inheritance
// resolver's transitive-dependents set, following the teacher's two-level
// map idiom in lex/lex.go (patterns map[string][]patAct, classes
// map[string]map[string]TokenClass).
package manager

import "github.com/dekarrin/stepparser/internal/stepparse/inherit"

// Key identifies a registration or lookup: a grammar and a name scoped to
// it (an operator, an action name, or any other per-grammar identifier).
type Key struct {
	Grammar string
	Name    string
}

// Scoped is a generic inheritance-aware registry of values of type T, keyed
// by (grammar, name). It does not own a Resolver; callers share one
// Resolver across every Scoped instance tracking the same grammar set so
// inheritance chains stay consistent.
type Scoped[T any] struct {
	resolver *inherit.Resolver

	direct map[Key]T
	cache  map[Key]T
	cached map[Key]bool
}

// NewScoped returns a Scoped manager that resolves inheritance through
// resolver.
func NewScoped[T any](resolver *inherit.Resolver) *Scoped[T] {
	return &Scoped[T]{
		resolver: resolver,
		direct:   make(map[Key]T),
		cache:    make(map[Key]T),
		cached:   make(map[Key]bool),
	}
}

// Register binds value directly to (grammar, name), replacing any prior
// direct binding, and invalidates the cached lookup of name for grammar and
// every grammar dependent on it.
func (s *Scoped[T]) Register(grammar, name string, value T) {
	s.direct[Key{Grammar: grammar, Name: name}] = value
	s.invalidate(grammar, name)
}

// Unregister removes the direct binding at (grammar, name), if any, and
// invalidates the same cache set Register would.
func (s *Scoped[T]) Unregister(grammar, name string) {
	delete(s.direct, Key{Grammar: grammar, Name: name})
	s.invalidate(grammar, name)
}

func (s *Scoped[T]) invalidate(grammar, name string) {
	delete(s.cache, Key{Grammar: grammar, Name: name})
	delete(s.cached, Key{Grammar: grammar, Name: name})
	for _, dep := range s.resolver.Dependents(grammar) {
		k := Key{Grammar: dep, Name: name}
		delete(s.cache, k)
		delete(s.cached, k)
	}
}

// Get resolves name for grammar by walking grammar's inheritance chain
// (most-derived first) and returning the first direct binding found. The
// result, including a miss, is cached until invalidated by a Register or
// Unregister that could change it.
func (s *Scoped[T]) Get(grammar, name string) (T, bool) {
	key := Key{Grammar: grammar, Name: name}
	if hit, known := s.cached[key]; known {
		if hit {
			return s.cache[key], true
		}
		var zero T
		return zero, false
	}

	var zero T
	for _, g := range s.resolver.InheritanceChain(grammar) {
		if v, ok := s.direct[Key{Grammar: g, Name: name}]; ok {
			s.cache[key] = v
			s.cached[key] = true
			return v, true
		}
	}

	s.cache[key] = zero
	s.cached[key] = false
	return zero, false
}

// GetDirect returns the value bound directly to (grammar, name), without
// following inheritance.
func (s *Scoped[T]) GetDirect(grammar, name string) (T, bool) {
	v, ok := s.direct[Key{Grammar: grammar, Name: name}]
	return v, ok
}
