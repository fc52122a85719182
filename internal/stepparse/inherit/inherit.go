// Package inherit implements the inheritance resolver (spec.md §4.3): it
// computes per-grammar inheritance chains and reverse-dependency sets over
// base-grammar edges, detects cycles without ever panicking or erroring out
// of a lookup, and memoizes both with transitive cache invalidation. It is
// grounded on the teacher's internal/tqw/marshaling.go manifStack
// recursion-guard idiom — an explicit "currently on this path" slice
// threaded through recursive calls to stop a circular walk without a
// language-level exception.
package inherit

import "github.com/dekarrin/stepparser/internal/util"

// Resolver tracks the base-grammar edges of every registered grammar name
// and answers inheritance queries over that graph.
type Resolver struct {
	bases map[string][]string

	chainCache      map[string][]string
	dependentsCache map[string]map[string]bool
}

// New returns an empty Resolver.
func New() *Resolver {
	return &Resolver{
		bases:           make(map[string][]string),
		chainCache:      make(map[string][]string),
		dependentsCache: make(map[string]map[string]bool),
	}
}

// Register records name's direct base grammars, replacing any prior
// registration, and invalidates every cache entry that transitively depends
// on name (including name's own).
func (r *Resolver) Register(name string, baseGrammars []string) {
	r.bases[name] = append([]string(nil), baseGrammars...)
	r.invalidate(name)
}

// Unregister removes name from the resolver entirely and invalidates every
// cache entry that transitively depended on it.
func (r *Resolver) Unregister(name string) {
	delete(r.bases, name)
	r.invalidate(name)
}

// invalidate drops the memoized chain for name and for every grammar whose
// cached chain mentions it, and drops every memoized dependents set.
func (r *Resolver) invalidate(name string) {
	delete(r.chainCache, name)
	delete(r.dependentsCache, name)
	for g, chain := range r.chainCache {
		for _, b := range chain {
			if b == name {
				delete(r.chainCache, g)
				break
			}
		}
	}
	for g := range r.dependentsCache {
		delete(r.dependentsCache, g)
	}
}

// InheritanceChain returns name's inheritance chain, most-derived (name
// itself) first, through to its most-base ancestors. A grammar that forms a
// cycle with name is included once, at the point the cycle closes, and the
// walk stops there — no error is raised; report cycles via Validate.
func (r *Resolver) InheritanceChain(name string) []string {
	if cached, ok := r.chainCache[name]; ok {
		out := make([]string, len(cached))
		copy(out, cached)
		return out
	}

	onPath := util.Stack[string]{}
	emitted := make(map[string]bool)
	var chain []string
	var walk func(n string)
	walk = func(n string) {
		for _, p := range onPath.Of {
			if p == n {
				return
			}
		}
		if emitted[n] {
			return
		}
		chain = append(chain, n)
		emitted[n] = true
		onPath.Push(n)
		defer onPath.Pop()
		for _, base := range r.bases[n] {
			walk(base)
		}
	}
	walk(name)

	cached := make([]string, len(chain))
	copy(cached, chain)
	r.chainCache[name] = cached

	out := make([]string, len(chain))
	copy(out, chain)
	return out
}

// Dependents returns the transitive set of grammars that (directly or
// indirectly) declare name as a base, not including name itself.
func (r *Resolver) Dependents(name string) []string {
	if cached, ok := r.dependentsCache[name]; ok {
		return util.OrderedKeys(cached)
	}

	deps := make(map[string]bool)
	var dependsOn func(n string, target string, onPath *util.Stack[string]) bool
	dependsOn = func(n string, target string, onPath *util.Stack[string]) bool {
		for _, p := range onPath.Of {
			if p == n {
				return false
			}
		}
		onPath.Push(n)
		defer onPath.Pop()
		for _, base := range r.bases[n] {
			if base == target {
				return true
			}
			if dependsOn(base, target, onPath) {
				return true
			}
		}
		return false
	}

	for g := range r.bases {
		if g == name {
			continue
		}
		if dependsOn(g, name, &util.Stack[string]{}) {
			deps[g] = true
		}
	}

	r.dependentsCache[name] = deps
	return util.OrderedKeys(deps)
}

// InheritsFrom reports whether base appears anywhere in derived's
// inheritance chain (excluding derived itself).
func (r *Resolver) InheritsFrom(derived, base string) bool {
	chain := r.InheritanceChain(derived)
	for _, g := range chain {
		if g == derived {
			continue
		}
		if g == base {
			return true
		}
	}
	return false
}

// CommonBase returns a grammar that appears in every named grammar's
// inheritance chain, if one exists. Among candidates it returns the one
// that appears earliest (most-derived) in the first grammar's chain.
func (r *Resolver) CommonBase(names []string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	first := r.InheritanceChain(names[0])
	for _, candidate := range first {
		inAll := true
		for _, other := range names[1:] {
			if !contains(r.InheritanceChain(other), candidate) {
				inAll = false
				break
			}
		}
		if inAll {
			return candidate, true
		}
	}
	return "", false
}

func contains(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

// Validate reports every grammar that participates in a base-grammar
// inheritance cycle. A grammar is reported once per cycle it is part of at
// most; an acyclic registration set yields an empty, non-nil slice.
func (r *Resolver) Validate() []string {
	seen := make(map[string]bool)

	for name := range r.bases {
		onPath := util.Stack[string]{}
		var walk func(n string) bool
		walk = func(n string) bool {
			for _, p := range onPath.Of {
				if p == n {
					return n == name
				}
			}
			onPath.Push(n)
			defer onPath.Pop()
			for _, base := range r.bases[n] {
				if walk(base) {
					return true
				}
			}
			return false
		}
		if walk(name) {
			seen[name] = true
		}
	}

	return util.OrderedKeys(seen)
}
