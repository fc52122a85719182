// Package symbols implements the scoped symbol table (spec.md §4.5):
// declarations and references keyed by (name, scope-id), with a
// root-ward scope-stack walk on lookup. Grounded on the teacher's
// translation-binding package's scope/declare idiom
// (internal/ictiobus/translation), adapted to a flat table keyed by a
// caller-supplied scope-id rather than an AST-node-indexed binding set.
package symbols

import (
	"sort"

	"github.com/dekarrin/stepparser/internal/stepparse/stepperr"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

// ScopeInfo describes one lexical scope.
type ScopeInfo struct {
	ID            string
	Name          string
	HasName       bool
	Type          string
	StartPosition types.CodePosition
	EndPosition   types.CodePosition
}

// SymbolInfo describes one declared symbol.
type SymbolInfo struct {
	Name            string
	Type            string
	Kind            string
	ScopeID         string
	DefiningPos     types.CodePosition
	References      []types.CodePosition
	ContextLabels   []string
}

// Stats summarizes table occupancy.
type Stats struct {
	ScopeCount  int
	SymbolCount int
	RefCount    int
}

// Table is a scoped symbol table. A (name, scope-id) pair may be declared
// at most once; parent/child relations between scopes are supplied
// explicitly by the caller via SetParent, since the table itself has no
// notion of scope nesting beyond what it is told.
type Table struct {
	parent  map[string]string // scopeID -> parent scopeID
	symbols map[key]*SymbolInfo
	order   []key
}

type key struct {
	name    string
	scopeID string
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		parent:  make(map[string]string),
		symbols: make(map[key]*SymbolInfo),
	}
}

// SetParent records that child's enclosing scope is parent, used by
// Lookup's root-ward walk. Calling with an empty parent marks child as a
// root scope.
func (t *Table) SetParent(child, parent string) {
	t.parent[child] = parent
}

// Declare records info as a new declaration. It fails with
// stepperr.SymbolRedeclaration if (info.Name, info.ScopeID) is already
// declared.
func (t *Table) Declare(info SymbolInfo) error {
	k := key{name: info.Name, scopeID: info.ScopeID}
	if _, exists := t.symbols[k]; exists {
		return stepperr.SymbolRedeclaration(info.Name, info.ScopeID)
	}
	copied := info
	t.symbols[k] = &copied
	t.order = append(t.order, k)
	return nil
}

// Lookup finds name first in scopeID exactly, then walks the scope-stack
// via SetParent links toward the root.
func (t *Table) Lookup(name, scopeID string) (SymbolInfo, bool) {
	for scope := scopeID; ; {
		if sym, ok := t.symbols[key{name: name, scopeID: scope}]; ok {
			return *sym, true
		}
		parent, hasParent := t.parent[scope]
		if !hasParent || parent == scope {
			return SymbolInfo{}, false
		}
		scope = parent
	}
}

// AddReference appends pos to the reference list of the symbol found by
// Lookup(name, scopeID), if any, and reports whether a symbol was found.
func (t *Table) AddReference(name, scopeID string, pos types.CodePosition) bool {
	for scope := scopeID; ; {
		if sym, ok := t.symbols[key{name: name, scopeID: scope}]; ok {
			sym.References = append(sym.References, pos)
			return true
		}
		parent, hasParent := t.parent[scope]
		if !hasParent || parent == scope {
			return false
		}
		scope = parent
	}
}

// ReferencesOf returns the recorded reference positions for name declared
// directly in scopeID (it does not walk the scope stack).
func (t *Table) ReferencesOf(name, scopeID string) []types.CodePosition {
	sym, ok := t.symbols[key{name: name, scopeID: scopeID}]
	if !ok {
		return nil
	}
	out := make([]types.CodePosition, len(sym.References))
	copy(out, sym.References)
	return out
}

// Clear removes every declaration and scope-parent link.
func (t *Table) Clear() {
	t.parent = make(map[string]string)
	t.symbols = make(map[key]*SymbolInfo)
	t.order = nil
}

// Stats reports current occupancy.
func (t *Table) Stats() Stats {
	scopes := make(map[string]bool)
	refs := 0
	for k, sym := range t.symbols {
		scopes[k.scopeID] = true
		refs += len(sym.References)
	}
	for scope := range t.parent {
		scopes[scope] = true
	}
	return Stats{ScopeCount: len(scopes), SymbolCount: len(t.symbols), RefCount: refs}
}

// All returns every declared symbol in declaration order.
func (t *Table) All() []SymbolInfo {
	out := make([]SymbolInfo, 0, len(t.order))
	for _, k := range t.order {
		if sym, ok := t.symbols[k]; ok {
			out = append(out, *sym)
		}
	}
	return out
}

// Names returns every distinct declared symbol name, sorted.
func (t *Table) Names() []string {
	seen := make(map[string]bool)
	for k := range t.symbols {
		seen[k.name] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
