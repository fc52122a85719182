package manager

import (
	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/stepparse/inherit"
)

// SemanticActionManager is the scoped lookup of named semantic-action
// templates described in spec.md §4.4: registering an action in grammar G
// invalidates the cache of G and every grammar dependent on it.
type SemanticActionManager struct {
	actions *Scoped[grammar.SemanticActionTemplate]
}

// NewSemanticActionManager returns a SemanticActionManager resolving
// inheritance through resolver.
func NewSemanticActionManager(resolver *inherit.Resolver) *SemanticActionManager {
	return &SemanticActionManager{actions: NewScoped[grammar.SemanticActionTemplate](resolver)}
}

// Register binds tmpl to (grammarName, tmpl.Name).
func (m *SemanticActionManager) Register(grammarName string, tmpl grammar.SemanticActionTemplate) {
	m.actions.Register(grammarName, tmpl.Name, tmpl)
}

// Unregister removes the direct binding at (grammarName, actionName).
func (m *SemanticActionManager) Unregister(grammarName, actionName string) {
	m.actions.Unregister(grammarName, actionName)
}

// Get resolves actionName for grammarName, following inheritance.
func (m *SemanticActionManager) Get(grammarName, actionName string) (grammar.SemanticActionTemplate, bool) {
	return m.actions.Get(grammarName, actionName)
}
