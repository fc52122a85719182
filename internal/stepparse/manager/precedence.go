package manager

import (
	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/stepparse/inherit"
)

// PrecedenceManager is the scoped lookup of operator precedence and
// associativity described in spec.md §4.4: rules are registered per
// grammar, and lookup walks the grammar's inheritance chain.
type PrecedenceManager struct {
	precedence    *Scoped[grammar.PrecedenceRule]
	associativity *Scoped[grammar.AssociativityRule]
}

// NewPrecedenceManager returns a PrecedenceManager resolving inheritance
// through resolver.
func NewPrecedenceManager(resolver *inherit.Resolver) *PrecedenceManager {
	return &PrecedenceManager{
		precedence:    NewScoped[grammar.PrecedenceRule](resolver),
		associativity: NewScoped[grammar.AssociativityRule](resolver),
	}
}

// RegisterPrecedence registers rule against grammarName for every operator
// it names, so a lookup on any one of them finds it.
func (m *PrecedenceManager) RegisterPrecedence(grammarName string, rule grammar.PrecedenceRule) {
	for op := range rule.Operators {
		m.precedence.Register(grammarName, op, rule)
	}
}

// Precedence looks up the precedence rule covering operator, following
// grammarName's inheritance chain.
func (m *PrecedenceManager) Precedence(grammarName, operator string) (grammar.PrecedenceRule, bool) {
	return m.precedence.Get(grammarName, operator)
}

// RegisterAssociativity registers rule against grammarName for rule.Operator.
func (m *PrecedenceManager) RegisterAssociativity(grammarName string, rule grammar.AssociativityRule) {
	m.associativity.Register(grammarName, rule.Operator, rule)
}

// Associativity looks up the associativity rule for operator, following
// grammarName's inheritance chain.
func (m *PrecedenceManager) Associativity(grammarName, operator string) (grammar.AssociativityRule, bool) {
	return m.associativity.Get(grammarName, operator)
}

// ComparePrecedence resolves op1 and op2's precedence rules through
// grammarName's inheritance and returns the sign of level1 - level2: a
// positive result means op1 binds tighter, negative means op2 does, zero
// means equal level (or both unresolved). If exactly one operator resolves,
// the resolved one is considered higher (spec.md §4.4).
func (m *PrecedenceManager) ComparePrecedence(grammarName, op1, op2 string) int {
	r1, ok1 := m.Precedence(grammarName, op1)
	r2, ok2 := m.Precedence(grammarName, op2)

	switch {
	case ok1 && ok2:
		switch {
		case r1.Level > r2.Level:
			return 1
		case r1.Level < r2.Level:
			return -1
		default:
			return 0
		}
	case ok1 && !ok2:
		return 1
	case !ok1 && ok2:
		return -1
	default:
		return 0
	}
}
