// Package path implements ParserPath (spec.md §3/§4.7): the speculative
// parse frontier the engine forks and prunes under ambiguity. ParserPath
// values are pool-managed, never allocated directly, following the
// Arena/ObjectPool discipline of internal/stepparse/arena; this package
// supplies the reset/fork contract arena.Pool's factory calls into.
package path

import (
	"github.com/dekarrin/stepparser/internal/stepparse/context"
	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

// Path is a single speculative parse frontier.
type Path struct {
	ID          int
	LexerPathID int
	Position    int

	ActiveProductions []grammar.Production
	ActiveMatches     []types.ProductionMatch

	ContextSnapshot context.Snapshot
	HasSnapshot     bool

	Score      float64
	Confidence float64

	InUse bool
}

// Reset zeroes p back to its pool-issued state: id and lexer-path-id
// cleared, active productions/matches cleared, context snapshot cleared,
// score 0, confidence 1 (spec.md §4.7).
func (p *Path) Reset() {
	p.ID = 0
	p.LexerPathID = 0
	p.Position = 0
	p.ActiveProductions = nil
	p.ActiveMatches = nil
	p.ContextSnapshot = context.Snapshot{}
	p.HasSnapshot = false
	p.Score = 0
	p.Confidence = 1
	p.InUse = false
}

// NewFactory returns an arena.Factory-compatible constructor for Path
// values already in their reset state.
func NewFactory() func() *Path {
	return func() *Path {
		p := &Path{}
		p.Reset()
		return p
	}
}

// Fork fills into with a copy of p's lexer-path-id, position, context
// snapshot, score, and confidence, with active productions and active matches copied by
// value (never shared backing arrays, so neither path can mutate the
// other's state — spec.md §4.7's "a path never mutates another path's
// state" invariant). omit, if non-empty, names a production to exclude
// from the copied active-productions list (the production the original
// path is about to consume).
func (p *Path) Fork(into *Path, omit string) {
	into.LexerPathID = p.LexerPathID
	into.Position = p.Position
	into.ContextSnapshot = p.ContextSnapshot
	into.HasSnapshot = p.HasSnapshot
	into.Score = p.Score
	into.Confidence = p.Confidence
	into.InUse = true

	into.ActiveProductions = nil
	for _, prod := range p.ActiveProductions {
		if prod.Name == omit {
			continue
		}
		into.ActiveProductions = append(into.ActiveProductions, prod)
	}

	into.ActiveMatches = append([]types.ProductionMatch(nil), p.ActiveMatches...)
}

// AddProduction appends prod to p's active-productions list.
func (p *Path) AddProduction(prod grammar.Production) {
	p.ActiveProductions = append(p.ActiveProductions, prod)
}

// RemoveProduction removes the first active production named name, if
// present.
func (p *Path) RemoveProduction(name string) {
	for i, prod := range p.ActiveProductions {
		if prod.Name == name {
			p.ActiveProductions = append(p.ActiveProductions[:i], p.ActiveProductions[i+1:]...)
			return
		}
	}
}

// AddMatch appends m to p's active-matches list.
func (p *Path) AddMatch(m types.ProductionMatch) {
	p.ActiveMatches = append(p.ActiveMatches, m)
}
