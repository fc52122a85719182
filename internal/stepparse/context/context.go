// Package context implements the Context Adapter (spec.md §4.6): the
// central decision surface that tracks the running ContextInfo (scope
// stack, parse state, position), produces pinnable snapshots with a stable
// hash, and exposes the context-sensitive predicates the engine consults
// every step (terminal/production validity, ranking, confidence, recovery
// strategy). Grounded on the teacher's parse/lr.go state-tracking style
// (an explicit struct of mutable parse state walked token-by-token) and on
// server/dao/sqlite's use of github.com/dekarrin/rezi for canonical binary
// encoding, reused here to make the snapshot hash a deterministic function
// of its contents rather than of Go's unspecified map iteration order.
package context

import (
	"sort"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/stepparse/symbols"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

// RecoveryStrategy names how the adapter suggests recovering from a
// zero-match token.
type RecoveryStrategy string

const (
	RecoverySkip      RecoveryStrategy = "skip"
	RecoveryInsert    RecoveryStrategy = "insert"
	RecoveryBacktrack RecoveryStrategy = "backtrack"
	RecoveryNone      RecoveryStrategy = "none"
)

// RecoveryDecision is the result of error-recovery analysis.
type RecoveryDecision struct {
	CanRecover bool
	Strategy   RecoveryStrategy
	Suggestion string
	Confidence float64
}

// ParseStateInfo mirrors spec.md §3's ParseStateInfo record.
type ParseStateInfo struct {
	CurrentRule    string
	Position       types.CodePosition
	ContextStack   []string
	ScopeStack     []string
	ValidTerminals []string
	Errors         []string
	Warnings       []string
	Suggestions    []string
}

// GrammarState mirrors spec.md §3's GrammarState record.
type GrammarState struct {
	ActiveGrammar     string
	FormatType        string
	BaseGrammars      []string
	ActiveRules       []string
	ContextModifiers  []string
	InheritanceChain  []string
}

// ContextInfo is the running snapshot the adapter maintains across tokens.
type ContextInfo struct {
	ScopeStack    []string
	ContextStack  []string
	Symbols       map[string]bool
	ParseState    ParseStateInfo
	ActiveGrammar string
	Timestamp     int64
}

// Snapshot is the pinnable subset of ContextInfo, per spec.md §3.
type Snapshot struct {
	ScopeStack    []string
	SymbolContext []string
	ParseState    ParseStateInfo
	Position      types.CodePosition
	Hash          uint64
}

// ScoreFunc computes a context-sensitivity score for a candidate
// production given the current snapshot; higher ranks first. The default
// is documented, fixed-weight, and overridable (spec.md §9 Open Questions:
// scoring heuristics are domain-specific and implementer-chosen).
type ScoreFunc func(prod grammar.Production, snap Snapshot) float64

// ScopePredicate decides whether a terminal or production is valid given
// the current ContextInfo; defaults to always-true (spec.md §9).
type ScopePredicate func(name string, ctx *ContextInfo) bool

// Adapter is the Context Adapter component.
type Adapter struct {
	pos types.CodePosition
	ctx ContextInfo

	symTable *symbols.Table

	ScoreFn             ScoreFunc
	TerminalValidFn     ScopePredicate
	ProductionValidFn   ScopePredicate

	scopeCounter int

	grammarRecoveryStrategy string
	defaultRecoveryStrategy string
}

// New returns an Adapter backed by symTable for symbol declarations, with
// default scoring and always-valid predicates.
func New(symTable *symbols.Table) *Adapter {
	a := &Adapter{symTable: symTable}
	a.ScoreFn = defaultScore
	a.TerminalValidFn = func(string, *ContextInfo) bool { return true }
	a.ProductionValidFn = func(string, *ContextInfo) bool { return true }
	return a
}

// InitializeForParsing resets position to (1,1,0) and installs a default
// ContextInfo for activeGrammar. sourceLines is accepted for interface
// parity with a token-source's SourceLines contract but is not otherwise
// consulted by the core adapter.
func (a *Adapter) InitializeForParsing(activeGrammar string, sourceLines []string) {
	a.pos = types.StartPosition
	a.ctx = ContextInfo{
		Symbols:       make(map[string]bool),
		ActiveGrammar: activeGrammar,
	}
}

// SetRecoveryStrategy installs the recovery-strategy names
// ErrorRecoveryStrategy consults: grammarStrategy is the active grammar's
// own configured strategy (Grammar.ErrorRecoveryStrategy()), consulted
// first; defaultStrategy is the engine's configured fallback
// (EngineConfig.DefaultRecoveryStrategy), consulted when grammarStrategy
// is empty.
func (a *Adapter) SetRecoveryStrategy(grammarStrategy, defaultStrategy string) {
	a.grammarRecoveryStrategy = grammarStrategy
	a.defaultRecoveryStrategy = defaultStrategy
}

// Position returns the adapter's current tracked position.
func (a *Adapter) Position() types.CodePosition { return a.pos }

// ContextInfo returns a copy of the adapter's running ContextInfo, for
// callers (the Callback Registry's per-invocation context map, notably)
// that need the full scope/parse-state picture rather than just Position
// or a pinned Snapshot.
func (a *Adapter) ContextInfo() ContextInfo {
	info := a.ctx
	info.ScopeStack = append([]string(nil), a.ctx.ScopeStack...)
	info.ContextStack = append([]string(nil), a.ctx.ContextStack...)
	symbols := make(map[string]bool, len(a.ctx.Symbols))
	for k, v := range a.ctx.Symbols {
		symbols[k] = v
	}
	info.Symbols = symbols
	return info
}

// UpdateWithToken synchronizes position to snap.Position if snap is
// non-nil (reconciling the shared adapter to a pinned path's own position),
// then advances position by token.Value, character by character (spec.md
// §4.6). A path's pinned snapshot only replaces the adapter's starting
// point for this step; it never substitutes for applying the new token.
func (a *Adapter) UpdateWithToken(token types.Token, snap *Snapshot) {
	if snap != nil {
		a.pos = snap.Position
	}
	a.pos = a.pos.AdvanceString(token.Value)
}

// PushScope opens a new scope of the given type, returning its id.
func (a *Adapter) PushScope(scopeType string) string {
	a.scopeCounter++
	id := scopeIDFor(a.scopeCounter)
	parent := a.currentScopeParent()
	a.ctx.ScopeStack = append(a.ctx.ScopeStack, id)
	a.symTable.SetParent(id, parent)
	return id
}

func (a *Adapter) currentScopeParent() string {
	if len(a.ctx.ScopeStack) == 0 {
		return ""
	}
	return a.ctx.ScopeStack[len(a.ctx.ScopeStack)-1]
}

// PopScope closes the innermost open scope, if any.
func (a *Adapter) PopScope() {
	if len(a.ctx.ScopeStack) == 0 {
		return
	}
	a.ctx.ScopeStack = a.ctx.ScopeStack[:len(a.ctx.ScopeStack)-1]
}

func scopeIDFor(n int) string {
	const digits = "0123456789"
	if n == 0 {
		return "scope0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return "scope" + string(b)
}

// Snapshot returns the current pinnable snapshot, including its hash.
func (a *Adapter) Snapshot() Snapshot {
	symNames := make([]string, 0, len(a.ctx.Symbols))
	for name := range a.ctx.Symbols {
		symNames = append(symNames, name)
	}
	sort.Strings(symNames)

	scopeStack := append([]string(nil), a.ctx.ScopeStack...)

	s := Snapshot{
		ScopeStack:    scopeStack,
		SymbolContext: symNames,
		ParseState:    a.ctx.ParseState,
		Position:      a.pos,
	}
	s.Hash = Hash(scopeStack, symNames, a.pos)
	return s
}

// Hash computes the deterministic snapshot hash (spec.md §4.6): a
// canonical binary encoding of {scope ids, symbol names, position} folded
// via h := ((h << 5) - h) + c for each byte of that encoding. Two
// snapshots with identical (scope ids, symbol names, position) always
// produce identical hashes, regardless of map iteration order, because
// Snapshot passes the symbol names sorted and the scope ids in stack order.
func Hash(scopeIDs, symbolNames []string, pos types.CodePosition) uint64 {
	var canonical []byte
	canonical = appendEnc(canonical, scopeIDs)
	canonical = appendEnc(canonical, symbolNames)
	canonical = appendEnc(canonical, []int{pos.Line, pos.Column, pos.Offset})

	var h uint64
	for _, c := range canonical {
		h = (h << 5) - h + uint64(c)
	}
	return h
}

// appendEnc REZI-encodes v (a slice of one of rezi's natively supported
// element types) and appends the result to buf. A failure here would mean
// rezi rejected a plain string or int slice, a library invariant
// violation rather than a recoverable parse error, so it panics.
func appendEnc(buf []byte, v any) []byte {
	enc, err := rezi.Enc(v)
	if err != nil {
		panic("stepparse/context: canonical encoding failed: " + err.Error())
	}
	return append(buf, enc...)
}

func defaultScore(prod grammar.Production, snap Snapshot) float64 {
	return 0
}
