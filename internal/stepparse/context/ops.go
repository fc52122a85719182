package context

import (
	"sort"
	"strings"

	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/stepparse/symbols"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

// IsTerminalValidInContext reports whether terminal may appear next,
// consulting TerminalValidFn (default always-true; spec.md §9).
func (a *Adapter) IsTerminalValidInContext(terminal string) bool {
	return a.TerminalValidFn(terminal, &a.ctx)
}

// IsProductionValidInContext reports whether prod may fire next for the
// given leading terminal, consulting ProductionValidFn (default
// always-true).
func (a *Adapter) IsProductionValidInContext(prod grammar.Production, terminal string) bool {
	return a.ProductionValidFn(prod.Name, &a.ctx)
}

// RankProductionsByContext orders prods by descending context-score
// (a.ScoreFn), ties broken by ascending production name.
func (a *Adapter) RankProductionsByContext(prods []grammar.Production) []grammar.Production {
	snap := a.Snapshot()
	ranked := append([]grammar.Production(nil), prods...)

	type scored struct {
		prod  grammar.Production
		score float64
	}
	withScores := make([]scored, len(ranked))
	for i, p := range ranked {
		withScores[i] = scored{prod: p, score: a.ScoreFn(p, snap)}
	}
	sort.SliceStable(withScores, func(i, j int) bool {
		if withScores[i].score != withScores[j].score {
			return withScores[i].score > withScores[j].score
		}
		return withScores[i].prod.Name < withScores[j].prod.Name
	})

	out := make([]grammar.Production, len(withScores))
	for i, s := range withScores {
		out[i] = s.prod
	}
	return out
}

// ProductionConfidence reports a [0,1] confidence for prod given the
// current context: base 0.5, +0.3 if prod is expected in any current
// scope, +0.2 if it follows the expected pattern, clamped to 1.0
// (spec.md §4.6).
func (a *Adapter) ProductionConfidence(prod grammar.Production) float64 {
	confidence := 0.5
	if a.expectedInAnyScope(prod) {
		confidence += 0.3
	}
	if a.followsExpectedPattern(prod) {
		confidence += 0.2
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// expectedInAnyScope is a stub per spec.md §9 ("Context Adapter's scoring
// functions are stubbed to constants in the source; any concrete heuristic
// is domain-specific and implementer-chosen"). It reports true whenever
// the production name appears verbatim as a current context-stack entry,
// a conservative default that leaves real tightening to a caller-supplied
// ScoreFn/predicate.
func (a *Adapter) expectedInAnyScope(prod grammar.Production) bool {
	for _, c := range a.ctx.ContextStack {
		if c == prod.Name {
			return true
		}
	}
	return false
}

// followsExpectedPattern is likewise a documented-constant stub: it
// reports true when prod's current rule matches the parse state's
// recorded CurrentRule, a cheap default pattern-continuity signal.
func (a *Adapter) followsExpectedPattern(prod grammar.Production) bool {
	return a.ctx.ParseState.CurrentRule != "" && a.ctx.ParseState.CurrentRule == prod.Name
}

// ErrorRecoveryStrategy analyzes a zero-match token and suggests a
// recovery decision. An empty token never recovers. Otherwise it consults
// the active grammar's configured strategy name
// (Grammar.SetErrorRecoveryStrategy, installed via SetRecoveryStrategy),
// falling back to the engine's configured default when the grammar names
// none; an unrecognized or still-empty name falls back to skip.
func (a *Adapter) ErrorRecoveryStrategy(token types.Token) RecoveryDecision {
	if token.Value == "" {
		return RecoveryDecision{CanRecover: false, Strategy: RecoveryNone, Confidence: 0}
	}

	name := a.grammarRecoveryStrategy
	if name == "" {
		name = a.defaultRecoveryStrategy
	}

	switch RecoveryStrategy(name) {
	case RecoveryInsert:
		return RecoveryDecision{
			CanRecover: true,
			Strategy:   RecoveryInsert,
			Suggestion: "insert before " + token.Value,
			Confidence: 0.4,
		}
	case RecoveryBacktrack:
		return RecoveryDecision{
			CanRecover: true,
			Strategy:   RecoveryBacktrack,
			Suggestion: "backtrack before " + token.Value,
			Confidence: 0.4,
		}
	case RecoveryNone:
		return RecoveryDecision{CanRecover: false, Strategy: RecoveryNone, Confidence: 0}
	default:
		return RecoveryDecision{
			CanRecover: true,
			Strategy:   RecoverySkip,
			Suggestion: "skip unexpected token " + token.Value,
			Confidence: 0.4,
		}
	}
}

// scopeChangingPrefixes names production-name prefixes treated as
// scope-opening or scope-closing by UpdateWithProduction's default
// classification.
var scopeOpeningPrefixes = []string{"block", "scope", "function", "class"}
var scopeClosingPrefixes = []string{"end", "close"}

// UpdateWithProduction applies prod's effect on the running ContextInfo:
// it may push or pop a scope for scope-changing productions, and declares
// a symbol for symbol-defining productions via ExtractSymbolInfo.
func (a *Adapter) UpdateWithProduction(prod grammar.Production, token types.Token) {
	lower := strings.ToLower(prod.Name)
	for _, prefix := range scopeOpeningPrefixes {
		if strings.HasPrefix(lower, prefix) {
			a.PushScope(prefix)
			break
		}
	}
	for _, prefix := range scopeClosingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			a.PopScope()
			break
		}
	}

	if info, ok := a.ExtractSymbolInfo(prod, token); ok {
		a.ctx.Symbols[info.Name] = true
		_ = a.symTable.Declare(info)
	}

	a.ctx.ParseState.CurrentRule = prod.Name
}

// ExtractSymbolInfo returns a SymbolInfo for prod if it is classified as
// symbol-defining (its name contains "decl" or "def", case-insensitively),
// inferring Kind from the name: "function" if it contains "func" or
// "method", "class" if it contains "class" or "type", else "variable".
func (a *Adapter) ExtractSymbolInfo(prod grammar.Production, token types.Token) (symbols.SymbolInfo, bool) {
	lower := strings.ToLower(prod.Name)
	if !strings.Contains(lower, "decl") && !strings.Contains(lower, "def") {
		return symbols.SymbolInfo{}, false
	}

	kind := "variable"
	switch {
	case strings.Contains(lower, "func") || strings.Contains(lower, "method"):
		kind = "function"
	case strings.Contains(lower, "class") || strings.Contains(lower, "type"):
		kind = "class"
	}

	scopeID := a.currentScopeParent()
	return symbols.SymbolInfo{
		Name:        token.Value,
		Kind:        kind,
		ScopeID:     scopeID,
		DefiningPos: a.pos,
	}, true
}
