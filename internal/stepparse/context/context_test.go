package context

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/stepparse/symbols"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

func Test_InitializeForParsing_ResetsPosition(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)

	assert.Equal(t, types.StartPosition, a.Position())
}

func Test_UpdateWithToken_AdvancesPosition(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)

	a.UpdateWithToken(types.Token{Value: "ab\ncd"}, nil)

	pos := a.Position()
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 3, pos.Column)
	assert.Equal(t, 5, pos.Offset)
}

func Test_UpdateWithToken_SyncsToSnapshotThenAdvances(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)

	snap := Snapshot{Position: types.CodePosition{Line: 9, Column: 1, Offset: 20}}
	a.UpdateWithToken(types.Token{Value: "abc"}, &snap)

	pos := a.Position()
	assert.Equal(t, 9, pos.Line)
	assert.Equal(t, 4, pos.Column)
	assert.Equal(t, 23, pos.Offset)
}

func Test_Hash_DeterministicForIdenticalInputs(t *testing.T) {
	pos := types.CodePosition{Line: 3, Column: 4, Offset: 10}
	h1 := Hash([]string{"scope1", "scope2"}, []string{"x", "y"}, pos)
	h2 := Hash([]string{"scope1", "scope2"}, []string{"x", "y"}, pos)

	assert.Equal(t, h1, h2)
}

func Test_Hash_DiffersOnDifferentInputs(t *testing.T) {
	pos := types.CodePosition{Line: 3, Column: 4, Offset: 10}
	h1 := Hash([]string{"scope1"}, []string{"x"}, pos)
	h2 := Hash([]string{"scope1"}, []string{"y"}, pos)

	assert.NotEqual(t, h1, h2)
}

func Test_Snapshot_SymbolContextIsSorted(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)
	a.ctx.Symbols["zeta"] = true
	a.ctx.Symbols["alpha"] = true

	snap := a.Snapshot()
	assert.Equal(t, []string{"alpha", "zeta"}, snap.SymbolContext)
}

func Test_RankProductionsByContext_TiesBrokenByName(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)

	prods := []grammar.Production{{Name: "zeta"}, {Name: "alpha"}, {Name: "beta"}}
	ranked := a.RankProductionsByContext(prods)

	assert.Equal(t, []string{"alpha", "beta", "zeta"}, []string{ranked[0].Name, ranked[1].Name, ranked[2].Name})
}

func Test_RankProductionsByContext_HigherScoreWins(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)
	a.ScoreFn = func(prod grammar.Production, snap Snapshot) float64 {
		if prod.Name == "alpha" {
			return 1
		}
		return 0
	}

	prods := []grammar.Production{{Name: "zeta"}, {Name: "alpha"}}
	ranked := a.RankProductionsByContext(prods)
	assert.Equal(t, "alpha", ranked[0].Name)
}

func Test_ProductionConfidence_BaseAndClamp(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)

	base := a.ProductionConfidence(grammar.Production{Name: "prog"})
	assert.Equal(t, 0.5, base)

	a.ctx.ContextStack = []string{"prog"}
	a.ctx.ParseState.CurrentRule = "prog"
	boosted := a.ProductionConfidence(grammar.Production{Name: "prog"})
	assert.Equal(t, 1.0, boosted)
}

func Test_ErrorRecoveryStrategy_SkipOnNonEmptyToken(t *testing.T) {
	a := New(symbols.New())
	decision := a.ErrorRecoveryStrategy(types.Token{Value: "?"})
	assert.True(t, decision.CanRecover)
	assert.Equal(t, RecoverySkip, decision.Strategy)
}

func Test_ErrorRecoveryStrategy_NoneOnEmptyToken(t *testing.T) {
	a := New(symbols.New())
	decision := a.ErrorRecoveryStrategy(types.Token{Value: ""})
	assert.False(t, decision.CanRecover)
	assert.Equal(t, RecoveryNone, decision.Strategy)
}

func Test_ErrorRecoveryStrategy_GrammarStrategyOverridesDefault(t *testing.T) {
	a := New(symbols.New())
	a.SetRecoveryStrategy("insert", "skip")

	decision := a.ErrorRecoveryStrategy(types.Token{Value: "?"})
	assert.True(t, decision.CanRecover)
	assert.Equal(t, RecoveryInsert, decision.Strategy)
}

func Test_ErrorRecoveryStrategy_FallsBackToEngineDefaultWhenGrammarUnset(t *testing.T) {
	a := New(symbols.New())
	a.SetRecoveryStrategy("", "backtrack")

	decision := a.ErrorRecoveryStrategy(types.Token{Value: "?"})
	assert.True(t, decision.CanRecover)
	assert.Equal(t, RecoveryBacktrack, decision.Strategy)
}

func Test_ErrorRecoveryStrategy_NoneStrategyNeverRecovers(t *testing.T) {
	a := New(symbols.New())
	a.SetRecoveryStrategy("none", "skip")

	decision := a.ErrorRecoveryStrategy(types.Token{Value: "?"})
	assert.False(t, decision.CanRecover)
	assert.Equal(t, RecoveryNone, decision.Strategy)
}

func Test_ExtractSymbolInfo_ClassifiesKindFromName(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)

	info, ok := a.ExtractSymbolInfo(grammar.Production{Name: "func_decl"}, types.Token{Value: "doThing"})
	assert.True(t, ok)
	assert.Equal(t, "function", info.Kind)
	assert.Equal(t, "doThing", info.Name)

	_, ok2 := a.ExtractSymbolInfo(grammar.Production{Name: "expr"}, types.Token{Value: "x"})
	assert.False(t, ok2)
}

func Test_UpdateWithProduction_DeclaresExtractedSymbol(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)

	a.UpdateWithProduction(grammar.Production{Name: "var_decl"}, types.Token{Value: "count"})

	assert.True(t, a.ctx.Symbols["count"])
	assert.Equal(t, "var_decl", a.ctx.ParseState.CurrentRule)
}

func Test_PushPopScope(t *testing.T) {
	a := New(symbols.New())
	a.InitializeForParsing("g1", nil)

	id := a.PushScope("block")
	assert.Len(t, a.ctx.ScopeStack, 1)
	assert.Equal(t, id, a.ctx.ScopeStack[0])

	a.PopScope()
	assert.Empty(t, a.ctx.ScopeStack)
}
