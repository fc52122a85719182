package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

func Test_Declare_And_Lookup_ExactScope(t *testing.T) {
	tbl := New()
	err := tbl.Declare(SymbolInfo{Name: "x", ScopeID: "s1", Kind: "variable"})
	assert.NoError(t, err)

	sym, ok := tbl.Lookup("x", "s1")
	assert.True(t, ok)
	assert.Equal(t, "variable", sym.Kind)
}

func Test_Declare_Redeclaration_Fails(t *testing.T) {
	tbl := New()
	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "x", ScopeID: "s1"}))
	err := tbl.Declare(SymbolInfo{Name: "x", ScopeID: "s1"})
	assert.Error(t, err)
}

func Test_Declare_SameNameDifferentScope_Allowed(t *testing.T) {
	tbl := New()
	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "x", ScopeID: "s1"}))
	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "x", ScopeID: "s2"}))
}

func Test_Lookup_WalksScopeStackToRoot(t *testing.T) {
	tbl := New()
	tbl.SetParent("child", "parent")
	tbl.SetParent("parent", "root")

	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "x", ScopeID: "root"}))

	_, ok := tbl.Lookup("x", "child")
	assert.True(t, ok)
}

func Test_Lookup_StopsAtExactScopeBeforeWalking(t *testing.T) {
	tbl := New()
	tbl.SetParent("child", "root")
	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "x", ScopeID: "root", Kind: "root-x"}))
	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "x", ScopeID: "child", Kind: "child-x"}))

	sym, ok := tbl.Lookup("x", "child")
	assert.True(t, ok)
	assert.Equal(t, "child-x", sym.Kind)
}

func Test_Lookup_Miss(t *testing.T) {
	tbl := New()
	_, ok := tbl.Lookup("nope", "s1")
	assert.False(t, ok)
}

func Test_AddReference_And_ReferencesOf(t *testing.T) {
	tbl := New()
	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "x", ScopeID: "s1"}))

	pos := types.CodePosition{Line: 2, Column: 3, Offset: 10}
	ok := tbl.AddReference("x", "s1", pos)
	assert.True(t, ok)

	refs := tbl.ReferencesOf("x", "s1")
	assert.Equal(t, []types.CodePosition{pos}, refs)
}

func Test_Clear_ResetsTable(t *testing.T) {
	tbl := New()
	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "x", ScopeID: "s1"}))
	tbl.Clear()

	_, ok := tbl.Lookup("x", "s1")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, tbl.Stats())
}

func Test_Stats_CountsScopesSymbolsReferences(t *testing.T) {
	tbl := New()
	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "x", ScopeID: "s1"}))
	assert.NoError(t, tbl.Declare(SymbolInfo{Name: "y", ScopeID: "s2"}))
	tbl.AddReference("x", "s1", types.StartPosition)
	tbl.AddReference("x", "s1", types.StartPosition)

	stats := tbl.Stats()
	assert.Equal(t, 2, stats.ScopeCount)
	assert.Equal(t, 2, stats.SymbolCount)
	assert.Equal(t, 2, stats.RefCount)
}
