package path

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

func Test_Reset_ZeroesState(t *testing.T) {
	p := &Path{
		ID:                5,
		LexerPathID:       2,
		Position:          10,
		ActiveProductions: []grammar.Production{{Name: "prog"}},
		ActiveMatches:     []types.ProductionMatch{{Production: "prog"}},
		Score:             3,
		Confidence:        0.2,
		InUse:             true,
	}
	p.Reset()

	assert.Equal(t, 0, p.ID)
	assert.Equal(t, 0, p.LexerPathID)
	assert.Equal(t, 0, p.Position)
	assert.Empty(t, p.ActiveProductions)
	assert.Empty(t, p.ActiveMatches)
	assert.Equal(t, float64(0), p.Score)
	assert.Equal(t, float64(1), p.Confidence)
	assert.False(t, p.InUse)
}

func Test_Fork_CopiesByValue_NotReference(t *testing.T) {
	original := &Path{
		LexerPathID:       3,
		Position:          7,
		ActiveProductions: []grammar.Production{{Name: "a"}, {Name: "b"}},
		ActiveMatches:     []types.ProductionMatch{{Production: "a"}},
	}
	fork := &Path{}
	original.Fork(fork, "a")

	assert.Equal(t, 3, fork.LexerPathID)
	assert.Equal(t, 7, fork.Position)
	assert.Len(t, fork.ActiveProductions, 1)
	assert.Equal(t, "b", fork.ActiveProductions[0].Name)

	// mutating the fork must not affect the original
	fork.ActiveMatches[0].Production = "mutated"
	assert.Equal(t, "a", original.ActiveMatches[0].Production)

	fork.AddProduction(grammar.Production{Name: "c"})
	assert.Len(t, original.ActiveProductions, 2)
	assert.Len(t, fork.ActiveProductions, 2)
}

func Test_RemoveProduction(t *testing.T) {
	p := &Path{ActiveProductions: []grammar.Production{{Name: "a"}, {Name: "b"}}}
	p.RemoveProduction("a")

	assert.Len(t, p.ActiveProductions, 1)
	assert.Equal(t, "b", p.ActiveProductions[0].Name)
}

func Test_NewFactory_ProducesResetPath(t *testing.T) {
	factory := NewFactory()
	p := factory()

	assert.Equal(t, float64(1), p.Confidence)
	assert.False(t, p.InUse)
}
