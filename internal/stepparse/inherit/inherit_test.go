package inherit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_InheritanceChain_SimpleLinear(t *testing.T) {
	r := New()
	r.Register("A", nil)
	r.Register("B", []string{"A"})
	r.Register("C", []string{"B"})

	assert.Equal(t, []string{"C", "B", "A"}, r.InheritanceChain("C"))
	assert.Equal(t, []string{"A"}, r.InheritanceChain("A"))
}

func Test_InheritsFrom(t *testing.T) {
	r := New()
	r.Register("A", nil)
	r.Register("B", []string{"A"})
	r.Register("C", []string{"B"})

	assert.True(t, r.InheritsFrom("C", "A"))
	assert.True(t, r.InheritsFrom("C", "B"))
	assert.False(t, r.InheritsFrom("A", "C"))
	assert.False(t, r.InheritsFrom("C", "C"))
}

func Test_Dependents(t *testing.T) {
	r := New()
	r.Register("A", nil)
	r.Register("B", []string{"A"})
	r.Register("C", []string{"B"})

	assert.Equal(t, []string{"B", "C"}, r.Dependents("A"))
	assert.Equal(t, []string{"C"}, r.Dependents("B"))
	assert.Empty(t, r.Dependents("C"))
}

func Test_CommonBase(t *testing.T) {
	r := New()
	r.Register("A", nil)
	r.Register("B", []string{"A"})
	r.Register("C", []string{"A"})

	base, ok := r.CommonBase([]string{"B", "C"})
	assert.True(t, ok)
	assert.Equal(t, "A", base)
}

func Test_CommonBase_None(t *testing.T) {
	r := New()
	r.Register("A", nil)
	r.Register("B", nil)

	_, ok := r.CommonBase([]string{"A", "B"})
	assert.False(t, ok)
}

func Test_Validate_NoCycles(t *testing.T) {
	r := New()
	r.Register("A", nil)
	r.Register("B", []string{"A"})

	assert.Empty(t, r.Validate())
	assert.NotNil(t, r.Validate())
}

func Test_Validate_DetectsCycle(t *testing.T) {
	r := New()
	r.Register("A", []string{"C"})
	r.Register("B", []string{"A"})
	r.Register("C", []string{"B"})

	cyclic := r.Validate()
	assert.ElementsMatch(t, []string{"A", "B", "C"}, cyclic)
}

func Test_InheritanceChain_CycleDoesNotHang(t *testing.T) {
	r := New()
	r.Register("A", []string{"B"})
	r.Register("B", []string{"A"})

	chain := r.InheritanceChain("A")
	assert.Equal(t, []string{"A", "B"}, chain)
}

func Test_InheritanceChain_DiamondEmitsBaseOnce(t *testing.T) {
	r := New()
	r.Register("A", nil)
	r.Register("B", []string{"A"})
	r.Register("C", []string{"A"})
	r.Register("D", []string{"B", "C"})

	chain := r.InheritanceChain("D")
	assert.Equal(t, []string{"D", "B", "A", "C"}, chain)

	count := 0
	for _, g := range chain {
		if g == "A" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func Test_Register_InvalidatesDependentCaches(t *testing.T) {
	r := New()
	r.Register("A", nil)
	r.Register("B", []string{"A"})
	r.Register("C", []string{"B"})

	assert.Equal(t, []string{"C", "B", "A"}, r.InheritanceChain("C"))

	r.Register("B", nil)

	assert.Equal(t, []string{"C", "B"}, r.InheritanceChain("C"))
}

func Test_Unregister_ResetsToEmptyState(t *testing.T) {
	r := New()
	r.Register("A", nil)
	r.Register("B", []string{"A"})

	r.Unregister("B")
	assert.Equal(t, []string{"B"}, r.InheritanceChain("B"))
	assert.Empty(t, r.Dependents("A"))
}
