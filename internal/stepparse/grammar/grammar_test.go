package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

func Test_Grammar_AddProduction_Duplicate(t *testing.T) {
	g := New("test")
	err := g.AddProduction(Production{Name: "EXPR", Parts: []Part{TerminalPart{Name: "num"}}})
	assert.NoError(t, err)

	err = g.AddProduction(Production{Name: "EXPR", Parts: []Part{TerminalPart{Name: "num"}}})
	assert.Error(t, err)
}

func Test_Grammar_AddRule_NumbersAlternatives(t *testing.T) {
	g := New("test")
	assert.NoError(t, g.AddRule("EXPR", []Part{TerminalPart{Name: "num"}}))
	assert.NoError(t, g.AddRule("EXPR", []Part{TerminalPart{Name: "id"}}))

	names := g.Productions()
	assert.ElementsMatch(t, []string{"EXPR", "EXPR#2"}, names)
}

func Test_Grammar_Validate_RequiresTerminalsAndProductions(t *testing.T) {
	g := New("empty")
	assert.Error(t, g.Validate())

	g.AddTerm("num", types.MakeDefaultClass("num"))
	assert.Error(t, g.Validate())

	assert.NoError(t, g.AddProduction(Production{Name: "EXPR", Parts: []Part{TerminalPart{Name: "num"}}}))
	assert.NoError(t, g.Validate())
}

func Test_Grammar_AddStartProduction_RequiresExisting(t *testing.T) {
	g := New("test")
	assert.Error(t, g.AddStartProduction("NOPE"))

	assert.NoError(t, g.AddProduction(Production{Name: "EXPR", Parts: []Part{TerminalPart{Name: "num"}}}))
	assert.NoError(t, g.AddStartProduction("EXPR"))
	assert.Equal(t, []string{"EXPR"}, g.StartProductions())
}

func Test_Grammar_BaseGrammars_RoundTrip(t *testing.T) {
	g := New("child")
	g.SetBaseGrammars([]string{"base1", "base2"})
	assert.Equal(t, []string{"base1", "base2"}, g.BaseGrammars())
}

func Test_Grammar_InheritedOverriddenRules(t *testing.T) {
	g := New("test")
	g.MarkInherited("EXPR")
	g.MarkOverridden("STMT")

	assert.Equal(t, []string{"EXPR"}, g.InheritedRules())
	assert.Equal(t, []string{"STMT"}, g.OverriddenRules())
}

func Test_Production_FirstTerminal(t *testing.T) {
	p := Production{Name: "EXPR", Parts: []Part{TerminalPart{Name: "num"}, NonTerminalPart{Name: "TAIL"}}}
	name, ok := p.FirstTerminal()
	assert.True(t, ok)
	assert.Equal(t, "num", name)

	p2 := Production{Name: "EXPR", Parts: []Part{NonTerminalPart{Name: "TAIL"}}}
	_, ok2 := p2.FirstTerminal()
	assert.False(t, ok2)
}

func Test_Production_Tail(t *testing.T) {
	p := Production{Name: "EXPR", Parts: []Part{
		TerminalPart{Name: "num"},
		TerminalPart{Name: "plus"},
		NonTerminalPart{Name: "EXPR"},
	}}
	tail, ok := p.Tail()
	assert.True(t, ok)
	assert.Equal(t, []Part{TerminalPart{Name: "plus"}, NonTerminalPart{Name: "EXPR"}}, tail)

	single := Production{Name: "EXPR", Parts: []Part{TerminalPart{Name: "num"}}}
	_, ok2 := single.Tail()
	assert.False(t, ok2)
}

func Test_SemanticActionTemplate_Instantiate(t *testing.T) {
	tmpl := SemanticActionTemplate{
		Name:       "add",
		Template:   "${left} + ${right}",
		Parameters: []string{"left", "right"},
	}
	out := tmpl.Instantiate(map[string]string{"left": "1", "right": "2"})
	assert.Equal(t, "1 + 2", out)

	partial := tmpl.Instantiate(map[string]string{"left": "1"})
	assert.Equal(t, "1 + ${right}", partial)
}

func Test_Parse_SimpleGrammar(t *testing.T) {
	src := `
		EXPR -> num plus num | num ;
		@precedence 1 left plus minus
		@action add(left, right) = ${left} + ${right}
	`
	g, err := Parse(src, "test.grm")
	assert.NoError(t, err)
	assert.NoError(t, g.Validate())

	assert.ElementsMatch(t, []string{"EXPR", "EXPR#2"}, g.Productions())
	assert.ElementsMatch(t, []string{"num", "plus"}, g.Terminals())

	rules := g.PrecedenceRules()
	assert.Len(t, rules, 1)
	assert.Equal(t, 1, rules[0].Level)
	assert.Equal(t, AssocLeft, rules[0].Associativity)
	assert.True(t, rules[0].Operators["plus"])

	tmpl, ok := g.SemanticActionTemplate("add")
	assert.True(t, ok)
	assert.Equal(t, "${left} + ${right}", tmpl.Template)
	assert.Equal(t, []string{"left", "right"}, tmpl.Parameters)
}

func Test_Parse_NonTerminalReference(t *testing.T) {
	src := `
		EXPR -> num Tail ;
		Tail -> plus EXPR ;
	`
	g, err := Parse(src, "test.grm")
	assert.NoError(t, err)

	p, ok := g.Production("EXPR")
	assert.True(t, ok)
	assert.Len(t, p.Parts, 2)
	_, isNonTerm := p.Parts[1].(NonTerminalPart)
	assert.True(t, isNonTerm)
}

func Test_Parse_MalformedMissingArrow(t *testing.T) {
	_, err := Parse("EXPR num plus num ;", "bad.grm")
	assert.Error(t, err)
}

func Test_Parse_OptionalAndRepetitionParts(t *testing.T) {
	src := `LIST -> [minus] num {comma} ;`
	g, err := Parse(src, "test.grm")
	assert.NoError(t, err)

	p, ok := g.Production("LIST")
	assert.True(t, ok)
	assert.Len(t, p.Parts, 3)
	_, isOpt := p.Parts[0].(OptionalPart)
	assert.True(t, isOpt)
	_, isZom := p.Parts[2].(ZeroOrMorePart)
	assert.True(t, isZom)
}
