// Package grammar implements the in-memory grammar model (spec.md §3/§4.2):
// productions, terminals, precedence, associativity, semantic-action
// templates, and base-grammar links. It is grounded on the teacher's
// internal/ictiobus/grammar package (item.go's String/Equal/Parse idiom and
// grammar_test.go's AddTerm/AddRule/Validate surface).
package grammar

import (
	"sort"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/stepparser/internal/stepparse/stepperr"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

// TokenSplitterKind distinguishes a grammar's token-splitter configuration.
type TokenSplitterKind int

const (
	SplitterNone TokenSplitterKind = iota
	SplitterRegex
)

// TokenSplitter describes how a grammar wants raw lexemes subdivided before
// matching, if at all.
type TokenSplitter struct {
	Kind    TokenSplitterKind
	Pattern string
}

// FormatType names the textual dialect a grammar was authored in. The core
// does not interpret this beyond carrying it; it exists so GrammarState
// (spec.md §3) can report it.
type FormatType string

const (
	FormatUnspecified FormatType = ""
	FormatCEBNF       FormatType = "cebnf"
	FormatANTLR4      FormatType = "antlr4"
	FormatBison       FormatType = "bison"
)

// Grammar is a named collection of productions, terminals, precedence
// rules, semantic-action templates, and base-grammar links.
type Grammar struct {
	Name string

	prodOrder []string
	prods     map[string]Production

	termOrder []string
	terms     map[string]Terminal

	startProductions []string
	startTerminals   []string

	precedence    []PrecedenceRule
	associativity []AssociativityRule

	actionOrder []string
	actions     map[string]SemanticActionTemplate

	baseGrammars []string

	format        FormatType
	inheritable   bool
	tokenSplitter TokenSplitter

	errorRecoveryStrategy string

	inheritedRules  map[string]bool
	overriddenRules map[string]bool
}

// New returns an empty, named Grammar ready for incremental construction.
func New(name string) *Grammar {
	return &Grammar{
		Name:            name,
		prods:           make(map[string]Production),
		terms:           make(map[string]Terminal),
		actions:         make(map[string]SemanticActionTemplate),
		inheritedRules:  make(map[string]bool),
		overriddenRules: make(map[string]bool),
		inheritable:     true,
	}
}

// AddTerm registers a terminal under id, backed by token class cl. A
// duplicate id replaces the prior entry, matching the teacher's
// lex.AddClass semantics.
func (g *Grammar) AddTerm(id string, cl types.TokenClass) {
	if _, exists := g.terms[id]; !exists {
		g.termOrder = append(g.termOrder, id)
	}
	g.terms[id] = Terminal{Name: id, Class: cl}
}

// Term returns the terminal registered under id.
func (g *Grammar) Term(id string) (Terminal, bool) {
	t, ok := g.terms[id]
	return t, ok
}

// Terminals returns every registered terminal id, in registration order.
func (g *Grammar) Terminals() []string {
	out := make([]string, len(g.termOrder))
	copy(out, g.termOrder)
	return out
}

// AddProduction adds production p to the grammar. It fails with
// stepperr.DuplicateProduction if a production with the same name already
// exists.
func (g *Grammar) AddProduction(p Production) error {
	if _, exists := g.prods[p.Name]; exists {
		return stepperr.DuplicateProduction(p.Name)
	}
	g.prodOrder = append(g.prodOrder, p.Name)
	g.prods[p.Name] = p
	return nil
}

// AddRule is a convenience wrapper matching the teacher's grammar_test.go
// surface: it appends parts as a new production named name, allowing
// multiple alternatives to share a name the way `AddRule` historically
// allowed productions to be built up one alternative at a time. Each call
// adds a distinct numbered alternative production (name, name#2, name#3, ...)
// collected under the same non-terminal head; callers that want the raw,
// single-alternative form should use AddProduction directly.
func (g *Grammar) AddRule(nonTerminal string, parts []Part) error {
	name := nonTerminal
	suffix := 1
	for {
		if _, exists := g.prods[name]; !exists {
			break
		}
		suffix++
		name = nonTerminal + "#" + itoa(suffix)
	}
	return g.AddProduction(Production{Name: name, Parts: parts})
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// Production looks up a production by name. Lookup is O(1).
func (g *Grammar) Production(name string) (Production, bool) {
	p, ok := g.prods[name]
	return p, ok
}

// Productions returns every production name, in registration order.
func (g *Grammar) Productions() []string {
	out := make([]string, len(g.prodOrder))
	copy(out, g.prodOrder)
	return out
}

// AddStartProduction marks name as a valid entry production. It must
// already exist via AddProduction/AddRule.
func (g *Grammar) AddStartProduction(name string) error {
	if _, ok := g.prods[name]; !ok {
		return stepperr.GrammarLoadError(g.Name, errNotFound("start production", name))
	}
	g.startProductions = append(g.startProductions, name)
	return nil
}

// StartProductions returns the grammar's start productions.
func (g *Grammar) StartProductions() []string {
	out := make([]string, len(g.startProductions))
	copy(out, g.startProductions)
	return out
}

// AddStartTerminal registers id as a terminal that may legally begin input.
// ValidStartTerminals is not implicitly closed over inheritance; the
// inherit package's view recomputes that closure (spec.md §4.2).
func (g *Grammar) AddStartTerminal(id string) {
	g.startTerminals = append(g.startTerminals, id)
}

// StartTerminals returns the terminals explicitly registered as start
// terminals on this grammar (not including any inherited from a base
// grammar).
func (g *Grammar) StartTerminals() []string {
	out := make([]string, len(g.startTerminals))
	copy(out, g.startTerminals)
	return out
}

// AddPrecedenceRule registers rule.
func (g *Grammar) AddPrecedenceRule(rule PrecedenceRule) {
	g.precedence = append(g.precedence, rule)
}

// PrecedenceRules returns all registered precedence rules.
func (g *Grammar) PrecedenceRules() []PrecedenceRule {
	out := make([]PrecedenceRule, len(g.precedence))
	copy(out, g.precedence)
	return out
}

// AddAssociativityRule registers rule.
func (g *Grammar) AddAssociativityRule(rule AssociativityRule) {
	g.associativity = append(g.associativity, rule)
}

// AssociativityRules returns all registered associativity rules.
func (g *Grammar) AssociativityRules() []AssociativityRule {
	out := make([]AssociativityRule, len(g.associativity))
	copy(out, g.associativity)
	return out
}

// AddSemanticActionTemplate registers tmpl under tmpl.Name, replacing any
// prior template of the same name.
func (g *Grammar) AddSemanticActionTemplate(tmpl SemanticActionTemplate) {
	if _, exists := g.actions[tmpl.Name]; !exists {
		g.actionOrder = append(g.actionOrder, tmpl.Name)
	}
	g.actions[tmpl.Name] = tmpl
}

// SemanticActionTemplate looks up a template directly on this grammar
// (not following inheritance; that is manager.Scoped's job).
func (g *Grammar) SemanticActionTemplate(name string) (SemanticActionTemplate, bool) {
	t, ok := g.actions[name]
	return t, ok
}

// SemanticActionTemplates returns every template registered directly on
// this grammar, in registration order.
func (g *Grammar) SemanticActionTemplates() []SemanticActionTemplate {
	out := make([]SemanticActionTemplate, 0, len(g.actionOrder))
	for _, name := range g.actionOrder {
		out = append(out, g.actions[name])
	}
	return out
}

// SetBaseGrammars sets the grammars this one directly inherits from.
func (g *Grammar) SetBaseGrammars(names []string) {
	g.baseGrammars = append([]string(nil), names...)
}

// BaseGrammars returns the grammars this one directly inherits from.
func (g *Grammar) BaseGrammars() []string {
	out := make([]string, len(g.baseGrammars))
	copy(out, g.baseGrammars)
	return out
}

// SetFormatType sets the textual dialect this grammar was authored in.
func (g *Grammar) SetFormatType(f FormatType) { g.format = f }

// FormatType returns the textual dialect this grammar was authored in.
func (g *Grammar) FormatType() FormatType { return g.format }

// SetInheritable sets whether other grammars may declare this one as a base.
func (g *Grammar) SetInheritable(v bool) { g.inheritable = v }

// Inheritable returns whether other grammars may declare this one as a base.
func (g *Grammar) Inheritable() bool { return g.inheritable }

// SetTokenSplitter sets the grammar's token-splitter configuration.
func (g *Grammar) SetTokenSplitter(s TokenSplitter) { g.tokenSplitter = s }

// TokenSplitter returns the grammar's token-splitter configuration.
func (g *Grammar) TokenSplitter() TokenSplitter { return g.tokenSplitter }

// SetErrorRecoveryStrategy sets the name of this grammar's recovery
// strategy ("skip", "insert", "backtrack", or "none"). Installed on the
// Context Adapter by StepParser.SetActiveGrammar and consulted first by
// Adapter.ErrorRecoveryStrategy, ahead of the engine's configured default.
func (g *Grammar) SetErrorRecoveryStrategy(s string) { g.errorRecoveryStrategy = s }

// ErrorRecoveryStrategy returns the name of the default recovery strategy
// for this grammar.
func (g *Grammar) ErrorRecoveryStrategy() string { return g.errorRecoveryStrategy }

// MarkInherited records that ruleName was brought in (unmodified) from a
// base grammar, for GrammarState reporting.
func (g *Grammar) MarkInherited(ruleName string) { g.inheritedRules[ruleName] = true }

// MarkOverridden records that ruleName overrides a same-named rule from a
// base grammar, for GrammarState reporting.
func (g *Grammar) MarkOverridden(ruleName string) { g.overriddenRules[ruleName] = true }

// InheritedRules returns the names marked via MarkInherited.
func (g *Grammar) InheritedRules() []string { return sortedKeys(g.inheritedRules) }

// OverriddenRules returns the names marked via MarkOverridden.
func (g *Grammar) OverriddenRules() []string { return sortedKeys(g.overriddenRules) }

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate checks the grammar's structural invariants (spec.md §3):
// production names are unique (guaranteed already by AddProduction),
// there is at least one terminal and one production, and start-productions
// are a subset of productions.
func (g *Grammar) Validate() error {
	if len(g.terms) == 0 {
		return stepperr.GrammarLoadError(g.Name, errNotFound("grammar", "has no terminals"))
	}
	if len(g.prods) == 0 {
		return stepperr.GrammarLoadError(g.Name, errNotFound("grammar", "has no productions"))
	}
	for _, sp := range g.startProductions {
		if _, ok := g.prods[sp]; !ok {
			return stepperr.GrammarLoadError(g.Name, errNotFound("start production", sp))
		}
	}
	return nil
}

func errNotFound(kind, name string) error {
	return &notFoundError{kind: kind, name: name}
}

type notFoundError struct {
	kind string
	name string
}

func (e *notFoundError) Error() string {
	return e.kind + " " + e.name + " not found or invalid"
}

// String returns a wrapped, human-readable rendering of the grammar, in the
// teacher's rosed-wrapped style (tunascript/syntax's String() methods).
func (g *Grammar) String() string {
	var sb strings.Builder
	sb.WriteString("GRAMMAR ")
	sb.WriteString(g.Name)
	if len(g.baseGrammars) > 0 {
		sb.WriteString(" EXTENDS ")
		sb.WriteString(strings.Join(g.baseGrammars, ", "))
	}
	sb.WriteString("\n")
	for _, name := range g.prodOrder {
		line := "  " + g.prods[name].String()
		sb.WriteString(rosed.Edit(line).Wrap(78).String())
		sb.WriteString("\n")
	}
	return sb.String()
}
