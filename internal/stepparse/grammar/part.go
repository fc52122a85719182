package grammar

import "fmt"

// Part is a single element of a production's right-hand side. It is a closed
// tagged variant over Terminal | NonTerminal | Optional | ZeroOrMore |
// OneOrMore | Group, per spec.md §3/§9 — traversal is an exhaustive type
// switch, never virtual dispatch through an interface hierarchy of part
// kinds.
type Part interface {
	// OrderImportant reports whether the relative ordering of this part
	// with respect to its siblings is semantically significant.
	OrderImportant() bool

	// partTag is unexported so Part can only be implemented by the concrete
	// kinds declared in this file — the "closed" in "closed tagged variant".
	partTag()

	String() string
}

// TerminalPart matches a single terminal symbol by name.
type TerminalPart struct {
	Name    string
	Ordered bool
}

func (p TerminalPart) OrderImportant() bool { return p.Ordered }
func (TerminalPart) partTag()               {}
func (p TerminalPart) String() string       { return p.Name }

// NonTerminalPart matches a single non-terminal (production) by name.
type NonTerminalPart struct {
	Name    string
	Ordered bool
}

func (p NonTerminalPart) OrderImportant() bool { return p.Ordered }
func (NonTerminalPart) partTag()               {}
func (p NonTerminalPart) String() string       { return p.Name }

// OptionalPart matches Inner zero or one times.
type OptionalPart struct {
	Inner   Part
	Ordered bool
}

func (p OptionalPart) OrderImportant() bool { return p.Ordered }
func (OptionalPart) partTag()               {}
func (p OptionalPart) String() string       { return fmt.Sprintf("[%s]", p.Inner.String()) }

// ZeroOrMorePart matches Inner zero or more times.
type ZeroOrMorePart struct {
	Inner   Part
	Ordered bool
}

func (p ZeroOrMorePart) OrderImportant() bool { return p.Ordered }
func (ZeroOrMorePart) partTag()               {}
func (p ZeroOrMorePart) String() string       { return fmt.Sprintf("{%s}", p.Inner.String()) }

// OneOrMorePart matches Inner one or more times.
type OneOrMorePart struct {
	Inner   Part
	Ordered bool
}

func (p OneOrMorePart) OrderImportant() bool { return p.Ordered }
func (OneOrMorePart) partTag()               {}
func (p OneOrMorePart) String() string       { return fmt.Sprintf("{%s}+", p.Inner.String()) }

// GroupPart matches an ordered sequence of sub-parts as a single unit.
type GroupPart struct {
	Parts   []Part
	Ordered bool
}

func (p GroupPart) OrderImportant() bool { return p.Ordered }
func (GroupPart) partTag()               {}
func (p GroupPart) String() string {
	s := "("
	for i, sub := range p.Parts {
		if i > 0 {
			s += " "
		}
		s += sub.String()
	}
	return s + ")"
}

// PartName returns the symbol name referenced by a Terminal or NonTerminal
// part, and ok=false for any other kind (composite parts have no single
// name).
func PartName(p Part) (name string, isTerminal bool, ok bool) {
	switch v := p.(type) {
	case TerminalPart:
		return v.Name, true, true
	case NonTerminalPart:
		return v.Name, false, true
	default:
		return "", false, false
	}
}
