package grammar

import "strings"

// LegacyCallback is an opaque hook a production may carry over from an older
// grammar format. The core engine does not interpret it; it is surfaced only
// so a caller migrating an older grammar can still find and dispatch it
// itself.
type LegacyCallback struct {
	Name string
	Args []string
}

// Production is a named rewrite rule with an ordered list of production
// parts.
type Production struct {
	Name     string
	Parts    []Part
	Callback *LegacyCallback
}

func (p Production) String() string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	sb.WriteString(" ->")
	for _, part := range p.Parts {
		sb.WriteRune(' ')
		sb.WriteString(part.String())
	}
	return sb.String()
}

// FirstTerminal returns the name of the terminal at the head of the
// production's parts and ok=true if the first part is a TerminalPart.
// Composite first parts (Optional/ZeroOrMore/...) return ok=false: the
// engine's per-token filter (spec.md §4.8 step 3c) only fires on a bare
// leading terminal.
func (p Production) FirstTerminal() (name string, ok bool) {
	if len(p.Parts) == 0 {
		return "", false
	}
	if tp, isTerm := p.Parts[0].(TerminalPart); isTerm {
		return tp.Name, true
	}
	return "", false
}

// Tail returns the parts remaining after dropping the first part. An empty
// result with ok=false signals there is no tail (the production is fully
// consumed).
func (p Production) Tail() (tail []Part, ok bool) {
	if len(p.Parts) <= 1 {
		return nil, false
	}
	rest := make([]Part, len(p.Parts)-1)
	copy(rest, p.Parts[1:])
	return rest, true
}

// WithParts returns a copy of p with Parts replaced by parts.
func (p Production) WithParts(parts []Part) Production {
	return Production{Name: p.Name, Parts: parts, Callback: p.Callback}
}
