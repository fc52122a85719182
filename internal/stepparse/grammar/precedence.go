package grammar

import "strings"

// Associativity is the reduction direction preferred for an operator when a
// precedence tie must be broken.
type Associativity int

const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
)

func (a Associativity) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	default:
		return "none"
	}
}

// PrecedenceRule assigns a precedence level and associativity to a set of
// operators.
type PrecedenceRule struct {
	Level         int
	Operators     map[string]bool
	Associativity Associativity
	Description   string
}

// AssociativityRule records the associativity of a single operator at a
// given level, scoped to the grammar it was registered against.
type AssociativityRule struct {
	Operator      string
	Associativity Associativity
	Level         int
	Scope         string
}

// SemanticActionTemplate is a named, parameterized action body. It is
// instantiated by substituting ${param} placeholders in Template with the
// corresponding entry of args; the core engine never executes the result, it
// only performs the substitution — execution is the caller's concern
// (spec.md §1's "semantic actions are dispatched; their bodies are opaque
// callbacks").
type SemanticActionTemplate struct {
	Name        string
	Template    string
	Parameters  []string
	ReturnType  string
	Description string
}

// Instantiate substitutes every ${param} placeholder named in t.Parameters
// with the corresponding value from args (by parameter name). Placeholders whose
// parameter has no corresponding arg are left unsubstituted.
func (t SemanticActionTemplate) Instantiate(args map[string]string) string {
	out := t.Template
	for _, param := range t.Parameters {
		val, ok := args[param]
		if !ok {
			continue
		}
		out = strings.ReplaceAll(out, "${"+param+"}", val)
	}
	return out
}
