package grammar

import (
	"strconv"
	"strings"

	"github.com/dekarrin/stepparser/internal/stepparse/stepperr"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

// Parse reads a grammar from its textual source form and returns the
// constructed Grammar. The format is the teacher's CEBNF-ish fixture
// dialect (see internal/ictiobus/grammar's MustParse test fixtures):
//
//	NonTerm -> a b | c ;
//
// extended with three directive lines, each consuming the rest of its line:
//
//	@precedence <level> <assoc:left|right|none> op1 op2 ...
//	@assoc <op> <assoc:left|right|none>
//	@action <name>(<param1>, <param2>, ...) = <template body>
//
// Blank lines and lines beginning with "#" are ignored. filename is used
// only to annotate error messages.
func Parse(text, filename string) (*Grammar, error) {
	g := New(filename)
	lines := strings.Split(text, "\n")

	var pending strings.Builder
	flush := func(lineNo int) error {
		stmt := strings.TrimSpace(pending.String())
		pending.Reset()
		if stmt == "" {
			return nil
		}
		return parseStatement(g, stmt, filename, lineNo)
	}

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "@") {
			if err := flush(lineNo); err != nil {
				return nil, err
			}
			if err := parseDirective(g, line, filename, lineNo); err != nil {
				return nil, err
			}
			continue
		}

		pending.WriteString(" ")
		pending.WriteString(line)
		if strings.HasSuffix(line, ";") {
			if err := flush(lineNo); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(len(lines)); err != nil {
		return nil, err
	}

	return g, nil
}

// MustParse is a convenience for tests and bootstrap grammars: it panics on
// error, exactly as the teacher's grammar.MustParse does for its fixtures.
func MustParse(text string) *Grammar {
	g, err := Parse(text, "<inline>")
	if err != nil {
		panic(err.Error())
	}
	return g
}

func parseStatement(g *Grammar, stmt, filename string, lineNo int) error {
	stmt = strings.TrimSuffix(strings.TrimSpace(stmt), ";")
	arrow := strings.Index(stmt, "->")
	if arrow < 0 {
		return stepperr.GrammarLoadError(filename, lineErr(lineNo, "expected '->' in production rule"))
	}
	head := strings.TrimSpace(stmt[:arrow])
	if head == "" {
		return stepperr.GrammarLoadError(filename, lineErr(lineNo, "production rule has no non-terminal head"))
	}

	body := stmt[arrow+2:]
	alts := strings.Split(body, "|")
	for _, alt := range alts {
		parts, err := parseParts(alt)
		if err != nil {
			return stepperr.GrammarLoadError(filename, lineErr(lineNo, err.Error()))
		}
		if err := g.AddRule(head, parts); err != nil {
			return stepperr.GrammarLoadError(filename, lineErr(lineNo, err.Error()))
		}
		for _, p := range parts {
			if name, isTerm, ok := PartName(p); ok && isTerm {
				if _, exists := g.Term(name); !exists {
					g.AddTerm(name, types.MakeDefaultClass(name))
				}
			}
		}
	}
	return nil
}

// parseParts tokenizes one alternative's right-hand side into Parts. It
// supports bare symbols, [optional], {zero-or-more}, {one-or-more}+, and
// (grouped sequences); an uppercase-initial token is a non-terminal, any
// other token is a terminal, matching the teacher's fixture convention.
// Tokenization is whitespace-based, so a bracketed construct may only wrap a
// single symbol or a parenthesized group written without internal spaces;
// a multi-symbol repeated sequence should be factored into its own
// non-terminal in the source text.
func parseParts(alt string) ([]Part, error) {
	fields := strings.Fields(alt)
	if len(fields) == 0 {
		return nil, errEmptyAlt
	}
	var parts []Part
	for _, f := range fields {
		p, err := parseOnePart(f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

var errEmptyAlt = stepperr.ParseRecoverable("empty production alternative", 0, 0)

func parseOnePart(tok string) (Part, error) {
	switch {
	case strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]"):
		inner, err := parseOnePart(tok[1 : len(tok)-1])
		if err != nil {
			return nil, err
		}
		return OptionalPart{Inner: inner, Ordered: true}, nil
	case strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}+"):
		inner, err := parseOnePart(tok[1 : len(tok)-2])
		if err != nil {
			return nil, err
		}
		return OneOrMorePart{Inner: inner, Ordered: true}, nil
	case strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}"):
		inner, err := parseOnePart(tok[1 : len(tok)-1])
		if err != nil {
			return nil, err
		}
		return ZeroOrMorePart{Inner: inner, Ordered: true}, nil
	case strings.HasPrefix(tok, "(") && strings.HasSuffix(tok, ")"):
		inner, err := parseParts(tok[1 : len(tok)-1])
		if err != nil {
			return nil, err
		}
		return GroupPart{Parts: inner, Ordered: true}, nil
	default:
		if isNonTerminalName(tok) {
			return NonTerminalPart{Name: tok, Ordered: true}, nil
		}
		return TerminalPart{Name: tok, Ordered: true}, nil
	}
}

func isNonTerminalName(s string) bool {
	if s == "" {
		return false
	}
	r := s[0]
	return r >= 'A' && r <= 'Z'
}

func parseDirective(g *Grammar, line, filename string, lineNo int) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "@precedence":
		if len(fields) < 3 {
			return stepperr.GrammarLoadError(filename, lineErr(lineNo, "@precedence requires a level, an associativity, and at least one operator"))
		}
		level, err := strconv.Atoi(fields[1])
		if err != nil {
			return stepperr.GrammarLoadError(filename, lineErr(lineNo, "@precedence level must be an integer"))
		}
		assoc := parseAssoc(fields[2])
		ops := make(map[string]bool)
		for _, op := range fields[3:] {
			ops[op] = true
		}
		g.AddPrecedenceRule(PrecedenceRule{Level: level, Operators: ops, Associativity: assoc})
		return nil
	case "@assoc":
		if len(fields) < 3 {
			return stepperr.GrammarLoadError(filename, lineErr(lineNo, "@assoc requires an operator and an associativity"))
		}
		g.AddAssociativityRule(AssociativityRule{Operator: fields[1], Associativity: parseAssoc(fields[2])})
		return nil
	case "@action":
		rest := strings.TrimSpace(strings.TrimPrefix(line, "@action"))
		eq := strings.Index(rest, "=")
		if eq < 0 {
			return stepperr.GrammarLoadError(filename, lineErr(lineNo, "@action requires '= <template body>'"))
		}
		sig := strings.TrimSpace(rest[:eq])
		body := strings.TrimSpace(rest[eq+1:])
		name, params, err := parseActionSignature(sig)
		if err != nil {
			return stepperr.GrammarLoadError(filename, lineErr(lineNo, err.Error()))
		}
		g.AddSemanticActionTemplate(SemanticActionTemplate{Name: name, Template: body, Parameters: params})
		return nil
	default:
		return stepperr.GrammarLoadError(filename, lineErr(lineNo, "unknown directive "+fields[0]))
	}
}

func parseAssoc(s string) Associativity {
	switch strings.ToLower(s) {
	case "left":
		return AssocLeft
	case "right":
		return AssocRight
	default:
		return AssocNone
	}
}

func parseActionSignature(sig string) (name string, params []string, err error) {
	open := strings.Index(sig, "(")
	if open < 0 || !strings.HasSuffix(sig, ")") {
		return "", nil, errBadActionSig
	}
	name = strings.TrimSpace(sig[:open])
	if name == "" {
		return "", nil, errBadActionSig
	}
	inner := sig[open+1 : len(sig)-1]
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return name, nil, nil
	}
	for _, p := range strings.Split(inner, ",") {
		params = append(params, strings.TrimSpace(p))
	}
	return name, params, nil
}

var errBadActionSig = stepperr.ParseRecoverable("@action requires 'name(param, ...)' before '='", 0, 0)

func lineErr(lineNo int, msg string) error {
	return &lineError{line: lineNo, msg: msg}
}

type lineError struct {
	line int
	msg  string
}

func (e *lineError) Error() string {
	return "line " + strconv.Itoa(e.line) + ": " + e.msg
}
