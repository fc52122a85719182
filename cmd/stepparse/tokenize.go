package main

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

// isInteractiveStdio reports whether both stdin and stdout are attached to a
// terminal, the same precondition the teacher's root engine used to decide
// between a readline-backed reader and a direct one.
func isInteractiveStdio() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// lineStream is a whitespace-tokenized types.TokenStream over a single input
// line, classifying each word as one of the grammar's known terminal ids
// when it matches exactly, and as the catch-all "word" class otherwise.
type lineStream struct {
	toks []types.Token
	pos  int
}

func tokenizeLine(g *grammar.Grammar, line string) *lineStream {
	known := make(map[string]bool)
	for _, id := range g.Terminals() {
		known[id] = true
	}

	words := strings.Fields(line)
	toks := make([]types.Token, 0, len(words))
	col := 1
	for _, w := range words {
		class := "word"
		if known[w] {
			class = w
		}
		toks = append(toks, types.Token{
			LexerPathID: 0,
			Class:       types.MakeDefaultClass(class),
			Value:       w,
			Line:        1,
			Column:      col,
		})
		col += len(w) + 1
	}
	return &lineStream{toks: toks}
}

func (s *lineStream) Next() types.Token {
	t := s.toks[s.pos]
	s.pos++
	return t
}

func (s *lineStream) Peek() types.Token {
	return s.toks[s.pos]
}

func (s *lineStream) HasNext() bool {
	return s.pos < len(s.toks)
}
