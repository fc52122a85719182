package engine

import "github.com/dekarrin/stepparser/internal/stepparse/types"

// mockStream is a fixed, pre-built slice of tokens, grounded on the
// teacher's parse/test_fixtures.go fixed-token-sequence fixtures.
type mockStream struct {
	toks []types.Token
	pos  int
}

func newMockStream(toks ...types.Token) *mockStream {
	return &mockStream{toks: toks}
}

func (m *mockStream) Next() types.Token {
	t := m.toks[m.pos]
	m.pos++
	return t
}

func (m *mockStream) Peek() types.Token {
	return m.toks[m.pos]
}

func (m *mockStream) HasNext() bool {
	return m.pos < len(m.toks)
}

func tok(lexerPathID int, class string, value string, line, col int) types.Token {
	return types.Token{
		LexerPathID: lexerPathID,
		Class:       types.MakeDefaultClass(class),
		Value:       value,
		Line:        line,
		Column:      col,
	}
}

func lexerPathRemoved(lexerPathID int) types.Token {
	return types.Token{LexerPathID: lexerPathID, Class: types.LexerPathRemoved}
}

func lexerPathMerge(from int, toValue string) types.Token {
	return types.Token{LexerPathID: from, Class: types.LexerPathMerge, Value: toValue}
}
