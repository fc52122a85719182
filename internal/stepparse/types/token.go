package types

import "fmt"

// Token is a lexeme read from an external lexer, combined with the token
// class it was lexed as, its source position, and the lexer path it arrived
// on. The core engine consumes tokens only through this shape; it never
// constructs tokens of its own other than the synthetic LexerPathRemoved /
// LexerPathMerge lifecycle commands a caller chooses to inject.
type Token struct {
	// LexerPathID identifies the speculative tokenization branch this token
	// belongs to. A single-path lexer always uses the same id.
	LexerPathID int

	// Class is the terminal this token was lexed as.
	Class TokenClass

	// Value is the text that was lexed as Class, as it appears in source.
	Value string

	// Line is the 1-indexed line number the token appears on.
	Line int

	// Column is the 1-indexed character-of-line the token appears on.
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("(%s %q @%d:%d lp=%d)", t.Class.ID(), t.Value, t.Line, t.Column, t.LexerPathID)
}

// TokenStream is an iteration-only contract over a sequence of tokens. The
// core engine never assumes anything about how a stream produces its
// tokens; lazy, eager, and multi-batch-async implementations are all valid.
type TokenStream interface {
	// Next returns the next token in the stream and advances it by one.
	Next() Token

	// Peek returns the next token without advancing the stream.
	Peek() Token

	// HasNext returns whether the stream has any further tokens.
	HasNext() bool
}
