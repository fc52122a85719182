// Package types contains the shared data-model values consumed and produced
// across the step-parser packages: token classes, tokens, code positions, and
// production matches. It intentionally has no dependency on any other
// stepparse package so that grammar, context, path, and engine can all depend
// on it without cycles.
package types

import "strings"

// TokenClass identifies a class of terminal symbol. Implementations must be
// comparable by ID: two TokenClass values with the same ID are the same
// terminal for every purpose in the engine.
type TokenClass interface {
	// ID returns the ID of the token class. The ID must uniquely identify
	// the terminal within all terminals of a grammar.
	ID() string

	// Human returns a human-readable name for the token class, for use in
	// error messages and trace output.
	Human() string

	// Equal returns whether the TokenClass equals another.
	Equal(o any) bool
}

type defaultClass string

func (class defaultClass) ID() string {
	return strings.ToLower(string(class))
}

func (class defaultClass) Human() string {
	return string(class)
}

func (class defaultClass) Equal(o any) bool {
	other, ok := o.(TokenClass)
	if !ok {
		otherPtr, ok := o.(*TokenClass)
		if !ok {
			return false
		}
		if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return other.ID() == class.ID()
}

const (
	// TokenUndefined is the class of a token that has not been classified.
	TokenUndefined = defaultClass("undefined_token")

	// TokenEndOfText is the class signaling the end of the input stream.
	TokenEndOfText = defaultClass("$")

	// LexerPathRemoved is the reserved terminal name carrying a lexer-path
	// removal lifecycle command. The associated token value is unused.
	LexerPathRemoved = defaultClass("lexerpath_removed")

	// LexerPathMerge is the reserved terminal name carrying a lexer-path
	// merge lifecycle command. The associated token value holds the id of
	// the lexer path to merge into, as a base-10 integer string.
	LexerPathMerge = defaultClass("lexerpath_merge")
)

// MakeDefaultClass returns a TokenClass that uses the lower-cased form of s
// as its ID and the unmodified s as its human-readable name.
func MakeDefaultClass(s string) TokenClass {
	return defaultClass(s)
}
