package grammar

import "github.com/dekarrin/stepparser/internal/stepparse/types"

// Terminal is a named token class. Its identity is its name; it is
// immutable once the grammar that holds it has been constructed.
type Terminal struct {
	Name  string
	Class types.TokenClass
}

func (t Terminal) String() string {
	return t.Name
}
