package util

import (
	"sort"
	"strings"
)

// Stack is a simple LIFO stack of values of type E. The zero value is an
// empty, ready-to-use stack.
type Stack[E any] struct {
	Of []E
}

// Push adds v to the top of the stack.
func (s *Stack[E]) Push(v E) {
	s.Of = append(s.Of, v)
}

// Pop removes and returns the value at the top of the stack. It panics if the
// stack is empty.
func (s *Stack[E]) Pop() E {
	if len(s.Of) == 0 {
		panic("pop of empty stack")
	}
	v := s.Of[len(s.Of)-1]
	s.Of = s.Of[:len(s.Of)-1]
	return v
}

// Peek returns the value at the top of the stack without removing it. It
// panics if the stack is empty.
func (s Stack[E]) Peek() E {
	if len(s.Of) == 0 {
		panic("peek of empty stack")
	}
	return s.Of[len(s.Of)-1]
}

// Empty returns whether the stack has no elements.
func (s Stack[E]) Empty() bool {
	return len(s.Of) == 0
}

// Len returns the number of elements currently on the stack.
func (s Stack[E]) Len() int {
	return len(s.Of)
}

// OrderedKeys returns the keys of m sorted alphabetically by their string
// form. Used for deterministic iteration/printing over otherwise
// unordered Go maps.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ArticleFor returns "a" or "an" depending on whether word begins with a
// vowel sound. If capital is true, the article is capitalized.
func ArticleFor(word string, capital bool) string {
	article := "a"

	if word != "" {
		firstLetter := strings.ToLower(string(word[0]))
		switch firstLetter {
		case "a", "e", "i", "o", "u":
			article = "an"
		}
	}

	if capital {
		article = strings.ToUpper(string(article[0])) + article[1:]
	}

	return article
}
