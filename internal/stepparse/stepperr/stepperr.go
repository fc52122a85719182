// Package stepperr holds the error kinds surfaced by the step-parser
// packages, grounded on the teacher's icterrors shape: one constructor per
// kind, errors.Is-compatible via a sentinel Kind, and a FullMessage() for
// kinds that carry source-position context worth wrapping.
package stepperr

import (
	"errors"
	"fmt"

	"github.com/dekarrin/rosed"
)

// Kind distinguishes the error kinds named in the spec. Use errors.Is with
// the sentinel returned by Is(kind), or use KindOf, to test for a particular
// kind regardless of the wrapped detail message.
type Kind int

const (
	_ Kind = iota

	// KindGrammarNotActive indicates parse was called with a grammar name
	// that does not match the engine's currently active grammar.
	KindGrammarNotActive

	// KindDuplicateProduction indicates an attempt to add a production whose
	// name is already present in the grammar.
	KindDuplicateProduction

	// KindSymbolRedeclaration indicates an attempt to declare a symbol in a
	// (name, scope) pair that has already been declared.
	KindSymbolRedeclaration

	// KindCircularInheritance indicates one or more grammars participate in
	// a base-grammar reference cycle.
	KindCircularInheritance

	// KindPoolExhausted indicates a pool's max-capacity bound was exceeded.
	KindPoolExhausted

	// KindPoolDisposed indicates an operation was attempted on a pool after
	// its owning arena was disposed.
	KindPoolDisposed

	// KindInvalidHandle indicates release of an unknown or already-released
	// pool handle.
	KindInvalidHandle

	// KindGrammarLoadError indicates malformed grammar source text.
	KindGrammarLoadError

	// KindParseRecoverable marks a recoverable failure at a source line and
	// column. The grammar text reader uses its message for malformed
	// alternatives and @action signatures, which reach callers as a
	// GrammarLoadError. The context adapter does not produce it: recovery
	// decisions reach the engine as context.RecoveryDecision values, and
	// StepParser.Parse never returns this kind.
	KindParseRecoverable
)

func (k Kind) String() string {
	switch k {
	case KindGrammarNotActive:
		return "GrammarNotActive"
	case KindDuplicateProduction:
		return "DuplicateProduction"
	case KindSymbolRedeclaration:
		return "SymbolRedeclaration"
	case KindCircularInheritance:
		return "CircularInheritance"
	case KindPoolExhausted:
		return "PoolExhausted"
	case KindPoolDisposed:
		return "PoolDisposed"
	case KindInvalidHandle:
		return "InvalidHandle"
	case KindGrammarLoadError:
		return "GrammarLoadError"
	case KindParseRecoverable:
		return "ParseRecoverable"
	default:
		return "Unknown"
	}
}

// stepError is the concrete error type returned by every constructor in this
// package.
type stepError struct {
	kind    Kind
	msg     string
	wrap    error
	pos     string
	hasPos  bool
	context string
}

func (e *stepError) Error() string {
	if e.msg == "" {
		return e.kind.String()
	}
	return fmt.Sprintf("%s: %s", e.kind.String(), e.msg)
}

func (e *stepError) Unwrap() error {
	return e.wrap
}

// Is allows errors.Is(err, stepperr.Is(KindX)) to work by comparing the Kind
// wrapped in the sentinel.
func (e *stepError) Is(target error) bool {
	if k, ok := target.(kindSentinel); ok {
		return e.kind == k.kind
	}
	return false
}

// kindSentinel lets callers write errors.Is(err, stepperr.Is(KindPoolExhausted)).
type kindSentinel struct{ kind Kind }

func (kindSentinel) Error() string { return "" }

// Is returns a sentinel error usable with errors.Is to test for kind.
func Is(kind Kind) error {
	return kindSentinel{kind: kind}
}

// KindOf returns the Kind of err if err (or something it wraps) is a
// stepperr error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var se *stepError
	if errors.As(err, &se) {
		return se.kind, true
	}
	return 0, false
}

// FullMessage returns a wrapped, multi-line rendering of the error suitable
// for terminal output, including source-position context when available.
func (e *stepError) FullMessage() string {
	msg := e.Error()
	if e.hasPos {
		msg = fmt.Sprintf("%s\n  at %s", msg, e.pos)
	}
	if e.context != "" {
		msg = fmt.Sprintf("%s\n  %s", msg, e.context)
	}
	return rosed.Edit(msg).Wrap(78).String()
}

func newErr(kind Kind, format string, args ...any) *stepError {
	return &stepError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// GrammarNotActive returns a KindGrammarNotActive error reporting that parse
// was requested against requested while active is the engine's active
// grammar.
func GrammarNotActive(requested, active string) error {
	return newErr(KindGrammarNotActive, "requested grammar %q but active grammar is %q", requested, active)
}

// DuplicateProduction returns a KindDuplicateProduction error for production
// name name.
func DuplicateProduction(name string) error {
	return newErr(KindDuplicateProduction, "production %q already exists in grammar", name)
}

// SymbolRedeclaration returns a KindSymbolRedeclaration error for the given
// (name, scope) pair.
func SymbolRedeclaration(name, scopeID string) error {
	return newErr(KindSymbolRedeclaration, "symbol %q already declared in scope %q", name, scopeID)
}

// CircularInheritance returns a KindCircularInheritance error naming the
// grammars found participating in a cycle.
func CircularInheritance(grammars []string) error {
	e := newErr(KindCircularInheritance, "circular base-grammar reference involving: %v", grammars)
	return e
}

// PoolExhausted returns a KindPoolExhausted error for the named pool.
func PoolExhausted(poolName string, maxCapacity int) error {
	return newErr(KindPoolExhausted, "pool %q exceeded max capacity of %d", poolName, maxCapacity)
}

// PoolDisposed returns a KindPoolDisposed error for the named pool.
func PoolDisposed(poolName string) error {
	return newErr(KindPoolDisposed, "pool %q has been disposed", poolName)
}

// InvalidHandle returns a KindInvalidHandle error for handle.
func InvalidHandle(handle string) error {
	return newErr(KindInvalidHandle, "handle %q is unknown or already released", handle)
}

// GrammarLoadError returns a KindGrammarLoadError error wrapping cause, for
// the named grammar source file.
func GrammarLoadError(filename string, cause error) error {
	e := newErr(KindGrammarLoadError, "%s: %s", filename, cause.Error())
	e.wrap = cause
	return e
}

// ParseRecoverable returns a KindParseRecoverable error describing a
// recoverable parse failure at the given line and column, with a
// human-readable message. See KindParseRecoverable for where it is used.
func ParseRecoverable(msg string, line, col int) error {
	e := newErr(KindParseRecoverable, "%s", msg)
	e.hasPos = true
	e.pos = fmt.Sprintf("line %d, column %d", line, col)
	return e
}
