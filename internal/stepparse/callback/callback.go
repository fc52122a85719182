// Package callback implements the per-production Callback Registry
// (spec.md §4.9): a replace-on-register binding from production name to a
// user function, invoked synchronously on every match with a rich
// per-invocation context map. A panicking callback is captured and logged;
// it never aborts parsing or prunes the path that triggered it, grounded
// on the teacher's recover-and-log pattern in server middleware
// (server/api/api.go's recovery middleware) adapted here to a direct
// function call instead of an HTTP handler chain.
package callback

import (
	"log"

	"github.com/dekarrin/stepparser/internal/stepparse/symbols"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

// Context is the per-invocation context map passed to a callback, per
// spec.md §4.9: token, position, contextInfo, symbolTable, customContext,
// production, grammarName, at minimum. Custom is the caller-provided map
// set via SetCallbackContext; Extra carries any additional named values a
// caller wants visible without widening this struct.
type Context struct {
	Token         types.Token
	Position      types.CodePosition
	ContextInfo   any
	SymbolTable   *symbols.Table
	CustomContext map[string]any
	Production    string
	GrammarName   string
	Extra         map[string]any
}

// Func is a registered production callback.
type Func func(ctx Context)

// Registry holds one callback per production name.
type Registry struct {
	fns           map[string]Func
	customContext map[string]any
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{fns: make(map[string]Func), customContext: make(map[string]any)}
}

// Register binds fn to productionName, replacing any prior binding.
func (r *Registry) Register(productionName string, fn Func) {
	r.fns[productionName] = fn
}

// Unregister removes the binding for productionName, if any.
func (r *Registry) Unregister(productionName string) {
	delete(r.fns, productionName)
}

// Clear removes every registered callback.
func (r *Registry) Clear() {
	r.fns = make(map[string]Func)
}

// SetContext replaces the caller-provided custom context map merged into
// every future invocation's Context.CustomContext.
func (r *Registry) SetContext(ctx map[string]any) {
	r.customContext = ctx
}

// GetContext returns the current caller-provided custom context map.
func (r *Registry) GetContext() map[string]any {
	return r.customContext
}

// ClearContext resets the custom context map to empty.
func (r *Registry) ClearContext() {
	r.customContext = make(map[string]any)
}

// Has reports whether a callback is registered for productionName.
func (r *Registry) Has(productionName string) bool {
	_, ok := r.fns[productionName]
	return ok
}

// Invoke calls the callback registered for productionName, if any, with
// ctx.CustomContext set to the registry's current custom context map. A
// panic inside fn is recovered and logged; Invoke never propagates it and
// never reports failure to the caller, matching spec.md §4.9's "must not
// abort parsing or prune the path".
func (r *Registry) Invoke(productionName string, ctx Context) {
	fn, ok := r.fns[productionName]
	if !ok {
		return
	}

	ctx.CustomContext = r.customContext
	ctx.Production = productionName

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("ERROR: callback for production %q panicked: %v", productionName, rec)
		}
	}()
	fn(ctx)
}
