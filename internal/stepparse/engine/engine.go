// Package engine implements the StepParser orchestrator (spec.md §4.8):
// the sequential, single-threaded-cooperative state machine that dispatches
// each token to every live ParserPath, consults the Context Adapter to
// filter/rank/fork candidate productions, fires callbacks on match, and
// drives error recovery. It owns the Arena and every ObjectPool paths and
// snapshots are drawn from (spec.md §5's resource policy).
//
// Grounded on the teacher's parse/lr.go: a token-by-token driver loop over
// an explicit stack/state machine, with the same "no implicit concurrency,
// a suspension point only between token batches" shape. Opt-in tracing
// mirrors lr.go's notifyTrace* family: a single registered listener
// function, called only when non-nil, never buffered.
package engine

import (
	stdctx "context"
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/dekarrin/stepparser/internal/stepparse/arena"
	"github.com/dekarrin/stepparser/internal/stepparse/callback"
	"github.com/dekarrin/stepparser/internal/stepparse/config"
	pcontext "github.com/dekarrin/stepparser/internal/stepparse/context"
	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/stepparse/inherit"
	"github.com/dekarrin/stepparser/internal/stepparse/manager"
	"github.com/dekarrin/stepparser/internal/stepparse/path"
	"github.com/dekarrin/stepparser/internal/stepparse/stepperr"
	"github.com/dekarrin/stepparser/internal/stepparse/symbols"
	"github.com/dekarrin/stepparser/internal/stepparse/types"
)

// ParseResult is the outcome of a Parse call: the matches produced by
// every path still live when parsing stopped, and whether that stop was a
// cancellation (in which case the matches are a partial result).
type ParseResult struct {
	Matches []types.ProductionMatch
	Partial bool
}

// StepParser is the per-instance parsing engine. Multiple StepParser
// instances share no state and may run concurrently in different
// goroutines; a single instance is not safe for concurrent Parse calls
// (spec.md §5).
type StepParser struct {
	cfg config.EngineConfig

	arena    *arena.Arena
	pathPool *arena.Pool[*path.Path]

	grammars          map[string]*grammar.Grammar
	activeGrammarName string

	resolver   *inherit.Resolver
	precedence *manager.PrecedenceManager
	actions    *manager.SemanticActionManager
	symTable   *symbols.Table
	adapter    *pcontext.Adapter
	callbacks  *callback.Registry

	pathsByLexerPath map[int][]arena.Handle
	tailByLexerPath  map[int][]grammar.Part
	nextPathID       int

	contextFlags map[string]bool

	trace func(string)
}

// New returns a StepParser configured per cfg, with its own Arena and
// ParserPath pool.
func New(cfg config.EngineConfig) *StepParser {
	a := arena.New("stepparser")
	symTable := symbols.New()

	sp := &StepParser{
		cfg:              cfg,
		arena:            a,
		grammars:         make(map[string]*grammar.Grammar),
		resolver:         inherit.New(),
		symTable:         symTable,
		adapter:          pcontext.New(symTable),
		callbacks:        callback.New(),
		pathsByLexerPath: make(map[int][]arena.Handle),
		tailByLexerPath:  make(map[int][]grammar.Part),
		contextFlags:     make(map[string]bool),
	}
	sp.pathPool = arena.NewPool[*path.Path](a, "parser-paths", path.NewFactory(), cfg.PathPoolInitialCapacity, cfg.PathPoolMaxCapacity)
	sp.precedence = manager.NewPrecedenceManager(sp.resolver)
	sp.actions = manager.NewSemanticActionManager(sp.resolver)
	return sp
}

// RegisterTraceListener installs fn as the engine's trace listener,
// replacing any prior one. Pass nil to disable tracing. Tracing is
// opt-in and off by default (spec.md §9's callback/observability notes).
func (sp *StepParser) RegisterTraceListener(fn func(string)) {
	sp.trace = fn
}

func (sp *StepParser) notifyTrace(format string, args ...any) {
	if sp.trace == nil {
		return
	}
	sp.trace(fmt.Sprintf(format, args...))
}

// Resolver exposes the engine's Inheritance Resolver for read-only
// telemetry and for tests wanting to assert inheritance relationships
// directly.
func (sp *StepParser) Resolver() *inherit.Resolver { return sp.resolver }

// PrecedenceManager exposes the engine's Precedence Manager.
func (sp *StepParser) PrecedenceManager() *manager.PrecedenceManager { return sp.precedence }

// SemanticActionManager exposes the engine's Semantic Action Manager.
func (sp *StepParser) SemanticActionManager() *manager.SemanticActionManager { return sp.actions }

// SymbolTable exposes the engine's Symbol Table.
func (sp *StepParser) SymbolTable() *symbols.Table { return sp.symTable }

// ArenaStats returns the pool statistics behind the engine's telemetry
// endpoints.
func (sp *StepParser) ArenaStats() arena.Stats { return sp.pathPool.Stats() }

// RegisterGrammar makes g known to the engine (and its Inheritance
// Resolver and scoped managers) without making it the active grammar.
// SetActiveGrammar calls this implicitly for the grammar it activates, so
// callers only need to call RegisterGrammar directly for base grammars
// that are never themselves active.
func (sp *StepParser) RegisterGrammar(g *grammar.Grammar) {
	sp.grammars[g.Name] = g
	sp.resolver.Register(g.Name, g.BaseGrammars())
	for _, rule := range g.PrecedenceRules() {
		sp.precedence.RegisterPrecedence(g.Name, rule)
	}
	for _, rule := range g.AssociativityRules() {
		sp.precedence.RegisterAssociativity(g.Name, rule)
	}
	for _, tmpl := range g.SemanticActionTemplates() {
		sp.actions.Register(g.Name, tmpl)
	}
}

// SetActiveGrammar registers g (if not already) and makes it the engine's
// active grammar, resetting all internal path state (spec.md §4.8). This
// is idempotent: calling it twice with the same grammar is equivalent to
// calling it once.
func (sp *StepParser) SetActiveGrammar(g *grammar.Grammar) {
	sp.RegisterGrammar(g)
	sp.activeGrammarName = g.Name
	sp.adapter.InitializeForParsing(g.Name, nil)
	sp.adapter.SetRecoveryStrategy(g.ErrorRecoveryStrategy(), sp.cfg.DefaultRecoveryStrategy)
	sp.resetAllPaths()
}

// ActiveGrammar returns the name of the currently active grammar, or "" if
// none has been set.
func (sp *StepParser) ActiveGrammar() string { return sp.activeGrammarName }

func (sp *StepParser) resetAllPaths() {
	for l, handles := range sp.pathsByLexerPath {
		for _, h := range handles {
			if err := sp.pathPool.Release(h); err != nil {
				log.Printf("WARN: release during reset for lexer path %d: %v", l, err)
			}
		}
	}
	sp.pathsByLexerPath = make(map[int][]arena.Handle)
	sp.tailByLexerPath = make(map[int][]grammar.Part)
}

// SetContextState toggles a named contextual flag propagated to the
// Context Adapter.
func (sp *StepParser) SetContextState(name string, value bool) {
	sp.contextFlags[name] = value
}

// GetContextState reports the current value of a named contextual flag.
func (sp *StepParser) GetContextState(name string) bool {
	return sp.contextFlags[name]
}

// RegisterCallback binds fn to productionName.
func (sp *StepParser) RegisterCallback(productionName string, fn callback.Func) {
	sp.callbacks.Register(productionName, fn)
}

// UnregisterCallback removes the callback bound to productionName, if any.
func (sp *StepParser) UnregisterCallback(productionName string) {
	sp.callbacks.Unregister(productionName)
}

// ClearCallbacks removes every registered callback.
func (sp *StepParser) ClearCallbacks() {
	sp.callbacks.Clear()
}

// SetCallbackContext replaces the custom context map merged into every
// future callback invocation.
func (sp *StepParser) SetCallbackContext(ctx map[string]any) {
	sp.callbacks.SetContext(ctx)
}

// GetCallbackContext returns the current custom callback context map.
func (sp *StepParser) GetCallbackContext() map[string]any {
	return sp.callbacks.GetContext()
}

// ClearCallbackContext resets the custom callback context map to empty.
func (sp *StepParser) ClearCallbackContext() {
	sp.callbacks.ClearContext()
}

// Dispose tears down the engine's pools and arena. Pool operations after
// Dispose fail with stepperr.PoolDisposed.
func (sp *StepParser) Dispose() {
	sp.arena.Dispose()
}

// Parse drains stream's tokens against the active grammar and returns the
// concatenation of every live path's active-matches, in ascending path-id
// order. It fails with stepperr.GrammarNotActive if grammarName does not
// match the engine's active grammar. Cancelling ctx between tokens returns
// whatever matches the still-live paths have accumulated, with
// ParseResult.Partial set; a cancellation never interrupts the processing
// of the token already in flight (spec.md §5).
func (sp *StepParser) Parse(ctx stdctx.Context, grammarName string, stream types.TokenStream) (ParseResult, error) {
	if grammarName != sp.activeGrammarName {
		return ParseResult{}, stepperr.GrammarNotActive(grammarName, sp.activeGrammarName)
	}

	partial := false
	for stream.HasNext() {
		select {
		case <-ctx.Done():
			partial = true
		default:
		}
		if partial {
			break
		}
		t := stream.Next()
		sp.processToken(t)
	}

	matches := sp.collectMatches()
	sp.resetAllPaths()

	return ParseResult{Matches: matches, Partial: partial}, nil
}

func (sp *StepParser) collectMatches() []types.ProductionMatch {
	type idPath struct {
		id int
		p  *path.Path
	}
	var all []idPath
	for _, handles := range sp.pathsByLexerPath {
		for _, h := range handles {
			if p, ok := sp.pathPool.Get(h); ok {
				all = append(all, idPath{id: p.ID, p: p})
			}
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].id < all[j].id })

	var matches []types.ProductionMatch
	for _, ip := range all {
		matches = append(matches, ip.p.ActiveMatches...)
	}
	return matches
}

// processToken runs the per-token algorithm of spec.md §4.8 for a single
// incoming token.
func (sp *StepParser) processToken(t types.Token) {
	l := t.LexerPathID

	switch t.Class.ID() {
	case types.LexerPathRemoved.ID():
		sp.removeLexerPath(l)
		return
	case types.LexerPathMerge.ID():
		sp.mergeLexerPath(l, t.Value)
		return
	}

	handles := sp.pathsByLexerPath[l]
	if len(handles) == 0 {
		h, p, err := sp.pathPool.Acquire()
		if err != nil {
			log.Printf("ERROR: could not bootstrap parser path for lexer path %d: %v", l, err)
			return
		}
		p.LexerPathID = l
		p.ID = sp.nextPathID
		sp.nextPathID++
		sp.seedStartProductions(p)
		sp.pathsByLexerPath[l] = []arena.Handle{h}
		handles = sp.pathsByLexerPath[l]
	}

	originalCount := len(handles)
	for i := 0; i < originalCount; i++ {
		h := handles[i]
		p, ok := sp.pathPool.Get(h)
		if !ok {
			continue
		}
		sp.stepPath(l, h, p, t)
	}
}

func (sp *StepParser) seedStartProductions(p *path.Path) {
	if sp.activeGrammarName == "" {
		return
	}
	seen := make(map[string]bool)
	for _, gName := range sp.resolver.InheritanceChain(sp.activeGrammarName) {
		g, ok := sp.grammars[gName]
		if !ok {
			continue
		}
		for _, prodName := range g.StartProductions() {
			if seen[prodName] {
				continue
			}
			if prod, ok := g.Production(prodName); ok {
				p.AddProduction(prod)
				seen[prodName] = true
			}
		}
	}
}

func (sp *StepParser) stepPath(l int, h arena.Handle, p *path.Path, t types.Token) {
	var snapPtr *pcontext.Snapshot
	if p.HasSnapshot {
		snapPtr = &p.ContextSnapshot
	}
	sp.adapter.UpdateWithToken(t, snapPtr)

	if len(p.ActiveProductions) == 0 {
		sp.seedStartProductions(p)
	}

	var candidates []grammar.Production
	for _, prod := range p.ActiveProductions {
		if !sp.adapter.IsProductionValidInContext(prod, t.Class.ID()) {
			continue
		}
		name, ok := prod.FirstTerminal()
		if !ok || name != t.Class.ID() {
			continue
		}
		candidates = append(candidates, prod)
	}

	switch len(candidates) {
	case 0:
		sp.handleZeroMatches(l, h, p, t)
	case 1:
		sp.consume(l, p, candidates[0], t)
		sp.snapshotInto(p)
	default:
		sp.handleAmbiguity(l, p, candidates, t)
		sp.snapshotInto(p)
	}
}

func (sp *StepParser) snapshotInto(p *path.Path) {
	p.ContextSnapshot = sp.adapter.Snapshot()
	p.HasSnapshot = true
}

func (sp *StepParser) handleZeroMatches(l int, h arena.Handle, p *path.Path, t types.Token) {
	decision := sp.adapter.ErrorRecoveryStrategy(t)
	switch {
	case decision.CanRecover && decision.Strategy == pcontext.RecoverySkip:
		p.Position += len(t.Value)
		sp.notifyTrace("skip-recovery: lexer path %d advanced past %q", l, t.Value)
	case decision.CanRecover && decision.Strategy == pcontext.RecoveryInsert:
		// Out of scope: no-op by default (spec.md §4.8 step d).
		sp.notifyTrace("insert-recovery requested but not implemented: lexer path %d", l)
	default:
		sp.notifyTrace("pruning path %d on lexer path %d: no recoverable match", p.ID, l)
		sp.releasePath(l, h)
	}
}

func (sp *StepParser) handleAmbiguity(l int, p *path.Path, candidates []grammar.Production, t types.Token) {
	ranked := sp.adapter.RankProductionsByContext(candidates)
	chosen := ranked[0]
	forkCandidates := ranked[1:]

	maxForks := sp.cfg.ForkBound - 1
	if maxForks < 0 {
		maxForks = 0
	}
	if len(forkCandidates) > maxForks {
		sp.notifyTrace("fork bound %d exceeded at lexer path %d: dropping %d alternative(s)", sp.cfg.ForkBound, l, len(forkCandidates)-maxForks)
		forkCandidates = forkCandidates[:maxForks]
	}

	for _, alt := range forkCandidates {
		fh, fp, err := sp.pathPool.Acquire()
		if err != nil {
			log.Printf("ERROR: could not fork parser path for lexer path %d: %v", l, err)
			continue
		}
		p.Fork(fp, chosen.Name)
		fp.ID = sp.nextPathID
		sp.nextPathID++
		sp.pathsByLexerPath[l] = append(sp.pathsByLexerPath[l], fh)
		sp.notifyTrace("forked path %d from %d on lexer path %d for production %q", fp.ID, p.ID, l, alt.Name)
		sp.consume(l, fp, alt, t)
		sp.snapshotInto(fp)
	}

	sp.consume(l, p, chosen, t)
}

func (sp *StepParser) consume(l int, p *path.Path, prod grammar.Production, t types.Token) {
	match := types.ProductionMatch{
		Production: prod.Name,
		Matched:    t.Value,
		Start:      p.Position,
		End:        p.Position + len(t.Value),
	}
	p.AddMatch(match)
	p.Position += len(t.Value)

	sp.adapter.UpdateWithProduction(prod, t)

	sp.callbacks.Invoke(prod.Name, callback.Context{
		Token:       t,
		Position:    sp.adapter.Position(),
		ContextInfo: sp.adapter.ContextInfo(),
		SymbolTable: sp.symTable,
		GrammarName: sp.activeGrammarName,
	})

	p.RemoveProduction(prod.Name)

	if tail, ok := prod.Tail(); ok {
		sp.tailByLexerPath[l] = tail
		p.AddProduction(prod.WithParts(tail))
	} else {
		delete(sp.tailByLexerPath, l)
	}

	p.Confidence = sp.adapter.ProductionConfidence(prod)
	p.Score += p.Confidence

	sp.notifyTrace("consumed %q on path %d, lexer path %d: %s", prod.Name, p.ID, l, match.String())
}

func (sp *StepParser) releasePath(l int, h arena.Handle) {
	if err := sp.pathPool.Release(h); err != nil {
		log.Printf("WARN: release path on lexer path %d: %v", l, err)
	}
	handles := sp.pathsByLexerPath[l]
	for i, candidate := range handles {
		if candidate == h {
			sp.pathsByLexerPath[l] = append(handles[:i], handles[i+1:]...)
			break
		}
	}
	if len(sp.pathsByLexerPath[l]) == 0 {
		delete(sp.pathsByLexerPath, l)
	}
}

func (sp *StepParser) removeLexerPath(l int) {
	for _, h := range sp.pathsByLexerPath[l] {
		if err := sp.pathPool.Release(h); err != nil {
			log.Printf("WARN: release during lexer-path removal %d: %v", l, err)
		}
	}
	delete(sp.pathsByLexerPath, l)
	delete(sp.tailByLexerPath, l)
	sp.notifyTrace("lexer path %d removed", l)
}

func (sp *StepParser) mergeLexerPath(from int, toValue string) {
	to, err := strconv.Atoi(toValue)
	if err != nil {
		log.Printf("ERROR: lexer-path merge token had non-integer target %q", toValue)
		return
	}

	for _, h := range sp.pathsByLexerPath[from] {
		if p, ok := sp.pathPool.Get(h); ok {
			p.LexerPathID = to
		}
	}
	sp.pathsByLexerPath[to] = append(sp.pathsByLexerPath[to], sp.pathsByLexerPath[from]...)
	delete(sp.pathsByLexerPath, from)

	sp.tailByLexerPath[to] = append(sp.tailByLexerPath[to], sp.tailByLexerPath[from]...)
	delete(sp.tailByLexerPath, from)

	sp.notifyTrace("lexer path %d merged into %d", from, to)
}

// GetValidTerminalsForLexerPath returns the valid next terminals for
// lexer-path l, considering (a) the recorded active production parts for
// l, or the active grammar's start terminals if none, (b) the Context
// Adapter's validity filter, and (c) the first terminal of every live
// path's own active productions on l (spec.md §4.8).
func (sp *StepParser) GetValidTerminalsForLexerPath(l int) []string {
	terms := make(map[string]bool)

	if tail, ok := sp.tailByLexerPath[l]; ok && len(tail) > 0 {
		if name, isTerm, ok2 := grammar.PartName(tail[0]); ok2 && isTerm {
			terms[name] = true
		}
	} else {
		for _, gName := range sp.resolver.InheritanceChain(sp.activeGrammarName) {
			g, ok := sp.grammars[gName]
			if !ok {
				continue
			}
			for _, st := range g.StartTerminals() {
				terms[st] = true
			}
		}
	}

	for _, h := range sp.pathsByLexerPath[l] {
		p, ok := sp.pathPool.Get(h)
		if !ok {
			continue
		}
		for _, prod := range p.ActiveProductions {
			if name, ok2 := prod.FirstTerminal(); ok2 {
				terms[name] = true
			}
		}
	}

	out := make([]string, 0, len(terms))
	for name := range terms {
		if sp.adapter.IsTerminalValidInContext(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
