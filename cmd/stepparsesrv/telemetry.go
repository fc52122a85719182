package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dekarrin/stepparser/internal/stepparse/engine"
)

// telemetryServer serves read-only JSON telemetry over an engine instance,
// grounded on the teacher's server/api package's router and panic-recovery
// idiom, adapted from a stateful multi-endpoint game API down to four
// stats-only GET endpoints.
type telemetryServer struct {
	sp *engine.StepParser
}

func newTelemetryServer(sp *engine.StepParser) *telemetryServer {
	return &telemetryServer{sp: sp}
}

func (s *telemetryServer) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/stats/inheritance", s.withRecovery(s.handleInheritance))
	r.Get("/stats/semantic-actions", s.withRecovery(s.handleSemanticActions))
	r.Get("/stats/precedence", s.withRecovery(s.handlePrecedence))
	r.Get("/stats/arena", s.withRecovery(s.handleArena))
	return r
}

func (s *telemetryServer) withRecovery(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if panicErr := recover(); panicErr != nil {
				logResponse("ERROR", req, http.StatusInternalServerError,
					fmt.Sprintf("panic: %v\n%s", panicErr, string(debug.Stack())))
				http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			}
		}()
		h(w, req)
	}
}

func writeJSON(w http.ResponseWriter, req *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logResponse("ERROR", req, status, "could not marshal JSON response: "+err.Error())
		return
	}
	logResponse("INFO", req, status, "")
}

func logResponse(level string, req *http.Request, status int, msg string) {
	for len(level) < 5 {
		level += " "
	}
	remoteIP := strings.SplitN(req.RemoteAddr, ":", 2)[0]
	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, status, msg)
}

// inheritanceStat reports one grammar's resolved inheritance chain.
type inheritanceStat struct {
	Grammar string   `json:"grammar"`
	Chain   []string `json:"chain"`
}

func (s *telemetryServer) handleInheritance(w http.ResponseWriter, req *http.Request) {
	active := s.sp.ActiveGrammar()
	if active == "" {
		writeJSON(w, req, http.StatusOK, []inheritanceStat{})
		return
	}
	chain := s.sp.Resolver().InheritanceChain(active)
	writeJSON(w, req, http.StatusOK, []inheritanceStat{{Grammar: active, Chain: chain}})
}

// semanticActionStat reports the resolution of a single semantic action name
// as seen from the active grammar.
type semanticActionStat struct {
	Grammar  string `json:"grammar"`
	Action   string `json:"action"`
	Resolved bool   `json:"resolved"`
	Template string `json:"template,omitempty"`
}

func (s *telemetryServer) handleSemanticActions(w http.ResponseWriter, req *http.Request) {
	active := s.sp.ActiveGrammar()
	if active == "" {
		writeJSON(w, req, http.StatusOK, []semanticActionStat{})
		return
	}

	names := req.URL.Query()["name"]
	out := make([]semanticActionStat, 0, len(names))
	for _, name := range names {
		tmpl, ok := s.sp.SemanticActionManager().Get(active, name)
		stat := semanticActionStat{Grammar: active, Action: name, Resolved: ok}
		if ok {
			stat.Template = tmpl.Template
		}
		out = append(out, stat)
	}
	writeJSON(w, req, http.StatusOK, out)
}

// precedenceStat reports the resolution of a single operator's precedence
// and associativity as seen from the active grammar.
type precedenceStat struct {
	Grammar       string `json:"grammar"`
	Operator      string `json:"operator"`
	Resolved      bool   `json:"resolved"`
	Level         int    `json:"level,omitempty"`
	Associativity string `json:"associativity,omitempty"`
}

func (s *telemetryServer) handlePrecedence(w http.ResponseWriter, req *http.Request) {
	active := s.sp.ActiveGrammar()
	if active == "" {
		writeJSON(w, req, http.StatusOK, []precedenceStat{})
		return
	}

	ops := req.URL.Query()["op"]
	out := make([]precedenceStat, 0, len(ops))
	for _, op := range ops {
		rule, ok := s.sp.PrecedenceManager().Precedence(active, op)
		stat := precedenceStat{Grammar: active, Operator: op, Resolved: ok}
		if ok {
			stat.Level = rule.Level
			stat.Associativity = rule.Associativity.String()
		}
		out = append(out, stat)
	}
	writeJSON(w, req, http.StatusOK, out)
}

func (s *telemetryServer) handleArena(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, req, http.StatusOK, s.sp.ArenaStats())
}
