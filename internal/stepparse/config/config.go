// Package config loads the StepParser engine's tunable bounds from TOML,
// grounded on the teacher's internal/tqw/marshaling.go use of
// github.com/BurntSushi/toml's Unmarshal for its own world-data files.
package config

import "github.com/BurntSushi/toml"

// EngineConfig holds the engine's configurable bounds. Every Open Question
// in spec.md §9 that left a constant implementer-chosen is exposed here
// rather than hardcoded, with the documented default preserved.
type EngineConfig struct {
	// ForkBound is the maximum number of ParserPaths (chosen + forks) that
	// may share a single pre-step (lexer-path-id, position) after one
	// ambiguity step. spec.md §9 leaves this "configurable with default 3".
	ForkBound int `toml:"fork_bound"`

	// PathPoolInitialCapacity is the number of ParserPath slots pre-warmed
	// in the free list at engine construction.
	PathPoolInitialCapacity int `toml:"path_pool_initial_capacity"`

	// PathPoolMaxCapacity bounds the ParserPath pool; 0 means unbounded.
	PathPoolMaxCapacity int `toml:"path_pool_max_capacity"`

	// DefaultRecoveryStrategy names the recovery strategy
	// Adapter.ErrorRecoveryStrategy falls back to for a grammar that
	// declares none of its own via Grammar.SetErrorRecoveryStrategy.
	DefaultRecoveryStrategy string `toml:"default_recovery_strategy"`
}

// Default returns the engine's documented default configuration.
func Default() EngineConfig {
	return EngineConfig{
		ForkBound:               3,
		PathPoolInitialCapacity: 8,
		PathPoolMaxCapacity:     0,
		DefaultRecoveryStrategy: "skip",
	}
}

// Load reads a TOML-encoded EngineConfig from data, starting from Default()
// so an input that only overrides a subset of fields still yields sane
// values for the rest.
func Load(data []byte) (EngineConfig, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}
