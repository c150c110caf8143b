// Package config loads hornqual's run configuration from an optional YAML
// file, the way funvibe-funxy decodes YAML documents via gopkg.in/yaml.v3,
// with override precedence (flag > config file > built-in default)
// generalized from turducken's reqsrv/main.go env(k, def string) helper.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Backend names a supported SMT backend.
type Backend string

const (
	BackendZ3      Backend = "z3"
	BackendMathSAT Backend = "mathsat"
	BackendCVC4    Backend = "cvc4"
)

// Config is hornqual's resolved run configuration.
type Config struct {
	Backend      Backend `yaml:"backend"`
	SolverPath   string  `yaml:"solver_path"`
	Depth        int     `yaml:"depth"`
	TranscriptLog string `yaml:"transcript_log"`
	LogLevel     string  `yaml:"log_level"`
	OrExpandWorkStackThreshold int `yaml:"or_expand_work_stack_threshold"`
}

// Default returns hornqual's built-in default configuration.
func Default() Config {
	return Config{
		Backend:                    BackendZ3,
		SolverPath:                 "z3",
		Depth:                      2,
		TranscriptLog:              "",
		LogLevel:                   "info",
		OrExpandWorkStackThreshold: 256,
	}
}

// Load reads a YAML config file at path and overlays it onto Default().
// A missing path is not an error: Default() is returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "reading config file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config file %s", path)
	}
	return cfg, nil
}

// Overlay applies the overrides that are set (as CLI flags would) onto cfg,
// following the precedence flag > config file > built-in default. A string
// override is set when non-empty; depth is set when non-negative, so an
// explicit depth of 0 does override.
func (cfg Config) Overlay(backend Backend, solverPath string, depth int, transcriptLog, logLevel string) Config {
	out := cfg
	if backend != "" {
		out.Backend = backend
	}
	if solverPath != "" {
		out.SolverPath = solverPath
	}
	if depth >= 0 {
		out.Depth = depth
	}
	if transcriptLog != "" {
		out.TranscriptLog = transcriptLog
	}
	if logLevel != "" {
		out.LogLevel = logLevel
	}
	return out
}
