// Command hornqual infers qualifier predicates for a set of k-variables from
// a constraint file, via finite-depth unrolling and SMT Craig interpolation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/horn-infer/hornqual/internal/clause"
	"github.com/horn-infer/hornqual/internal/config"
	"github.com/horn-infer/hornqual/internal/finfo"
	"github.com/horn-infer/hornqual/internal/logging"
	"github.com/horn-infer/hornqual/internal/qualifier"
	"github.com/horn-infer/hornqual/internal/query"
	"github.com/horn-infer/hornqual/internal/smt"
	"github.com/horn-infer/hornqual/internal/solution"
	"github.com/horn-infer/hornqual/internal/unroll"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "hornqual"}
	root.AddCommand(newInferCmd())
	return root
}

func newInferCmd() *cobra.Command {
	var (
		finfoPath     string
		depth         int
		backend       string
		configPath    string
		logLevel      string
		transcriptLog string
	)

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer qualifier predicates for a set of k-variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return reportAndExit(cmd, err)
			}
			cfg = cfg.Overlay(config.Backend(backend), "", depth, transcriptLog, logLevel)

			log := logging.New(cfg.LogLevel, cmd.ErrOrStderr())

			qs, err := runInfer(cmd.Context(), cfg, log, finfoPath)
			if err != nil {
				return reportAndExit(cmd, err)
			}
			printQualifiers(cmd.OutOrStdout(), qs)
			return nil
		},
	}

	cmd.Flags().StringVar(&finfoPath, "finfo", "", "path to the FInfo constraint file (required)")
	cmd.Flags().IntVar(&depth, "depth", -1, "unrolling depth budget (default from config, normally 2)")
	cmd.Flags().StringVar(&backend, "backend", "", "SMT backend: z3, mathsat, or cvc4")
	cmd.Flags().StringVar(&configPath, "config", "", "path to an optional YAML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&transcriptLog, "transcript-log", "", "path to write the SMT dialogue transcript")
	_ = cmd.MarkFlagRequired("finfo")

	return cmd
}

// runInfer wires the full pipeline: load FInfo, normalize into rules and
// queries, classify k-variables, unroll each query under the depth budget,
// expand and serialize the resulting And/Or trees, interpolate each against
// the configured SMT backend, extract candidates, and extract qualifiers.
func runInfer(ctx context.Context, cfg config.Config, log hclog.Logger, finfoPath string) ([]qualifier.Qualifier, error) {
	fi, err := finfo.Load(finfoPath)
	if err != nil {
		return nil, err
	}

	rules, queries, err := clause.Normalize(fi)
	if err != nil {
		return nil, err
	}

	kc, err := clause.BuildKClauses(rules)
	if err != nil {
		return nil, err
	}

	driver, err := smt.NewDriver(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := driver.Close(); cerr != nil {
			log.Warn("error closing SMT driver", "error", cerr)
		}
	}()

	candidates := make(solution.Candidates)
	for _, q := range queries {
		root, state, err := unroll.Unroll(q, kc, fi.LiteralSorts, cfg.Depth, log)
		if err != nil {
			return nil, err
		}

		declared := fi.LiteralSorts.Merge(state.CreatedSymbols)
		if err := driver.Declare(declared); err != nil {
			return nil, err
		}

		for _, expanded := range query.Expand(root, cfg.OrExpandWorkStackThreshold, log) {
			formula, cuts := query.Serialize(expanded)
			interpolants, err := driver.Interpolate(formula, cuts)
			if err != nil {
				return nil, err
			}
			tree := query.BuildTreeInterp(expanded, interpolants)
			qc := solution.Extract(tree, state.UnrollSubs)
			for k, preds := range qc {
				candidates[k] = append(candidates[k], preds...)
			}
		}
	}

	return qualifier.Extract(candidates, fi.LiteralSorts, fi.WF, log), nil
}

func printQualifiers(w io.Writer, qs []qualifier.Qualifier) {
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Name < qs[j].Name })
	for _, q := range qs {
		fmt.Fprintf(w, "%s(%s): %s  @%s\n", q.Name, formatParams(q.Params), q.Body.String(), q.Location)
	}
}

func formatParams(params []qualifier.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s:%s", p.Sym, p.Sort.SMTName())
	}
	return strings.Join(parts, ", ")
}

func reportAndExit(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "hornqual: fatal error: %v\n", err)
	return err
}
