package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/todoui/internal/config"
	"github.com/vango-dev/todoui/internal/errors"
	"github.com/vango-dev/todoui/internal/scenario"
	"go.uber.org/zap"
)

func simulateCmd(flags *globalFlags) *cobra.Command {
	var (
		parallel int
		asJSON   bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml|glob>...",
		Short: "Replay scripted interactions against page fixtures",
		Long: `Run scenario files against their page fixtures on a virtual clock.

Each scenario loads its page, performs its steps (fill, click, submit,
hover, leave, advance) and checks its expect blocks. The command fails if
any scenario fails.

Examples:
  todoui simulate scenarios/add_todo.yaml
  todoui simulate 'scenarios/*.yaml' --parallel 8
  todoui simulate scenarios/toggle.yaml --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), cfg, args, simulateOptions{
				parallel: parallel,
				json:     asJSON,
				verbose:  verbose,
			})
		},
	}

	cmd.Flags().IntVarP(&parallel, "parallel", "j", 4, "Scenarios to run at once")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON report per scenario")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every step")

	return cmd
}

type simulateOptions struct {
	parallel int
	json     bool
	verbose  bool
}

// jsonReport is the --json form of a scenario report.
type jsonReport struct {
	Name        string `json:"name"`
	File        string `json:"file,omitempty"`
	Passed      bool   `json:"passed"`
	Steps       int    `json:"steps"`
	Submissions int    `json:"submissions"`
	ElapsedMS   int64  `json:"elapsed_ms"`
	Error       string `json:"error,omitempty"`
}

func runSimulate(ctx context.Context, out io.Writer, cfg *config.Config, patterns []string, opts simulateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var all []*scenario.Scenario
	for _, p := range patterns {
		if !strings.ContainsAny(p, "*?[") {
			s, err := scenario.Load(p)
			if err != nil {
				return err
			}
			all = append(all, s)
			continue
		}
		found, err := scenario.Glob(p)
		if err != nil {
			return err
		}
		all = append(all, found...)
	}
	if len(all) == 0 {
		return errors.New("T001").WithDetail("No scenario files matched " + strings.Join(patterns, ", ") + ".")
	}

	logger := zap.NewNop()
	if opts.verbose {
		l, err := config.NewLogger(cfg.Logger)
		if err != nil {
			return errors.New("T020").Wrap(err)
		}
		logger = l
	}
	engine := cfg.Engine.Todoui(logger)
	runner := scenario.NewRunner(
		scenario.WithConfig(engine),
		scenario.WithLogger(logger),
		scenario.WithParallelism(opts.parallel),
	)

	reports, _ := runner.RunAll(ctx, all)
	failed := 0
	for _, rep := range reports {
		if !rep.Passed() {
			failed++
		}
		if opts.json {
			if e := writeJSONReport(out, rep); e != nil {
				return e
			}
			continue
		}
		printReport(out, rep, opts.verbose)
	}
	if opts.json {
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(reports))
		}
		return nil
	}

	fmt.Fprintln(out)
	if failed == 0 {
		success(out, "%d scenarios passed", len(reports))
		return nil
	}
	failure(out, "%d of %d scenarios failed", failed, len(reports))
	return fmt.Errorf("%d of %d scenarios failed", failed, len(reports))
}

func printReport(out io.Writer, rep *scenario.Report, verbose bool) {
	label := rep.Name
	if rep.File != "" {
		label += " (" + filepath.Base(rep.File) + ")"
	}
	if rep.Passed() {
		success(out, "%s", label)
	} else {
		failure(out, "%s", label)
	}
	if verbose {
		for _, st := range rep.Steps {
			line := fmt.Sprintf("%3d  %-8s at %-8v line %d", st.Index+1, st.Action, st.At, st.Line)
			if st.NavigationErr != nil {
				line += "  navigation failed: " + st.NavigationErr.Error()
			}
			info(out, "%s", line)
		}
		info(out, "%d submissions, %v elapsed", len(rep.Submissions), rep.Elapsed)
	}
	var e *errors.Error
	if !rep.Passed() && errors.As(rep.Err, &e) {
		fmt.Fprint(out, e.Format())
	}
}

func writeJSONReport(out io.Writer, rep *scenario.Report) error {
	jr := jsonReport{
		Name:        rep.Name,
		File:        rep.File,
		Passed:      rep.Passed(),
		Steps:       len(rep.Steps),
		Submissions: len(rep.Submissions),
		ElapsedMS:   rep.Elapsed.Milliseconds(),
	}
	if rep.Err != nil {
		var e *errors.Error
		if errors.As(rep.Err, &e) {
			jr.Error = e.FormatCompact()
		} else {
			jr.Error = rep.Err.Error()
		}
	}
	return json.NewEncoder(out).Encode(jr)
}
