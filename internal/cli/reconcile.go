package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/benefits-incoming/internal/config"
	"github.com/benefits-incoming/internal/logging"
	"github.com/benefits-incoming/internal/runner"
)

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <input>",
		Short: "Reconcile an enrollment file into one output per carrier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, opts, args[0])
		},
	}
}

// Summary is the command result.
type Summary struct {
	RunID          string   `json:"run_id"`
	Input          string   `json:"input"`
	InputError     string   `json:"input_error,omitempty"`
	Lines          int      `json:"lines"`
	Rejected       int      `json:"rejected"`
	Survivors      int      `json:"survivors"`
	Carriers       []string `json:"carriers"`
	Failures       []string `json:"failures,omitempty"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %d lines, %d rejected, %d survivors across %d carriers",
		s.RunID, s.Lines, s.Rejected, s.Survivors, len(s.Carriers))
	if s.InputError != "" {
		fmt.Fprintf(&b, "\nInput error: %s", s.InputError)
	}
	for _, f := range s.Failures {
		fmt.Fprintf(&b, "\nFailed: %s", f)
	}
	return b.String()
}

func runReconcile(cmd *cobra.Command, opts *RootOptions, input string) error {
	cfg, err := config.Load(opts.v)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	ctx := logging.WithLogger(cmd.Context(), logging.Default())
	runID := uuid.New()

	sinks, failures := runner.OpenSinks(ctx, cfg, runID)
	defer runner.CloseSinks(ctx, sinks)

	report := (&runner.Runner{RunID: runID, Sinks: sinks, SinkFailures: failures}).Run(ctx, input)

	return opts.formatter(cmd).Success(summarize(report))
}

func summarize(report *runner.Report) Summary {
	s := Summary{
		RunID:          report.RunID.String(),
		Input:          report.Input,
		Lines:          report.Stats.Lines,
		Rejected:       report.Stats.Rejected,
		Survivors:      report.Stats.Survivors,
		Carriers:       make([]string, 0, len(report.Results)),
		ElapsedSeconds: report.Elapsed.Seconds(),
	}
	if report.InputErr != nil {
		s.InputError = report.InputErr.Error()
	}
	for _, res := range report.Results {
		s.Carriers = append(s.Carriers, res.Carrier)
	}
	for _, err := range report.Failures {
		s.Failures = append(s.Failures, err.Error())
	}
	return s
}
