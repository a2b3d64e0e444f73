package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/benefits-incoming/internal/enrollgen"
	"github.com/benefits-incoming/internal/errors"
	"github.com/benefits-incoming/internal/logging"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Users          int
	Start          int
	Carriers       []string
	DuplicateRatio float64
	MalformedRatio float64
	Seed           int64
	Output         string
}

// NewGenerateCommand creates the generate command, which writes a synthetic input file.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic enrollment rows with resubmissions and malformed rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Users, "users", 1000, "number of distinct users")
	cmd.Flags().IntVar(&opts.Start, "start", 0, "first user ordinal")
	cmd.Flags().StringSliceVar(&opts.Carriers, "carriers", enrollgen.DefaultCarriers, "carrier names")
	cmd.Flags().Float64Var(&opts.DuplicateRatio, "duplicate-ratio", 0.25, "resubmissions as a share of users")
	cmd.Flags().Float64Var(&opts.MalformedRatio, "malformed-ratio", 0, "malformed rows as a share of all rows, in [0,1)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&opts.Output, "output", "", "output file (default stdout)")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) (err error) {
	if opts.Users < 1 {
		return WrapExitError(ExitCommandError, "invalid flags", errors.New("--users must be >= 1"))
	}
	if opts.DuplicateRatio < 0 {
		return WrapExitError(ExitCommandError, "invalid flags", errors.New("--duplicate-ratio must be >= 0"))
	}
	if opts.MalformedRatio < 0 || opts.MalformedRatio >= 1 {
		return WrapExitError(ExitCommandError, "invalid flags", errors.New("--malformed-ratio must be in [0,1)"))
	}

	lines := enrollgen.Generate(enrollgen.Options{
		Users:          opts.Users,
		Start:          opts.Start,
		Carriers:       opts.Carriers,
		DuplicateRatio: opts.DuplicateRatio,
		MalformedRatio: opts.MalformedRatio,
		Seed:           opts.Seed,
	})

	var w io.Writer = cmd.OutOrStdout()
	if opts.Output != "" {
		f, ferr := os.Create(opts.Output)
		if ferr != nil {
			return WrapExitError(ExitFailure, "creating output", ferr)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = WrapExitError(ExitFailure, "closing output", cerr)
			}
		}()
		w = f
	}
	if err := enrollgen.WriteLines(w, lines); err != nil {
		return WrapExitError(ExitFailure, "writing rows", err)
	}
	logging.Default().Debug().Int("rows", len(lines)).Int64("seed", opts.Seed).Msg("Generated enrollment rows")
	if opts.Output == "" {
		return nil
	}
	return opts.formatter(cmd).Success(GenerateSummary{Rows: len(lines), Output: opts.Output, Seed: opts.Seed})
}

// GenerateSummary is the generate result when rows go to a file.
type GenerateSummary struct {
	Rows   int    `json:"rows"`
	Output string `json:"output"`
	Seed   int64  `json:"seed"`
}

func (s GenerateSummary) String() string {
	return fmt.Sprintf("Wrote %d rows to %s", s.Rows, s.Output)
}
