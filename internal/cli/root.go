// Package cli wires the benefits commands.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benefits-incoming/internal/config"
	"github.com/benefits-incoming/internal/logging"
)

// Output formats for command results.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
	Format     string

	v *viper.Viper
}

// NewRootCommand creates the root command. `benefits <input>` is shorthand
// for `benefits reconcile <input>`.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: config.New()}

	cmd := &cobra.Command{
		Use:   "benefits [input]",
		Short: "Reconcile benefit enrollment submissions per insurance carrier",
		Long: `Reads comma-delimited enrollment rows (userId,firstName,lastName,version,insuranceCompany),
keeps the highest-versioned submission of every user within each carrier and
writes one <carrier>.out file per carrier, sorted by last name then first name.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flags",
					fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runReconcile(cmd, opts, args[0])
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default is ./.benefits.yaml or $HOME/.benefits.yaml)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	flags.StringVar(&opts.Format, "format", FormatText, "result format (text|json)")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("log-format", logging.FormatConsole, "log format (console|json)")
	flags.StringP("out-dir", "o", ".", "directory receiving <carrier>.out files")
	flags.StringSlice("sink", []string{config.SinkFile}, "output sinks (file|postgres|clickhouse), repeatable")

	bind(opts.v, flags.Lookup("log-level"), "log_level")
	bind(opts.v, flags.Lookup("log-format"), "log_format")
	bind(opts.v, flags.Lookup("out-dir"), "out_dir")
	bind(opts.v, flags.Lookup("sink"), "sinks")

	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))

	return cmd
}

// setup reads the config file and installs the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if err := config.ReadFile(o.v, o.ConfigFile); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	level := o.v.GetString("log_level")
	if o.Verbose {
		level = "debug"
	}
	if err := logging.Configure(cmd.ErrOrStderr(), level, o.v.GetString("log_format")); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
