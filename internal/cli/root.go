package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Options holds the root command's flags.
type Options struct {
	Orig          string
	Target        string
	Out           string
	IncludeSystem bool
	Debug         int
	Spill         bool
	AttrsFile     string
	Reverse       bool
}

// NewRootCommand creates the ldifdiff root command.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "ldifdiff --orig PATH --target PATH",
		Short: "Compute LDIF change records between two directory snapshots",
		Long: `ldifdiff compares two LDIF exports of a directory and emits the change
records (changetype add/delete/modify) that transform the original
snapshot into the target one, replayable with ldapmodify.

Entries are matched by their entryUUID, so a renamed entry produces a
single modify record rather than a delete/add pair. Server-maintained
attributes (entryCSN, timestamps, and the like) are excluded unless
--system is given.

Swapping --orig and --target, or passing --reverse, produces the change
set that rolls the target back to the original.

Example:
  ldifdiff --orig before.ldif --target after.ldif > changes.ldif
  ldifdiff --orig before.ldif.gz --target after.ldif.gz --spill -o changes.ldif`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Orig == "" || opts.Target == "" {
				return NewExitError(ExitUsage, "both --orig and --target are required")
			}
			return runDiff(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Orig, "orig", "", "path to the original snapshot (required)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "path to the target snapshot (required)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write change records to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.IncludeSystem, "system", false, "include server-maintained attributes in the diff")
	cmd.Flags().CountVarP(&opts.Debug, "debug", "d", "increase diagnostic verbosity (repeatable)")
	cmd.Flags().BoolVar(&opts.Spill, "spill", false, "hold the original snapshot in a temporary on-disk store")
	cmd.Flags().StringVar(&opts.AttrsFile, "attrs-file", "", "YAML file overriding the system attribute list")
	cmd.Flags().BoolVar(&opts.Reverse, "reverse", false, "swap snapshots to produce a rollback change set")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitUsage, "usage error", err)
	})

	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the CLI with the given arguments (without the program
// name) and returns the process exit code.
//
// Help is handled here rather than by cobra: the historical contract is
// that asking for usage exits non-zero, so that scripts never mistake a
// usage dump for an empty change set.
func Execute(args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)

	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "-h" || arg == "--help" || arg == "help" {
			fmt.Fprint(os.Stdout, cmd.Long+"\n\n"+cmd.UsageString())
			return ExitUsage
		}
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ldifdiff: %v\n", err)
		if GetExitCode(err) == ExitUsage {
			fmt.Fprintln(os.Stderr, "Run 'ldifdiff --help' for usage.")
		}
		return GetExitCode(err)
	}
	return ExitSuccess
}
