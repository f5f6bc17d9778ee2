package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"acdex/internal/store"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		historyPath string
		limit       int
	)
	cmd := &cobra.Command{
		Use:           "history <db>",
		Short:         "Show recorded batch conversion outcomes",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			historyPath = args[0]
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			hist, err := store.Open(historyPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "open history database", err)
			}
			defer hist.Close()

			entries, err := hist.History(cmd.Context(), limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "read history", err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(formatter.Writer, "no conversions recorded")
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %s -> %s  %.1f%% (%s)", e.CreatedAt, e.Source, e.Target, e.OverallScore, e.Level)
				if e.Degraded {
					line += "  degraded"
				}
				fmt.Fprintln(formatter.Writer, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show")
	return cmd
}
