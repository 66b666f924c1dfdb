package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
)

type viewFlags struct {
	sort    string
	query   string
	timeout time.Duration
}

func (f *viewFlags) register(cmd *cobra.Command, timeout time.Duration) {
	cmd.Flags().StringVarP(&f.sort, "sort", "s", string(browser.SortByName), "sort by name, created or modified")
	cmd.Flags().DurationVarP(&f.timeout, "timeout", "t", timeout, "give up after this long")
}

func newListCommand(a *app) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Browser.StartDir
			if len(args) == 1 {
				dir = args[0]
			}
			opt, err := browser.ParseSortOption(flags.sort)
			if err != nil {
				return err
			}

			e := browser.Open(a.fs, dir, a.browserOptions()...)
			defer e.Close()
			e.SetSortOption(opt)
			e.SetSearchQuery(flags.query)

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			if err := e.WaitIdle(ctx); err != nil {
				return err
			}

			snap := e.Snapshot()
			if snap.Err != nil {
				return fmt.Errorf("%s: %s", snap.Err.Path, snap.Err.Message)
			}
			return printEntries(cmd.OutOrStdout(), snap.Projection(), false)
		},
	}
	flags.register(cmd, 30*time.Second)
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "only show names containing this text")
	return cmd
}
