package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
)

func newSearchCommand(a *app) *cobra.Command {
	var (
		flags viewFlags
		root  string
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search recursively below a root",
		Long: `search walks the tree below --root (BROWSER_SEARCH_ROOT by default) and prints
every entry whose name contains the query, ignoring case. When the timeout
expires the entries found so far are printed and the command fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.query = args[0]
			}
			if root == "" {
				root = a.cfg.Browser.SearchRoot
			}
			opt, err := browser.ParseSortOption(flags.sort)
			if err != nil {
				return err
			}

			opts := append(a.browserOptions(), browser.WithSearchRoot(root))
			e := browser.Open(a.fs, root, opts...)
			defer e.Close()
			e.SetSortOption(opt)
			e.SetSearchQuery(flags.query)
			e.SetSearchScope(browser.ScopeRoot)

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			waitErr := e.WaitIdle(ctx)
			if waitErr != nil && !errors.Is(waitErr, browser.ErrCancelled) {
				return waitErr
			}

			// Leaving the root scope stops the walk and keeps what it found.
			e.SetSearchScope(browser.ScopeCurrent)
			snap, err := e.Sync(context.Background())
			if err != nil {
				return err
			}
			found := browser.Project(snap.Root, snap.SearchQuery, snap.SortOption)
			if err := printEntries(cmd.OutOrStdout(), found, true); err != nil {
				return err
			}
			if waitErr != nil {
				return fmt.Errorf("search incomplete after %s: %w", flags.timeout, waitErr)
			}
			return nil
		},
	}
	flags.register(cmd, time.Minute)
	cmd.Flags().StringVarP(&root, "root", "r", "", "directory to search below (overrides BROWSER_SEARCH_ROOT)")
	return cmd
}
