package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/domain/permissions"
)

func newChmodCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chmod <path> <capability>",
		Short: "Toggle one permission bit",
		Long: `chmod flips a single user, group or others bit. Capabilities are
userRead, userWrite, userExecute, groupRead, groupWrite, groupExecute,
othersRead, othersWrite and othersExecute (case-insensitive).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Clean(args[0])
			capability, err := permissions.ParseCapability(args[1])
			if err != nil {
				return err
			}

			e := browser.Open(a.fs, filepath.Dir(path), a.browserOptions()...)
			defer e.Close()

			before, err := e.Permissions(cmd.Context(), path)
			if err != nil {
				return err
			}
			after, err := e.TogglePermission(cmd.Context(), path, capability)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s (%s)\n", path, before, after, capability.Label())
			return err
		},
	}
}
