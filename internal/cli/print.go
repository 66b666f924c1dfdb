package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/shared/utils"
)

// printEntries writes one aligned row per entry: type, size, modification
// time and name (or full path for search results).
func printEntries(w io.Writer, entries []browser.Entry, fullPath bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		name := e.Name
		if fullPath {
			name = e.Path
		}
		size := utils.FormatBytes(e.Size)
		if e.IsDirectory {
			size = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", kind(e), size, e.ModifiedAt.Local().Format(time.DateTime), name)
	}
	return tw.Flush()
}

func kind(e browser.Entry) string {
	switch {
	case e.IsDirectory:
		return "d"
	case e.IsSymlink:
		return "l"
	}
	return "-"
}
