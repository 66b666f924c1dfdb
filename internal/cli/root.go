package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/config"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
)

// app carries what every command needs once the root pre-run has loaded the
// configuration.
type app struct {
	fs       filesystem.FileSystem
	cfg      *config.Config
	log      *logging.Logger
	envFiles []string
	verbose  bool
}

// Option customizes the command tree.
type Option func(*app)

// WithFileSystem runs the commands against fsys instead of the host.
func WithFileSystem(fsys filesystem.FileSystem) Option {
	return func(a *app) { a.fs = fsys }
}

// NewRootCommand builds the filebrowser command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{fs: filesystem.NewLocal()}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "filebrowser",
		Short: "Browse, search and manage a local filesystem",
		Long: `filebrowser lists directories, searches recursively below a root and edits
permission bits from the command line, or serves the same operations over
HTTP and WebSocket with "filebrowser serve".`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				a.log.Close()
			}
		},
	}
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "dotenv files to load before reading the environment (default .env)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newServeCommand(a),
		newListCommand(a),
		newSearchCommand(a),
		newChmodCommand(a),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFiles(a.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logging.FromConfig(cfg.Logging)
	switch {
	case cmd.Name() != "serve":
		logCfg = logging.ForCommand(cfg.Logging, a.verbose)
	case a.verbose:
		logCfg.Level = "debug"
	}
	if a.log, err = logging.New(logCfg); err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}

// browserOptions returns the engine options derived from the configuration.
func (a *app) browserOptions() []browser.Option {
	return []browser.Option{
		browser.WithLogger(a.log.Logger),
		browser.WithSearchRoot(a.cfg.Browser.SearchRoot),
		browser.WithSearchBatch(a.cfg.Browser.SearchBatch, a.cfg.Browser.SearchFlush),
		browser.WithExcludes(a.cfg.Browser.SearchExclude...),
		browser.WithNewFileContent([]byte(a.cfg.Browser.NewFileTemplate)),
	}
}
