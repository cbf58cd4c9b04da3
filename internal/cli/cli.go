// Package cli implements the galvo command-line interface.
//
// This package provides commands for rendering directories of frame files
// into ILDA streams, inspecting existing streams, printing the effective
// render configuration, serving the pipeline over HTTP and managing the
// rendered-frame cache. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - render: Render a directory of frame files into an ILDA stream
//   - inspect: Summarize the frames of an ILDA stream
//   - config: Print the effective render parameters as TOML
//   - serve: Run the HTTP render API
//   - cache: Manage the rendered-frame cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging and
// --quiet (-q) for warnings only.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/galvo/pkg/buildinfo"
	"github.com/matzehuels/galvo/pkg/cache"
	"github.com/matzehuels/galvo/pkg/config"
	"github.com/matzehuels/galvo/pkg/laser"
	"github.com/matzehuels/galvo/pkg/observability"
	"github.com/matzehuels/galvo/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "galvo"

	// cacheKeyType labels cache events reported to the hooks.
	cacheKeyType = "frame"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	quiet bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "galvo renders vector frames into laser projector streams",
		Long:         `galvo turns directories of vector frames into ILDA streams for laser projectors, timing every beam move, dwell and blanked transit.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.quiet {
				c.SetLogLevel(LogWarn)
			}
			if c.Logger.GetLevel() <= LogDebug {
				installDebugHooks(c.Logger)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "only log warnings and skip the summary")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags are the cache selection flags shared by render and serve.
type cacheFlags struct {
	noCache bool
	url     string
	prefix  string
	refresh bool
}

func addCacheFlags(cmd *cobra.Command, f *cacheFlags) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the rendered-frame cache")
	cmd.Flags().StringVar(&f.url, "cache-url", "", "cache backend (redis://, mongodb://, file:// or a directory)")
	cmd.Flags().StringVar(&f.prefix, "cache-prefix", "", "key prefix for a cache shared with other users")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-render frames even when cached")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	backend, err := newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if f.prefix != "" {
		keyer = cache.NewScopedKeyer(nil, f.prefix)
	}
	return pipeline.NewRunner(backend, keyer, c.Logger), nil
}

func newCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	if f.url != "" {
		c, err := cache.Open(ctx, f.url)
		if err != nil {
			return nil, err
		}
		return cache.Instrumented(c, cacheKeyType), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Instrumented(fc, cacheKeyType), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/galvo/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadParams returns the default parameters overridden by the config file
// at path, if any.
func loadParams(path string) (laser.Params, error) {
	if path == "" {
		return laser.DefaultParams(), nil
	}
	return config.LoadFile(path)
}

// installDebugHooks routes pipeline, cache and HTTP events to the logger.
func installDebugHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}
