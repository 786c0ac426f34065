// Package cli implements the gangsheet command-line interface.
//
// # Commands
//
//   - build: lay out designs on a roll and write the pages (zip or directory)
//   - preview: render a single low-resolution image of the whole roll
//   - session: accumulate designs over several calls, then build them at once
//   - serve: run the HTTP API
//   - categories: list the design categories and their widths
//   - cache: manage the local design and layout cache
//
// Designs are given as path[:category[:copies]], for example
//
//	gangsheet build shirt.png:back:12 logo.png:front-7:40 -o order-118.zip
//
// All commands support --verbose (-v) for debug logging and --config to load
// run options from a TOML, YAML or JSON file.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gangsheet/pkg/buildinfo"
	"github.com/matzehuels/gangsheet/pkg/cache"
	"github.com/matzehuels/gangsheet/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "gangsheet"

	// defaultOutput is where build writes when -o is not given.
	defaultOutput = "montage.zip"
)

// Environment variables read by the CLI (a .env file is loaded first).
const (
	envConfig      = "GANGSHEET_CONFIG"
	envRedisURL    = "GANGSHEET_REDIS_URL"
	envCachePrefix = "GANGSHEET_CACHE_PREFIX"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "gangsheet lays out DTF transfer designs on a roll",
		Long: `gangsheet arranges copies of transfer designs on a fixed-width DTF roll,
keeping the roll as short as possible, and cuts the result into printable
pages.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "run options file (.toml, .yaml, .json; env "+envConfig+")")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.categoriesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, newKeyer(), c.Logger), nil
}

// newKeyer namespaces cache keys with GANGSHEET_CACHE_PREFIX so deployments
// sharing one Redis instance keep separate entries.
func newKeyer() cache.Keyer {
	if prefix := os.Getenv(envCachePrefix); prefix != "" {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), prefix)
	}
	return cache.NewDefaultKeyer()
}

// newCache prefers a shared Redis cache when GANGSHEET_REDIS_URL is set and
// falls back to the local file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url := os.Getenv(envRedisURL); url != "" {
		rc, err := cache.NewRedisCache(ctx, url)
		if err == nil {
			c.Logger.Debug("using redis cache")
			return rc, nil
		}
		c.Logger.Warn("redis cache unavailable, using local cache", "error", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/gangsheet/).
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

// sessionDir returns the session directory (~/.config/gangsheet/sessions/),
// honouring XDG_CONFIG_HOME.
func sessionDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "sessions"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "sessions"), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadOptions reads the --config file (or GANGSHEET_CONFIG) when one is
// given and attaches the CLI logger.
func (c *CLI) loadOptions() (pipeline.Options, error) {
	path := c.configPath
	if path == "" {
		path = os.Getenv(envConfig)
	}

	var opts pipeline.Options
	if path != "" {
		loaded, err := pipeline.LoadOptions(path)
		if err != nil {
			return opts, err
		}
		opts = loaded
		c.Logger.Debug("loaded config", "path", path)
	}
	opts.Logger = c.Logger
	return opts, nil
}

// runFlags are the run options every montage-producing command accepts.
// Only flags the user actually set override the config file.
type runFlags struct {
	rollWidth  float64
	spacing    float64
	pageLength float64
	noPreview  bool
	noCache    bool
	refresh    bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.rollWidth, "roll-width", pipeline.DefaultRollWidth, "printable roll width in cm")
	cmd.Flags().Float64Var(&f.spacing, "spacing", pipeline.DefaultSpacing, "gap between designs in cm")
	cmd.Flags().Float64Var(&f.pageLength, "page-length", pipeline.DefaultPageLength, "maximum page length in cm (negative: one page)")
	cmd.Flags().BoolVar(&f.noPreview, "no-preview", false, "skip the low-resolution preview")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached designs and layouts")
}

// options loads the config file and applies explicitly set flags on top.
func (c *CLI) options(cmd *cobra.Command, f *runFlags) (pipeline.Options, error) {
	opts, err := c.loadOptions()
	if err != nil {
		return opts, err
	}
	flags := cmd.Flags()
	if flags.Changed("roll-width") {
		opts.RollWidth = f.rollWidth
	}
	if flags.Changed("spacing") {
		opts.Spacing = pipeline.Centimetres(f.spacing)
	}
	if flags.Changed("page-length") {
		opts.PageLength = f.pageLength
	}
	if f.noPreview {
		opts.SkipPreview = true
	}
	if f.refresh {
		opts.Refresh = true
	}
	return opts, opts.ValidateAndSetDefaults()
}
