package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/pkg/buildinfo"
	"github.com/matzehuels/heatmap/pkg/cache"
	"github.com/matzehuels/heatmap/pkg/config"
	"github.com/matzehuels/heatmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "heatmap"

// Log levels accepted by [New].
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
	verbose    bool
	noCache    bool
	redisURL   string
	file       *config.File

	// out receives command output; stdout unless a test replaces it.
	out io.Writer
}

// New creates a CLI that logs to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: os.Stdout}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Heatmap renders point densities as color-graded images",
		Long: `Heatmap accumulates 2D sample points (for example ward placements) into a
smoothed density grid and renders it as an alpha-blended color gradient over
an optional background image.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.configPath, "config", "", "TOML config file")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the grid and artifact cache")
	pf.StringVar(&c.redisURL, "redis", os.Getenv("HEATMAP_REDIS_URL"), "redis URL for a shared cache (redis://host:6379/0)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.gridCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache picks the cache backend from the global flags, falling back to the
// [cache] table of the config file. An unusable file cache directory disables
// caching instead of failing the command.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	file, err := c.configFile()
	if err != nil {
		return nil, err
	}
	var settings config.CacheFile
	if file != nil {
		settings = file.Cache
	}

	switch {
	case c.noCache || settings.Disabled:
		return cache.NewNullCache(), nil
	case c.redisURL != "":
		return cache.NewRedisCache(ctx, c.redisURL)
	case settings.Redis != "":
		return cache.NewRedisCache(ctx, settings.Redis)
	}
	dir := settings.Dir
	if dir == "" {
		dir, err = cacheDir()
	}
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns $HEATMAP_CACHE_DIR if set, else the user cache dir.
func cacheDir() (string, error) {
	if dir := os.Getenv("HEATMAP_CACHE_DIR"); dir != "" {
		return dir, nil
	}
	return cache.DefaultDir()
}
