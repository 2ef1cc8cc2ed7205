package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/siteworks/drawalign/pkg/buildinfo"
	"github.com/siteworks/drawalign/pkg/cache"
	"github.com/siteworks/drawalign/pkg/config"
	"github.com/siteworks/drawalign/pkg/probe"
	"github.com/siteworks/drawalign/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the binary name used in help text.
const appName = "drawalign"

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
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and default config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "drawalign overlays two drawings by matching two points on each",
		Long: `drawalign computes the similarity transform (scale, rotation, translation)
that overlays a candidate drawing on a base drawing, from two picked point
pairs or from page sizes alone, and keeps saved alignments per drawing pair.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/drawalign/config.toml)")

	root.AddCommand(c.computeCommand())
	root.AddCommand(c.inverseCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.autoCommand())
	root.AddCommand(c.probeCommand())
	root.AddCommand(c.alignCommand())
	root.AddCommand(c.alignmentCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.statesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "store", cfg.Store.Backend)
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// openStore opens the configured alignment store. Remote backends show a
// spinner while connecting.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.cfg.Store
	remote := cfg.Backend == config.BackendRedis || cfg.Backend == config.BackendMongo
	if !remote {
		return store.Open(ctx, cfg)
	}

	spinner := newSpinnerWithContext(ctx, "Connecting to "+cfg.Backend+"...")
	spinner.Start()
	s, err := store.Open(ctx, cfg)
	if err != nil {
		spinner.StopWithError("Could not connect to " + cfg.Backend)
		return nil, err
	}
	spinner.Stop()
	c.Logger.Debug("store connected", "backend", cfg.Backend)
	return s, nil
}

// newCache returns the probe cache, or a NullCache when caching is off or
// the directory is unusable.
func (c *CLI) newCache() cache.Cache {
	if !c.cfg.Cache.Enabled || c.cfg.Cache.Dir == "" {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(c.cfg.Cache.Dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", c.cfg.Cache.Dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

func (c *CLI) newProber() *probe.Prober {
	return probe.New(c.newCache())
}
