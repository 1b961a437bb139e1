package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "kintree"
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
	Logger   *log.Logger
	Settings Settings

	settingsPath string
	out          io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Settings: defaultSettings(),
		out:      os.Stdout,
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
		Short:        "kintree lays out and renders family trees",
		Long:         `kintree stores family members, lays them out as a generational tree and renders the result as SVG, JSON or Graphviz, in the terminal or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(c.settingsPath)
			if err != nil {
				return err
			}
			c.Settings = s
			path := strings.TrimSpace(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()))
			cmd.SetContext(withLogger(cmd.Context(), commandLogger(c.Logger, path)))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.settingsPath, "config", "", "settings file (default: $XDG_CONFIG_HOME/kintree/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.memberCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// openStore opens the store named by the settings.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	loggerFromContext(ctx).Debug("opening store", "driver", c.Settings.Store.Driver)
	return openStore(ctx, c.Settings.Store)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, keyer, err := openCache(ctx, c.Settings.Cache, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, keyer, loggerFromContext(ctx)), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/kintree/).
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

// layoutFlags holds layout overrides shared by commands that lay out the tree.
// Zero values defer to the settings file, then to the layout defaults.
type layoutFlags struct {
	strategy   string
	nodeWidth  float64
	nodeHeight float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "layout strategy: subtree (default), rows")
	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", 0, "member box width")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", 0, "member box height")
}

// pipelineOptions applies the settings file and flag overrides on top of
// pipeline defaults.
func (c *CLI) pipelineOptions(ctx context.Context, f layoutFlags) pipeline.Options {
	opts := pipeline.Options{Layout: c.Settings.Layout, Logger: loggerFromContext(ctx)}
	if f.strategy != "" {
		opts.Layout.Strategy = f.strategy
	}
	if f.nodeWidth > 0 {
		opts.Layout.NodeWidth = f.nodeWidth
	}
	if f.nodeHeight > 0 {
		opts.Layout.NodeHeight = f.nodeHeight
	}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
