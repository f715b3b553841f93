package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ziplock/pkg/backends/github"
	"github.com/matzehuels/ziplock/pkg/backends/local"
	"github.com/matzehuels/ziplock/pkg/backends/npm"
	"github.com/matzehuels/ziplock/pkg/buildinfo"
	"github.com/matzehuels/ziplock/pkg/cache"
	"github.com/matzehuels/ziplock/pkg/config"
	githubapi "github.com/matzehuels/ziplock/pkg/integrations/github"
	npmapi "github.com/matzehuels/ziplock/pkg/integrations/npm"
	"github.com/matzehuels/ziplock/pkg/manifest"
	"github.com/matzehuels/ziplock/pkg/resolve"
	"github.com/matzehuels/ziplock/pkg/semver"
	"github.com/matzehuels/ziplock/pkg/tree"
)

// =============================================================================
// Constants
// =============================================================================

const (
	appName = config.AppName

	// defaultManifest is read when no manifest path is given.
	defaultManifest = "package.json"
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

	// configPath is set by the --config flag. Empty means the default path.
	configPath string
}

// New creates a CLI that logs to w at the given level.
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
		Use:          appName,
		Short:        "ziplock resolves package.json files into nested lock trees",
		Long:         `ziplock reads a package.json, resolves every dependency against the npm registry, GitHub or the local filesystem, and writes the fully nested result as a lock tree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ziplock/config.toml)")

	root.AddCommand(c.treeCommand())
	root.AddCommand(c.lockCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "registry", cfg.Registry.URL, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// resolveFlags are the resolution overrides shared by tree and lock.
type resolveFlags struct {
	dev      bool
	refresh  bool
	maxDepth int
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dev, "dev", true, "include the root manifest's devDependencies")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached registry and GitHub responses")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", resolve.DefaultMaxDepth, "maximum nesting depth before failing")
}

// apply copies explicitly set flags over the loaded configuration.
func (f *resolveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("dev") {
		cfg.Resolve.OmitDev = !f.dev
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Resolve.MaxDepth = f.maxDepth
	}
}

// =============================================================================
// Builder Factory
// =============================================================================

// newBuilder wires the resolver backends from cfg. baseDir anchors file:
// specifiers; an empty baseDir disables them. The returned cache must be
// closed by the caller.
func (c *CLI) newBuilder(cfg *config.Config, baseDir string, refresh bool) (*resolve.Builder, cache.Cache, error) {
	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, nil, fmt.Errorf("cache dir: %w", err)
	}
	store, err := cache.Open(cfg.Cache.Backend, dir, cfg.Cache.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	ttl := cfg.Cache.TTL.Duration

	backends := resolve.Backends{
		Registry: npm.New(npmapi.NewClient(store, cfg.Registry.URL, ttl), refresh),
		Source:   github.New(githubapi.NewClient(store, cfg.GitHub.APIURL, cfg.GitHub.Token, ttl), refresh),
		Matcher:  semver.Matcher{},
	}
	if baseDir != "" {
		backends.Local = local.New(baseDir)
	}

	b := resolve.New(backends, resolve.Options{
		MaxDepth: cfg.Resolve.MaxDepth,
		OmitDev:  cfg.Resolve.OmitDev,
		Logger:   c.Logger,
	})
	return b, store, nil
}

// build reads the manifest at path and resolves it. file: specifiers are
// resolved relative to the manifest's directory.
func (c *CLI) build(ctx context.Context, cfg *config.Config, path string, refresh bool) (*manifest.Manifest, tree.Tree, error) {
	m, err := manifest.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, nil, err
	}

	b, store, err := c.newBuilder(cfg, baseDir, refresh)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	label := m.Name
	if label == "" {
		label = path
	}

	// The spinner would garble debug output, so verbose runs log instead.
	if c.Logger.GetLevel() <= log.DebugLevel {
		prog := newProgress(c.Logger)
		t, err := b.Build(ctx, m)
		if err != nil {
			return nil, nil, err
		}
		prog.done(fmt.Sprintf("Resolved %d packages for %s", t.Count(), label))
		return m, t, nil
	}

	spin := newSpinner(ctx, "Resolving "+label)
	spin.Start()
	t, err := b.Build(ctx, m)
	if err != nil {
		if spin.Cancelled() {
			spin.Stop()
		} else {
			spin.StopWithError("Resolution of %s failed", label)
		}
		return nil, nil, err
	}
	spin.StopWithSuccess("Resolved %s", label)
	printStats(t.Count(), directCount(t))
	return m, t, nil
}

func directCount(t tree.Tree) int {
	n := 0
	for _, deps := range t {
		n += len(deps)
	}
	return n
}

func manifestPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultManifest
}
