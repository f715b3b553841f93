package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ziplock/pkg/config"
	"github.com/matzehuels/ziplock/pkg/lockfile"
)

type lockOptions struct {
	resolveFlags
	store string
	dir   string
}

// lockCommand creates the lock command and its show subcommand.
func (c *CLI) lockCommand() *cobra.Command {
	var opts lockOptions

	cmd := &cobra.Command{
		Use:   "lock [package.json]",
		Short: "Resolve a manifest and save the tree as a lock",
		Long: `Resolve a manifest and save the result to the configured lock store.

The file store writes ziplock.json to --dir and keeps every previous lock
under .ziplock/<id>.json. The mongo store upserts into lock.mongo_uri.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLock(cmd, manifestPath(args), &opts)
		},
	}

	opts.register(cmd)
	c.registerStoreFlags(cmd, &opts.store, &opts.dir)
	cmd.AddCommand(c.lockShowCommand())

	return cmd
}

// lockShowCommand prints a saved lock as JSON.
func (c *CLI) lockShowCommand() *cobra.Command {
	var store, dir, name string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a saved lock",
		Long: `Print a saved lock as JSON.

Without an id, the file store prints the current ziplock.json and the mongo
store prints the newest lock saved for --name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyStoreFlags(cmd, cfg, store, dir)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			var l *lockfile.Lock
			switch {
			case len(args) == 1:
				l, err = s.Load(ctx, args[0])
			case cfg.Lock.Store == config.StoreMongo:
				if name == "" {
					return fmt.Errorf("--name or a lock id is required for the mongo store")
				}
				l, err = s.(*lockfile.MongoStore).Latest(ctx, name)
			default:
				l, err = s.(*lockfile.FileStore).Current(ctx)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), l)
		},
	}

	c.registerStoreFlags(cmd, &store, &dir)
	cmd.Flags().StringVar(&name, "name", "", "package name whose newest lock to show (mongo store)")

	return cmd
}

func (c *CLI) registerStoreFlags(cmd *cobra.Command, store, dir *string) {
	cmd.Flags().StringVar(store, "store", config.StoreFile, "lock store: file or mongo")
	cmd.Flags().StringVar(dir, "dir", ".", "directory for the file store")
	_ = cmd.RegisterFlagCompletionFunc("store", cobra.FixedCompletions(
		[]string{config.StoreFile, config.StoreMongo}, cobra.ShellCompDirectiveNoFileComp))
}

func applyStoreFlags(cmd *cobra.Command, cfg *config.Config, store, dir string) {
	if cmd.Flags().Changed("store") {
		cfg.Lock.Store = store
	}
	if cmd.Flags().Changed("dir") {
		cfg.Lock.Dir = dir
	}
}

func (c *CLI) runLock(cmd *cobra.Command, path string, opts *lockOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)
	applyStoreFlags(cmd, cfg, opts.store, opts.dir)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	m, t, err := c.build(ctx, cfg, path, opts.refresh)
	if err != nil {
		return err
	}

	l := lockfile.New(m, t)
	if err := store.Save(ctx, l); err != nil {
		return err
	}
	c.Logger.Debug("lock saved", "id", l.ID, "store", cfg.Lock.Store)

	printSuccess("Saved lock for %s", rootLabel(m))
	printKeyValue("id", l.ID)
	printKeyValue("packages", fmt.Sprint(l.Nodes))
	if fs, ok := store.(*lockfile.FileStore); ok {
		printFile(fs.Path())
	} else {
		printKeyValue("store", cfg.Lock.Store)
	}
	return nil
}

// openStore opens the lock store selected by cfg.
func openStore(ctx context.Context, cfg *config.Config) (lockfile.Store, error) {
	switch cfg.Lock.Store {
	case config.StoreMongo:
		s, err := lockfile.NewMongoStore(ctx, cfg.Lock.MongoURI, cfg.Lock.MongoDatabase, cfg.Lock.MongoCollection)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreFile, "":
		s, err := lockfile.NewFileStore(cfg.Lock.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown lock store %q", cfg.Lock.Store)
	}
}
