package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, _, err := openCache(cmd.Context(), c.Settings.Cache, false)
			if err != nil {
				return err
			}
			defer ch.Close()

			if expired {
				fc, ok := ch.(*cache.FileCache)
				if !ok {
					return fmt.Errorf("--expired needs the file cache; redis expires entries itself")
				}
				n, err := fc.Prune(cmd.Context())
				if err != nil {
					return fmt.Errorf("prune cache: %w", err)
				}
				printSuccess("Removed %d expired entries", n)
				printDetail("Directory: %s", fc.Dir())
				return nil
			}

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return fmt.Errorf("cache %T cannot be cleared", ch)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cache cleared")
			if fc, ok := ch.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired entries")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Settings.Cache.RedisURL != "" {
				fmt.Fprintln(c.out, c.Settings.Cache.RedisURL)
				return nil
			}
			dir := c.Settings.Cache.Dir
			if dir == "" {
				d, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				dir = d
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}
