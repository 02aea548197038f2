package cli

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/rvconf/internal/cache"
	"github.com/dshills/rvconf/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or empty the store of materialized configs",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached materialized config",
	Long: `Remove every cached materialized config. The next derive run with
caching enabled re-applies all procedures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(true)
		if err != nil {
			return err
		}
		n, err := c.Clear()
		if err != nil {
			return errors.Wrapf(err, "emptying %s", c.Dir())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d materialized config(s) from %s\n", n, c.Dir())
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Report the number and size of cached materialized configs",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(false)
		if err != nil {
			return err
		}
		if !c.Enabled() {
			fmt.Fprintln(cmd.OutOrStdout(), "caching is off (enable with --cache or cache.enabled)")
			return nil
		}
		stats, err := c.GetStats()
		if err != nil {
			return errors.Wrapf(err, "scanning %s", c.Dir())
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return errors.WithStack(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// openCache opens the configured cache directory. With force the cache is
// opened even when caching is switched off in the settings.
func openCache(force bool) (*cache.Cache, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(force || cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, errors.Wrap(err, "opening derivation cache")
	}
	return c, nil
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
