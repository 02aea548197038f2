package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/rvconf/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the settings derive falls back on when flags are absent",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in settings to the settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s exists; leaving it untouched\n", path)
			return nil
		}
		if err := config.Save(config.Default()); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote default settings to %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting (e.g. format, strict, cache.enabled)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(config.Default())
		if err != nil {
			return err
		}
		if err := config.SetField(&cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return errors.Wrap(err, "saving settings")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings after file and RVCONF_* overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.WithStack(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
