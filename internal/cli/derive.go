package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/rvconf/internal/cache"
	"github.com/dshills/rvconf/internal/config"
	"github.com/dshills/rvconf/internal/output"
	"github.com/dshills/rvconf/internal/pipeline"
)

// Derive flags
var (
	flagOut        string
	flagFormat     string
	flagScripts    string
	flagScriptsDir string
	flagIncludes   string
	flagStrict     bool
	flagCache      bool
	flagNoCache    bool
)

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagOut != "" {
		m["out"] = flagOut
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagScriptsDir != "" {
		m["scriptsDir"] = flagScriptsDir
	}
	if flagIncludes != "" {
		m["includesName"] = flagIncludes
	}
	if flagStrict {
		m["strict"] = "true"
	}
	if flagLogFormat != "" {
		m["logFormat"] = flagLogFormat
	}
	if flagCache {
		m["cache.enabled"] = "true"
	}
	if flagNoCache {
		m["cache.enabled"] = "false"
	}
	return m
}

var deriveCmd = &cobra.Command{
	Use:   "derive <folder>",
	Short: "Merge fragments under a folder and derive the materialized config",
	Long: "Loads every TOML/YAML fragment under the folder (except includes fragments), flattens " +
		"their tables into one configuration, applies the derivation procedures selected by the " +
		"manifests in its scripts directories (or all built-in ones) and writes the result.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if err := setupLogging(flagVerbose, cfg.LogFormat); err != nil {
			return err
		}
		if info, err := os.Stat(args[0]); err != nil || !info.IsDir() {
			return errors.Errorf("%s is not a directory", args[0])
		}

		c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if err != nil {
			fail(err)
			return nil
		}

		res, err := pipeline.Run(pipeline.Options{
			Root:         args[0],
			ScriptsPath:  flagScripts,
			ScriptsDir:   cfg.ScriptsDir,
			IncludesName: cfg.IncludesName,
			Strict:       cfg.Strict,
			Cache:        c,
			Version:      version,
		})
		if err != nil {
			fail(err)
			return nil
		}

		path, err := output.WriteConfig(res.Config, cfg.Format, cfg.Out, cmd.OutOrStdout())
		if err != nil {
			fail(err)
			return nil
		}
		if path != "" {
			log.WithFields(log.Fields{
				"path": path,
				"keys": res.Config.Len(),
			}).Info("materialized config written")
		}
		if len(res.Collisions) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d key(s) redefined across fragments; rerun with --verbose or --strict for details\n",
				len(res.Collisions))
		}
		return nil
	},
}

func init() {
	deriveCmd.Flags().StringVarP(&flagOut, "output", "o", "", "Output file or directory (default: stdout)")
	deriveCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, yaml, toml)")
	deriveCmd.Flags().StringVar(&flagScripts, "scripts", "", "Directory of procedure manifests (overrides discovery)")
	deriveCmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "Name of co-located manifest directories")
	deriveCmd.Flags().StringVar(&flagIncludes, "includes", "", "Base name of fragments excluded from the merge")
	deriveCmd.Flags().BoolVar(&flagStrict, "strict", false, "Fail when a key is defined by more than one fragment")
	deriveCmd.Flags().BoolVar(&flagCache, "cache", false, "Cache the derivation result")
	deriveCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Disable the derivation cache")
	deriveCmd.MarkFlagsMutuallyExclusive("cache", "no-cache")
}
