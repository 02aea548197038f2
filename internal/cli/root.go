package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Exit codes
const (
	ExitSuccess         = 0
	ExitUsageError      = 2
	ExitInputError      = 3
	ExitDerivationError = 4
	ExitRuntimeError    = 5
)

var (
	flagVerbose   bool
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "rvconf",
	Short: "Hardware configuration compiler",
	Long: "rvconf merges declarative hardware parameter fragments and derives the widths, " +
		"masks and divider settings consumed by HDL and header generators.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(flagVerbose, flagLogFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(procsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run executes the root command and returns an exit code.
func Run() int {
	return execute(os.Args[1:])
}

func execute(args []string) int {
	exitCode = ExitSuccess
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		if exitCode == ExitSuccess {
			exitCode = ExitUsageError
		}
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

func setupLogging(verbose bool, format string) error {
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	switch format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return errors.Errorf("unsupported log format: %s", format)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print rvconf version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rvconf version %s\n", version)
	},
}
