package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clefsettings",
		Short: "Inspect and edit Clef plugin settings",
		Long: `clefsettings resolves the Clef plugin settings of a site stored in a
SQLite host database, following the same multisite rules as the plugin.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringP("db", "d", "", "Host database path")
	rootCmd.PersistentFlags().StringP("log-level", "", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("option-name", "", "", "Option holding the settings map")
	rootCmd.PersistentFlags().BoolP("network-admin", "", false, "Act from the network admin screen")
	rootCmd.PersistentFlags().StringP("actor", "", "", "User ID recorded on setting changes")
	rootCmd.PersistentFlags().StringP("engine", "", "", "Rule engine (expr, cel, js)")
	rootCmd.PersistentFlags().StringP("password-rule", "", "", "Extra rule that disables passwords when true")

	rootCmd.AddCommand(
		newShowCommand(),
		newGetCommand(),
		newSetCommand(),
		newRemoveCommand(),
		newPolicyCommand(),
		newEvalCommand(),
		newSeedCommand(),
	)
	return rootCmd
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logrus.SetOutput(os.Stderr)

	switch level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
