package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hyperxav/clara/pkg/config"
	"github.com/hyperxav/clara/pkg/logging"
)

const serviceName = "clara"

var verbose bool

// NewRootCmd returns the root command for the clara CLI
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clara",
		Short:         "Clara posts one generated French text to X per run",
		Long:          "Clara composes a short French post with a language model, publishes it to X and archives it with an embedding.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newPostCmd())
	rootCmd.AddCommand(newThemesCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newLogger loads .env files and returns the service logger.
func newLogger() logging.Logger {
	logger := logging.NewLoggerWithService(serviceName)
	config.LoadEnv(logger)
	logger.SetLevel(config.GetLogLevel())
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
