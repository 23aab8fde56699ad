package commands

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"courtiq-landing/internal/config"
	"courtiq-landing/internal/logging"
)

var (
	configDir string
	logLevel  string

	cfg    config.Config
	logger *log.Logger
)

func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "courtiq",
		Short:        "Court IQ coming-soon page",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configDir != "" {
				if err := os.Setenv("COURTIQ_CONFIG_DIR", configDir); err != nil {
					return err
				}
			}

			loaded, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.LogLevel = logLevel
			}

			l, err := logging.New(cmd.ErrOrStderr(), loaded.LogLevel)
			if err != nil {
				return err
			}
			cfg, logger = loaded, l
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding courtiq.yaml")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override COURTIQ_LOG_LEVEL")

	root.AddCommand(serveCmd(), notifyCmd(), themeCmd())
	root.SetErrPrefix("courtiq:")
	return root
}
