// Command invoicing converts billable hours and fixed fees into the
// semicolon-delimited invoice transfer document, along with the diagnostic
// reports finance reviews before upload.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/config"
	"github.com/sevendos/invoice-transfer/pkg/utils"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invoicing",
	Short: "Transform hour marking system data to invoicing system data",
	Long: `invoicing turns billable time entries and fixed monthly fees into an
invoice transfer document for Workday, resolving hourly rates from the
customer configuration and the internal rate table.

Each run also writes the diagnostic reports finance reviews before the
upload: unresolved rates, excluded rows and billable hours that ended up
in no invoice.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appConfig, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		loggerCfg := utils.LoggerConfig{
			Level:      appConfig.Logger.Level,
			OutputPath: appConfig.Logger.OutputPath,
			Format:     appConfig.Logger.Format,
		}
		if verbose {
			loggerCfg.Level = "debug"
		}
		logger, err = utils.NewLogger(loggerCfg)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
