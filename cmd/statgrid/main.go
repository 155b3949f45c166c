package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"statgrid/internal"
	"statgrid/internal/config"
)

// cli carries what every command needs once the environment is loaded.
type cli struct {
	cfg    *config.Config
	logger *internal.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "statgrid",
		Short:         "Statistics for spreadsheet-shaped data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; real environment variables still apply.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			c.cfg = cfg
			c.logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
			internal.SetDefault(c.logger)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (error, warn, info, debug, trace)")

	rootCmd.AddCommand(
		c.newAnalyzeCmd(),
		c.newKDECmd(),
		c.newHistogramCmd(),
		c.newSmoothCmd(),
		c.newRegressCmd(),
		c.newServeCmd(),
	)
	return rootCmd
}
