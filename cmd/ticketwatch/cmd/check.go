package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ticketwatch/internal/checker"
	"ticketwatch/internal/config"
	"ticketwatch/pkg/logger"
)

var forceNotify bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single availability check",
	Long: "Loads the previous baseline, fetches the configured source once,\n" +
		"sends a notification if new availability appeared, and persists the\n" +
		"next baseline. Intended to be invoked from cron or a CI schedule.",
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().
		BoolVar(&forceNotify, "force-notify", false, "send a test notification regardless of the computed diff")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return fmt.Errorf("%w: %v", checker.ErrConfig, err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	c, err := buildChecker(cfg, log)
	if err != nil {
		return fmt.Errorf("%w: %v", checker.ErrConfig, err)
	}

	return c.Run(cmd.Context(), forceNotify)
}
