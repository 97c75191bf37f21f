// Package cmd implements the CLI commands for ticketwatch.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ticketwatch/internal/checker"
)

var rootCmd = &cobra.Command{
	Use:   "ticketwatch",
	Short: "Watch ticket availability and mail the first opening",
	Long: "ticketwatch periodically checks a ticket calendar feed or a rendered\n" +
		"sales page and sends an email the first time availability appears,\n" +
		"without duplicate notifications across runs.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().String("state", "", "state file path (overrides state.path from config)")

	cobra.CheckErr(viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")))
	cobra.CheckErr(viper.BindPFlag("state", rootCmd.PersistentFlags().Lookup("state")))

	viper.SetEnvPrefix("TICKETWATCH")
	viper.AutomaticEnv()

	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command and maps the outcome to a process exit
// status: 0 for success or a benign fetch skip, 2 for configuration
// errors, 1 for notification and other failures.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return checker.ExitCode(err)
	}
	return 0
}
