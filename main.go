package main

import (
	"os"

	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/config"
	logx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Personal assistant chat dispatch service",
	Long: `Routes chat prompts to weather, news or calculator handlers and answers
everything else with a local language model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			configx.SetEnvFile(envFile)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Path to a .env file (default: ./.env when present)")
	rootCmd.AddCommand(serveCmd, askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
