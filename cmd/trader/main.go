package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/yanun0323/logs"
)

var (
	configPath      string
	pyroscopeServer string
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Single account trading engine",
	Long: `trader runs one account against a venue: it logs in the market and
trade adapters, hydrates the session, dispatches venue events to strategies
and algos, and journals every order, trade and risk decision.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "config.yaml", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&pyroscopeServer, "pyroscope", "", "pyroscope server address, empty disables profiling")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logs.Errorf("trader, err: %+v", err)
		os.Exit(1)
	}
}
