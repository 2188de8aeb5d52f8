package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rookie/internal/ops"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config, the adapters and the store",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	loaded, err := ops.Load(configPath)
	if err != nil {
		return err
	}
	rt, err := newRuntime(loaded)
	if err != nil {
		return err
	}
	defer rt.close()

	e, err := rt.newEngine(cmd.Context())
	if err != nil {
		return err
	}
	if err := e.Close(context.Background()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "account:  %s\n", loaded.Account)
	fmt.Fprintf(out, "market:   %s %v %v\n", loaded.Market.AdapterName, loaded.Market.Exchanges, loaded.Market.ProductClasses)
	fmt.Fprintf(out, "trade:    %s\n", loaded.Trade.AdapterName)
	fmt.Fprintf(out, "risk:     %+v\n", loaded.Risk)
	fmt.Fprintf(out, "store:    %s\n", loaded.DB.Driver)
	fmt.Fprintf(out, "schedule: %d windows\n", len(loaded.Schedule.Windows))
	return nil
}
