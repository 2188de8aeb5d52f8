package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yanun0323/logs"

	"rookie/internal/ops"
)

var detailCmd = &cobra.Command{
	Use:   "detail",
	Short: "Start one session and print its market and trade state as JSON",
	RunE:  runDetail,
}

func init() {
	rootCmd.AddCommand(detailCmd)
}

func runDetail(cmd *cobra.Command, _ []string) error {
	loaded, err := ops.Load(configPath)
	if err != nil {
		return err
	}
	rt, err := newRuntime(loaded)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	e, err := rt.newEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(context.Background()); err != nil {
			logs.Errorf("close engine, err: %+v", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if err := e.StartTrading(ctx); err != nil {
		return err
	}
	detail, err := e.DetailJSON(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), detail)
	return e.StopTrading(ctx)
}
