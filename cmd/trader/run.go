package main

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/engine"
	"rookie/internal/model"
	"rookie/internal/ops"
	"rookie/internal/schedule"
)

const schedulePollInterval = time.Second

var algoPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine until a shutdown signal",
	Long: `Run the engine with the configured adapters. With schedule windows
configured the session starts and stops with the windows, otherwise it starts
immediately.

Example:
  trader run -f config.yaml --algo algos.json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&algoPath, "algo", "", "JSON file with algo commands to load before trading")
}

func runRun(cmd *cobra.Command, _ []string) error {
	loaded, err := ops.Load(configPath)
	if err != nil {
		return err
	}
	stopProfiler, err := startProfiler(pyroscopeServer, loaded.Account)
	if err != nil {
		return errors.Wrap(err, "start pyroscope")
	}
	defer stopProfiler()

	sched, err := schedule.New(loaded.Schedule)
	if err != nil {
		return err
	}
	rt, err := newRuntime(loaded)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := shutdownContext()
	defer cancel()

	e, err := rt.newEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(context.Background()); err != nil {
			logs.Errorf("close engine, err: %+v", err)
		}
		e.Metrics().Log()
	}()

	if algoPath != "" {
		if err := insertAlgos(e, algoPath); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		rt.walk(ctx)
	}()
	defer wg.Wait()

	if sched.Empty() {
		if err := e.StartTrading(ctx); err != nil {
			cancel()
			return err
		}
	} else {
		sched.SetCallbacks(
			func() {
				if err := e.StartTrading(ctx); err != nil {
					logs.Errorf("scheduled start trading, err: %+v", err)
				}
			},
			func() {
				if err := e.StopTrading(ctx); err != nil {
					logs.Warnf("scheduled stop trading, err: %+v", err)
				}
			},
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Run(ctx, schedulePollInterval)
		}()
	}

	<-ctx.Done()
	return nil
}

func insertAlgos(e *engine.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read algo file %s", path)
	}
	var reqs []model.AlgoReq
	if err := sonic.Unmarshal(data, &reqs); err != nil {
		return errors.Wrapf(err, "parse algo file %s", path)
	}
	for _, req := range reqs {
		if err := e.AlgoInsert(req); err != nil {
			return err
		}
		logs.Infof("algo %s on %s, target %d", req.AlgoName, req.Symbol, req.NetPosition)
	}
	return nil
}
