package main

import (
	"context"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"rookie/internal/engine"
	"rookie/internal/gateway"
	"rookie/internal/gateway/sim"
	"rookie/internal/obs"
	"rookie/internal/ops"
	"rookie/internal/relay"
	"rookie/internal/store"
)

// runtime is everything a command needs besides the engine itself.
type runtime struct {
	loaded   ops.Loaded
	registry *gateway.Registry
	venue    *sim.Venue
	walker   *sim.Walker
}

func newRuntime(loaded ops.Loaded) (*runtime, error) {
	rt := &runtime{loaded: loaded, registry: gateway.NewRegistry()}
	relay.Register(rt.registry)
	if !loaded.UsesSim() {
		return rt, nil
	}

	rt.venue = sim.NewVenue(loaded.Sim.VenueConfig)
	sim.Register(rt.registry, rt.venue)
	if loaded.Sim.WalkMillis > 0 {
		walker, err := sim.NewWalker(rt.venue, loaded.Sim.Seed)
		if err != nil {
			rt.venue.Close()
			return nil, err
		}
		rt.walker = walker
	}
	return rt, nil
}

// walk moves the sim prices until ctx is done. It is a no-op without a walker.
func (rt *runtime) walk(ctx context.Context) {
	if rt.walker == nil {
		return
	}
	rt.walker.Run(ctx, time.Duration(rt.loaded.Sim.WalkMillis)*time.Millisecond)
}

func (rt *runtime) newEngine(ctx context.Context) (*engine.Engine, error) {
	sink, err := store.Open(ctx, rt.loaded.DB)
	if err != nil {
		return nil, err
	}
	e, err := engine.New(engine.Options{
		Config:     rt.loaded.Engine,
		Account:    rt.loaded.Account,
		Thresholds: rt.loaded.Risk,
		Market:     rt.loaded.Market,
		Trade:      rt.loaded.Trade,
		Registry:   rt.registry,
		Sink:       sink,
		LogLevel:   rt.loaded.LogLevel,
		Metrics:    obs.NewMetrics(),
	})
	if err != nil {
		_ = sink.Close()
		return nil, err
	}
	return e, nil
}

func (rt *runtime) close() {
	if rt.venue != nil {
		rt.venue.Close()
	}
}

// shutdownContext is canceled on the first shutdown signal.
func shutdownContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sys.Shutdown():
			logs.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

type pyroscopeLogger struct{}

func (pyroscopeLogger) Infof(format string, args ...any)  { logs.Debugf(format, args...) }
func (pyroscopeLogger) Debugf(format string, args ...any) { logs.Debugf(format, args...) }
func (pyroscopeLogger) Errorf(format string, args ...any) { logs.Errorf(format, args...) }

// startProfiler returns a stop func. An empty server disables profiling.
func startProfiler(server, account string) (func(), error) {
	if server == "" {
		return func() {}, nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "rookie.trader",
		ServerAddress:   server,
		Tags:            map[string]string{"account": account},
		Logger:          pyroscopeLogger{},
		ProfileTypes:    []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, err
	}
	return func() {
		_ = profiler.Stop()
	}, nil
}
