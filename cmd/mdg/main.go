package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"rookie/internal/gateway"
	"rookie/internal/gateway/sim"
	"rookie/internal/ops"
	"rookie/internal/relay"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML or JSON config")
	socketPath := flag.String("socket", "", "Relay socket path (default: relay.socket_path)")
	flag.Parse()

	cfg, err := ops.Decode(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *socketPath != "" {
		cfg.Relay.SocketPath = *socketPath
	}

	registry := gateway.NewRegistry()
	var walker *sim.Walker
	if cfg.Relay.Upstream.AdapterName == sim.Name {
		venue := sim.NewVenue(cfg.Sim.VenueConfig)
		defer venue.Close()
		sim.Register(registry, venue)
		if cfg.Sim.WalkMillis > 0 {
			if walker, err = sim.NewWalker(venue, cfg.Sim.Seed); err != nil {
				log.Fatalf("sim walker init failed: %v", err)
			}
		}
	}

	server, err := relay.NewServer(cfg.Relay.SocketPath, registry, cfg.Relay.Upstream)
	if err != nil {
		log.Fatalf("relay init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sys.Shutdown()
		logs.Info("shutdown signal received")
		cancel()
	}()
	if walker != nil {
		go walker.Run(ctx, time.Duration(cfg.Sim.WalkMillis)*time.Millisecond)
	}

	if err := server.Serve(ctx); err != nil {
		log.Fatalf("relay serve failed: %v", err)
	}
	logs.Infof("relay stopped, dropped %d pushes", server.Drops())
}
