package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tokenized/spvpeer/config"
	"github.com/tokenized/spvpeer/logger"
	"github.com/tokenized/spvpeer/mempool"
	"github.com/tokenized/spvpeer/peer"
)

func main() {
	// -------------------------------------------------------------------------
	// Logging

	logConfig := logger.NewDevelopmentConfig()
	logConfig.EnableSubSystem(peer.SubSystem)
	ctx := logger.ContextWithLogConfig(context.Background(), logConfig)

	// -------------------------------------------------------------------------
	// Config

	cfg, err := config.NewPeerConfig()
	if err != nil {
		logger.Fatal(ctx, "Parsing config : %s", err)
		return
	}

	logger.Info(ctx, "Config : %v", cfg)

	network, err := cfg.NetworkTag()
	if err != nil {
		logger.Fatal(ctx, "Network : %s", err)
		return
	}

	// -------------------------------------------------------------------------
	// Connect

	pool := mempool.NewMempool()

	var p *peer.Peer
	if cfg.HasProxy() {
		p, err = peer.ConnectProxy(ctx, cfg.Address, cfg.ProxyAddress, cfg.ProxyCredentials(), pool,
			network)
	} else {
		p, err = peer.Connect(ctx, cfg.Address, pool, network)
	}
	if err != nil {
		logger.Fatal(ctx, "Connect : %s", err)
		return
	}

	version := p.GetVersion()
	logger.Info(ctx, "Connected : user_agent=%s services=%d start_height=%d", version.UserAgent,
		version.Services, version.LastBlock)

	// -------------------------------------------------------------------------
	// Shutdown

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-osSignals:
			logger.Info(ctx, "Shutting down")
			p.Stop(ctx)
			return

		case <-ticker.C:
			if !p.IsConnected() {
				logger.Warn(ctx, "Peer disconnected")
				return
			}

			if err := p.AskForMempool(ctx); err != nil {
				logger.Warn(ctx, "Ask for mempool : %s", err)
			}
		}
	}
}
