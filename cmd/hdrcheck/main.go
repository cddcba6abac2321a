// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/blinklabs-io/hdrcheck/blockchain"
	"github.com/blinklabs-io/hdrcheck/internal/config"
	"github.com/blinklabs-io/hdrcheck/internal/indexer"
	"github.com/blinklabs-io/hdrcheck/internal/logging"
	"github.com/blinklabs-io/hdrcheck/internal/state"
	"github.com/blinklabs-io/hdrcheck/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var cmdlineFlags struct {
	configFile string
}

func main() {
	flag.StringVar(
		&cmdlineFlags.configFile,
		"config",
		"",
		"path to config file to load",
	)
	flag.Parse()

	// Load config
	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Configure logging
	if err := logging.Setup(); err != nil {
		fmt.Printf("Failed to configure logging: %s\n", err)
		os.Exit(1)
	}
	logger := logging.GetLogger()
	// Sync logger on exit
	defer func() {
		if err := logger.Sync(); err != nil {
			// We don't actually care about the error here, but we have to do something
			// to appease the linter
			return
		}
	}()

	logger.Info(
		fmt.Sprintf("hdrcheck %s started", version.GetVersionString()),
	)
	for _, profile := range config.GetProfiles() {
		logger.Infof("using profile for network %s", profile.Network)
	}

	// Load state
	if err := state.GetState().Load(); err != nil {
		logger.Fatalf("failed to load state: %s", err)
	}
	defer func() {
		if err := state.GetState().Close(); err != nil {
			logger.Errorf("failed to close state: %s", err)
		}
	}()

	// Start debug listener
	if cfg.Debug.ListenPort > 0 {
		logger.Infof(
			"starting debug listener on %s:%d",
			cfg.Debug.ListenAddress,
			cfg.Debug.ListenPort,
		)
		go func() {
			err := http.ListenAndServe(
				fmt.Sprintf(
					"%s:%d",
					cfg.Debug.ListenAddress,
					cfg.Debug.ListenPort,
				),
				nil,
			)
			if err != nil {
				logger.Fatalf("failed to start debug listener: %s", err)
			}
		}()
	}

	// Start metrics listener
	if cfg.Metrics.ListenPort > 0 {
		logger.Infof(
			"starting metrics listener on %s:%d",
			cfg.Metrics.ListenAddress,
			cfg.Metrics.ListenPort,
		)
		go func() {
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", promhttp.Handler())
			err := http.ListenAndServe(
				fmt.Sprintf(
					"%s:%d",
					cfg.Metrics.ListenAddress,
					cfg.Metrics.ListenPort,
				),
				metricsMux,
			)
			if err != nil {
				logger.Fatalf("failed to start metrics listener: %s", err)
			}
		}()
	}

	// Create indexer
	network := blockchain.NetworkByName(cfg.Indexer.Network)
	indexerOpts := []indexer.IndexerOptionFunc{
		indexer.WithStrictAncestry(cfg.Indexer.StrictAncestry),
		indexer.WithLogger(logging.GetNetworkLogger(network.Name)),
	}
	startBlock, err := cfg.Indexer.StartBlock()
	if err != nil {
		logger.Fatalf("failed to decode start header: %s", err)
	}
	if startBlock != nil {
		logger.Infof("using configured start block: %s", startBlock)
		indexerOpts = append(indexerOpts, indexer.WithStartBlock(startBlock))
	}
	idx, err := indexer.New(network, state.GetState(), indexerOpts...)
	if err != nil {
		logger.Fatalf("failed to create indexer: %s", err)
	}

	// Open header input
	var input io.Reader = os.Stdin
	if cfg.Indexer.HeadersFile != "" && cfg.Indexer.HeadersFile != "-" {
		f, err := os.Open(cfg.Indexer.HeadersFile)
		if err != nil {
			logger.Fatalf("failed to open headers file: %s", err)
		}
		defer f.Close()
		input = f
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	// Process headers
	if err := idx.Run(ctx, input, cfg.Indexer.HeadersFormat); err != nil {
		logger.Errorf("header processing stopped: %s", err)
		stop()
		// Deferred calls don't run on os.Exit
		_ = state.GetState().Close()
		_ = logger.Sync()
		os.Exit(1)
	}

	// Keep serving metrics until we're told to stop
	if cfg.Metrics.ListenPort > 0 || cfg.Debug.ListenPort > 0 {
		logger.Infof("waiting for shutdown signal")
		<-ctx.Done()
	}
}
