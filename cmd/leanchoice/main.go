// Command leanchoice runs a single fork-choice participant: it derives
// genesis from flags or a YAML file, drives slot time in real time,
// and — when assigned the proposer duty — produces and admits its own
// blocks. It never gossips; it's a standalone demonstration of the
// fork-choice core, not a networked client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devylongs/leanchoice/config"
	"github.com/devylongs/leanchoice/node"
	"github.com/devylongs/leanchoice/observability/logging"
	"github.com/devylongs/leanchoice/observability/metrics"
	"github.com/devylongs/leanchoice/storage"
	"github.com/devylongs/leanchoice/storage/memory"
	"github.com/devylongs/leanchoice/storage/pebble"
	"github.com/devylongs/leanchoice/types"
)

func main() {
	genesisFile := flag.String("genesis-file", "", "Path to a genesis YAML file; overrides the flags below when set")
	genesisTime := flag.Uint64("genesis-time", 0, "Genesis time (Unix timestamp). Defaults to 10 seconds from now.")
	validators := flag.Uint64("validators", 8, "Number of validators in the network")
	validatorIndex := flag.Uint64("validator-index", 0, "Validator index to run as")
	dataDir := flag.String("data-dir", "", "Directory for a durable pebble archive; empty keeps state in memory only")
	metricsPort := flag.Int("metrics-port", 9090, "Prometheus metrics port (0 disables)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	level := slog.LevelInfo
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logging.Init(level)
	logger := logging.NewComponentLogger(logging.CompNode)

	gen, err := loadGenesis(*genesisFile, *genesisTime, *validators)
	if err != nil {
		logger.Error("failed to load genesis config", "error", err)
		os.Exit(1)
	}
	if *validatorIndex >= gen.NumValidators {
		fmt.Fprintf(os.Stderr, "error: validator-index (%d) must be less than validators (%d)\n", *validatorIndex, gen.NumValidators)
		os.Exit(1)
	}

	var archive storage.Archive
	if *dataDir != "" {
		archive, err = pebble.Open(*dataDir)
		if err != nil {
			logger.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
	} else {
		archive = memory.New()
	}

	if *metricsPort != 0 {
		metrics.NodeInfo.WithLabelValues("dev").Set(1)
		metrics.NodeStartTime.Set(float64(time.Now().Unix()))
		metrics.Serve(*metricsPort)
	}

	logger.Info("config", "genesis_time", gen.GenesisTime, "validators", gen.NumValidators, "validator_index", *validatorIndex)

	ctx, cancel := context.WithCancel(context.Background())
	n, err := node.New(ctx, node.Config{
		Genesis:        gen,
		ValidatorIndex: types.ValidatorIndex(*validatorIndex),
		Logger:         logger,
		Archive:        archive,
	})
	if err != nil {
		logger.Error("failed to create node", "error", err)
		cancel()
		os.Exit(1)
	}

	n.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	n.Stop()
	cancel()
	if err := archive.Close(); err != nil {
		logger.Warn("archive close failed", "error", err)
	}
}

func loadGenesis(path string, genesisTime, numValidators uint64) (config.Genesis, error) {
	if path != "" {
		return config.Load(path)
	}
	if genesisTime == 0 {
		genesisTime = uint64(time.Now().Unix()) + 10
	}
	return config.Genesis{NumValidators: numValidators, GenesisTime: genesisTime}, nil
}
