// Command vrcheckd serves the VR invariant checker over gRPC.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"vrcheck/internal/config"
	"vrcheck/internal/logging"
	"vrcheck/internal/node"
	"vrcheck/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "vrcheckd: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n := node.NewNode(cfg, store, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal", zap.Stringer("signal", sig))
		n.Stop()
	}()

	logger.Info("vrcheckd configured",
		zap.String("listen", cfg.ListenAddr),
		zap.Int("quorum", cfg.Quorum),
		zap.Strings("replicas", cfg.Replicas),
		zap.String("trace_db", cfg.TraceDB),
		zap.Bool("monotonic", cfg.Monotonic))

	return n.Start()
}

// parseConfig loads the optional config file, then applies flags that
// were set explicitly on the command line.
func parseConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("vrcheckd", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to a TOML config file")
		listen     = fs.String("listen", config.DefaultListenAddr, "listen address")
		quorumSize = fs.Int("quorum", 0, "quorum size (0 derives a majority)")
		replicas   = fs.String("replicas", "", "comma-separated replica IDs, e.g. n1,n2,n3")
		traceDB    = fs.String("trace-db", "", "sqlite file for violation traces (empty keeps them in memory)")
		logPath    = fs.String("log-path", "", "log file (empty logs to stderr)")
		logLevel   = fs.String("log-level", config.DefaultLogLevel, "debug, info, warn or error")
		monotonic  = fs.Bool("monotonic", true, "check epoch/view monotonicity across steps of a session")
	)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.ListenAddr = *listen
		case "quorum":
			cfg.Quorum = *quorumSize
		case "replicas":
			ids, err := config.ParseReplicas(*replicas)
			if err != nil {
				parseErr = err
				return
			}
			cfg.Replicas = ids
		case "trace-db":
			cfg.TraceDB = *traceDB
		case "log-path":
			cfg.LogPath = *logPath
		case "log-level":
			cfg.LogLevel = *logLevel
		case "monotonic":
			cfg.Monotonic = *monotonic
		}
	})
	if parseErr != nil {
		return config.Config{}, parseErr
	}
	return cfg, cfg.Validate()
}

func openStore(cfg config.Config) (storage.Store, error) {
	if cfg.TraceDB == "" {
		return storage.NewInMemoryStore(), nil
	}
	return storage.OpenSQLite(cfg.TraceDB)
}
