package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dexpool/config"
	"dexpool/core"
	"dexpool/native/pool/pricing"
	"dexpool/observability/logging"
	"dexpool/rpc"
	"dexpool/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	memory := flag.Bool("memory", false, "DEV ONLY: keep state in memory instead of on disk")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("poold", cfg.Env)

	var db storage.Database
	if *memory {
		db = storage.NewMemDB()
	} else {
		db, err = storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			logger.Error("failed to open database", "path", cfg.DataDir, "error", err)
			os.Exit(1)
		}
	}
	defer db.Close()

	strategies := pricing.NewRegistry()
	strategies.Register(pricing.ConstantProductID, pricing.ConstantProduct{})

	node := core.NewNode(db, strategies, core.WithLogger(logger))
	if err := node.SetFeeBps(cfg.FeeBps); err != nil {
		logger.Error("invalid fee configuration", "feeBps", cfg.FeeBps, "error", err)
		os.Exit(1)
	}

	server := rpc.NewServer(node, logger, float64(cfg.RatePerMinute), cfg.RateBurst)
	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("rpc server listening", "address", cfg.RPCAddress)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("rpc server failed", "error", err)
			os.Exit(1)
		}
	}
}
