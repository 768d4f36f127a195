// Command securelink is the CLI entrypoint for the secured, authenticated
// bidirectional messaging channel: run with -s to accept one connection as
// the server, or -c to dial and act as the client.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vertexhub/securelink/internal/config"
	"github.com/vertexhub/securelink/internal/monitor"
	"github.com/vertexhub/securelink/internal/peer"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 || (os.Args[1] != "-s" && os.Args[1] != "-c") {
		fmt.Fprintln(os.Stderr, "usage: securelink -s | -c")
		return 1
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg := config.Load()

	if os.Args[1] == "-s" {
		return runServer(cfg, sugar)
	}
	return runClient(cfg, sugar)
}

func runServer(cfg config.Config, logger *zap.SugaredLogger) int {
	srv := peer.NewServer(cfg.SocketPath, logger)
	stopMonitor := startMonitor("server", srv, cfg, logger)
	defer stopMonitor()

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		return 1
	}
	return 0
}

func runClient(cfg config.Config, logger *zap.SugaredLogger) int {
	client := peer.NewClient(cfg.SocketPath, os.Stdin, logger)
	stopMonitor := startMonitor("client", client, cfg, logger)
	defer stopMonitor()

	if err := client.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		return 1
	}
	return 0
}

// startMonitor launches the read-only monitor sidecar in the background
// when SECURELINK_MONITOR_ADDR is configured, returning a no-op stopper
// when it is not. The sidecar never delays or gates the blocking peer role
// it observes.
func startMonitor(role string, source monitor.StatusSource, cfg config.Config, logger *zap.SugaredLogger) func() {
	if cfg.MonitorAddr == "" {
		return func() {}
	}
	mon := monitor.New(role, source, cfg.APIKey, logger)
	go func() {
		if err := mon.Start(cfg.MonitorAddr); err != nil {
			logger.Warnf("monitor sidecar stopped: %v", err)
		}
	}()
	return func() { mon.Stop() }
}
