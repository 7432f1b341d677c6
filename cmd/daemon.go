package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolle/ccgauge/internal/config"
	"github.com/mattsolle/ccgauge/internal/daemon"
)

var (
	flagDaemonAddr     string
	flagDaemonInterval time.Duration
	flagDaemonNoWatch  bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background refresh service",
	Long: "Periodically re-ingests the usage logs and serves the current snapshot " +
		"over a local HTTP API (/v1/status, /v1/sessions, /v1/stream).",
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&flagDaemonAddr, "addr", "", "Listen address (default 127.0.0.1:8791)")
	daemonCmd.Flags().DurationVar(&flagDaemonInterval, "interval", 0, "Refresh interval (default from config)")
	daemonCmd.Flags().BoolVar(&flagDaemonNoWatch, "no-watch", false, "Disable filesystem-triggered refreshes")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	interval := flagDaemonInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Daemon.IntervalSec) * time.Second
	}
	addr := flagDaemonAddr
	if addr == "" {
		addr = cfg.Daemon.Addr
	}

	svc := daemon.New(daemon.Config{
		Load:       opts,
		Interval:   interval,
		Addr:       addr,
		WatchRoots: !flagDaemonNoWatch,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "ccgauge daemon listening, refresh every %s\n", interval)
	}
	return svc.Run(ctx)
}
