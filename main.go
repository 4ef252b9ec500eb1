package main

import (
	"capacity-planner/config"
	"capacity-planner/logging"
	"capacity-planner/metrics"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
)

// app carries resolved settings between the root command and subcommands.
type app struct {
	configPath string
	wait       bool
	settings   config.Settings
	logger     *slog.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "capacity-planner",
		Short:        "Recruiting capacity planner",
		Long:         "Sizes Talent Partner, Sourcer and Coordinator headcount for a set of hiring pools\nand reports the weekly capacity gap.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.finish()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (yaml, json or toml)")
	root.PersistentFlags().BoolVar(&a.wait, "wait", false, "Keep process running after completion to allow for metric scraping")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newSimulateCommand(a))
	root.AddCommand(newCompareCommand(a))
	root.AddCommand(newCurveCommand(a))
	root.AddCommand(newSyncCommand(a))
	root.AddCommand(newServeCommand(a))
	return root
}

// initialize loads .env files and settings, builds the logger and starts the
// metrics server if requested.
func (a *app) initialize(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	settings, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = logging.New(settings.Logging())
	slog.SetDefault(a.logger)

	// Start metrics server if address provided
	if settings.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			a.logger.Info("metrics server listening", "addr", settings.MetricsAddr, "path", "/metrics")
			if err := http.ListenAndServe(settings.MetricsAddr, mux); err != nil {
				a.logger.Error("metrics server error", "error", err)
			}
		}()
	}
	return nil
}

// finish pushes metrics and optionally waits for a final scrape.
func (a *app) finish() {
	s := a.settings
	if s.PushURL != "" {
		jobName := "capacity_planner"
		if err := push.New(s.PushURL, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			a.logger.Error("pushing to Pushgateway failed", "url", s.PushURL, "error", err)
		} else {
			a.logger.Info("metrics pushed to Pushgateway", "url", s.PushURL)
		}
	}

	if a.wait && s.MetricsAddr != "" {
		fmt.Fprintln(os.Stderr, "\nProcess kept alive for metric scraping. Press Ctrl+C to exit.")
		// Wait for interrupt signal
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		fmt.Fprintln(os.Stderr, "\nExiting...")
	} else if s.MetricsAddr != "" && s.PushURL == "" {
		// Small delay to allow final scrape if not waiting explicitly
		time.Sleep(100 * time.Millisecond)
	}
}
