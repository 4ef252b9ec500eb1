package main

import (
	"capacity-planner/api"
	"capacity-planner/comparison"
	"capacity-planner/curve"
	"capacity-planner/formatter"
	"capacity-planner/importer"
	"capacity-planner/models"
	"capacity-planner/parser"
	"capacity-planner/workspace"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var validFormats = map[string]bool{"text": true, "json": true, "csv": true}

func newSimulateCommand(a *app) *cobra.Command {
	var input, format, poolID string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compute and reconcile a plan, then print the weekly report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[format] {
				return fmt.Errorf("format must be one of: text, json, csv (got: %s)", format)
			}
			ws, err := a.workspaceFrom(input)
			if err != nil {
				return err
			}

			snap := ws.Snapshot()
			result := snap.Results.Aggregate
			if poolID != "" {
				pool, ok := snap.Results.Pool(poolID)
				if !ok {
					return fmt.Errorf("pool %q not found", poolID)
				}
				result = pool.Result
			}
			render(cmd.OutOrStdout(), format, &result, snap.Config)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Plan file: .csv pool list or .yaml plan (default: starter pools)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|json|csv")
	cmd.Flags().StringVar(&poolID, "pool", "", "Report a single pool by id instead of the aggregate")
	return cmd
}

func newCompareCommand(a *app) *cobra.Command {
	var input, format string
	var target comparison.Levers

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare steady-state staffing under baseline and target productivity levers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspaceFrom(input)
			if err != nil {
				return err
			}
			snap := ws.Snapshot()
			levers := comparison.DefaultTarget(comparison.BaselineLevers(snap.Config))
			if target.TPCapacityPerWeek > 0 {
				levers.TPCapacityPerWeek = target.TPCapacityPerWeek
			}
			if target.PoolsPerSourcer > 0 {
				levers.PoolsPerSourcer = target.PoolsPerSourcer
			}

			res := comparison.FromResults(snap.Results, snap.Config, levers)
			out := cmd.OutOrStdout()
			if format == "json" {
				return encodeJSON(out, res)
			}
			fmt.Fprintf(out, "Average hires: %.1f/week (%.1f/month) across %d pools\n",
				res.AverageWeeklyHires, res.AverageMonthlyHires, res.TotalPools)
			fmt.Fprintf(out, "Baseline (%.1f hires/TP, %.0f pools/Sourcer): TPs=%d, Sourcers=%d, Coordinators=%d, total=%d\n",
				res.BaselineLevers.TPCapacityPerWeek, res.BaselineLevers.PoolsPerSourcer,
				res.Baseline.TalentPartners, res.Baseline.Sourcers, res.Baseline.Coordinators, res.Baseline.Total)
			fmt.Fprintf(out, "Target   (%.1f hires/TP, %.0f pools/Sourcer): TPs=%d, Sourcers=%d, Coordinators=%d, total=%d\n",
				res.TargetLevers.TPCapacityPerWeek, res.TargetLevers.PoolsPerSourcer,
				res.Target.TalentPartners, res.Target.Sourcers, res.Target.Coordinators, res.Target.Total)
			fmt.Fprintf(out, "Staff saved: %d (%.1f%%)\n", res.StaffSaved, res.ImprovementPercent)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Plan file: .csv pool list or .yaml plan (default: starter pools)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|json")
	cmd.Flags().Float64Var(&target.TPCapacityPerWeek, "target-tp-capacity", 0, "Target hires per TP per week (default: baseline +20%)")
	cmd.Flags().Float64Var(&target.PoolsPerSourcer, "target-pools-per-sourcer", 0, "Target pools per Sourcer (default: baseline +1, max 15)")
	return cmd
}

func newCurveCommand(a *app) *cobra.Command {
	var shapeName string
	var weeks int
	var total float64

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Print a generated weekly demand curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := curve.ParseShape(shapeName)
			if err != nil {
				return err
			}
			if weeks == 0 {
				weeks = a.settings.Plan.HiringDuration
			}
			values := curve.Generate(shape, weeks, total)
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = fmt.Sprintf("%.2f", v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&shapeName, "shape", "flat", "Curve shape: flat|linear")
	cmd.Flags().IntVar(&weeks, "weeks", 0, "Number of weeks (default: configured hiring duration)")
	cmd.Flags().Float64Var(&total, "total", 0, "Total hires to spread")
	return cmd
}

func newSyncCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace pools with the external demand feed and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[format] {
				return fmt.Errorf("format must be one of: text, json, csv (got: %s)", format)
			}
			url := a.settings.SyncURL
			if url == "" {
				return errors.New("no sync url: set --sync-url or CAPACITY_SYNC_URL")
			}
			ws, err := a.newWorkspace(a.settings.Plan, nil)
			if err != nil {
				return err
			}

			client := importer.NewClient(importer.WithHTTPClient(&http.Client{Timeout: a.settings.SyncTimeout}))
			pools, err := client.Sync(cmd.Context(), ws, url)
			if err != nil {
				return err
			}
			a.logger.Info("demand synced", "url", url, "pools", len(pools))

			snap := ws.Snapshot()
			render(cmd.OutOrStdout(), format, &snap.Results.Aggregate, snap.Config)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|json|csv")
	return cmd
}

func newServeCommand(a *app) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning workspace over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspaceFrom(input)
			if err != nil {
				return err
			}
			client := importer.NewClient(importer.WithHTTPClient(&http.Client{Timeout: a.settings.SyncTimeout}))
			router := api.NewRouter(ws, client, a.logger, api.Options{
				SyncURL: a.settings.SyncURL,
				Debug:   a.settings.LogLevel == "debug",
			})

			srv := &http.Server{
				Addr:              a.settings.ListenAddr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("api listening", "addr", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.logger.Info("shutting down api")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Plan file: .csv pool list or .yaml plan (default: starter pools)")
	return cmd
}

// workspaceFrom builds a reconciled workspace from a plan file. YAML plans
// carry their own config; CSV pool lists use the configured assumptions.
// An empty path starts from the starter pools.
func (a *app) workspaceFrom(path string) (*workspace.Workspace, error) {
	cfg := a.settings.Plan
	if path == "" {
		return a.newWorkspace(cfg, models.DefaultPools())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		plan, err := parser.ParsePlan(file)
		if err != nil {
			return nil, fmt.Errorf("error parsing plan: %w", err)
		}
		return a.newWorkspace(plan.Config, plan.Pools)
	default:
		pools, err := parser.Parse(file, cfg.HiringDuration)
		if err != nil {
			return nil, fmt.Errorf("error parsing file: %w", err)
		}
		return a.newWorkspace(cfg, pools)
	}
}

func (a *app) newWorkspace(cfg models.GlobalConfig, pools []models.Scenario) (*workspace.Workspace, error) {
	e, err := a.settings.Engine()
	if err != nil {
		return nil, err
	}
	return workspace.New(cfg, pools, workspace.WithEngine(e), workspace.WithLogger(a.logger))
}

func render(w io.Writer, format string, result *models.SimulationResult, cfg models.GlobalConfig) {
	switch format {
	case "json":
		fmt.Fprint(w, formatter.FormatJSON(result, cfg))
	case "csv":
		fmt.Fprint(w, formatter.FormatCSV(result, cfg))
	default: // "text"
		fmt.Fprint(w, formatter.FormatText(result, cfg))
	}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
