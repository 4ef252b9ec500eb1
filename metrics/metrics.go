// Package metrics provides Prometheus observability metrics for the capacity planner.
// It includes Critical and Important metrics for staffing and operational visibility.
package metrics

import (
	"capacity-planner/engine"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Staffing Visibility
// =============================================================================

// DemandTotal tracks total hiring demand across all pools.
var DemandTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "demand_total",
	Help:      "Total hires demanded across all pools over the hiring window",
})

// PeakWeeklyDemand tracks the busiest week's summed demand.
var PeakWeeklyDemand = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "peak_weekly_demand",
	Help:      "Highest single-week hiring demand across all pools",
})

// HeadcountNeeded tracks peak headcount needed per role.
var HeadcountNeeded = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "headcount_needed",
	Help:      "Peak headcount needed across the timeline by role",
}, []string{"role"})

// HeadcountAllocated tracks currently allocated headcount per role.
var HeadcountAllocated = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "headcount_allocated",
	Help:      "Currently allocated headcount by role",
}, []string{"role"})

// CapacityGapPercent tracks the share of total demand that cannot be met.
// High values indicate capacity planning issues.
var CapacityGapPercent = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "capacity_gap_percent",
	Help:      "Percentage of total demand exceeding shared Talent Partner capacity",
})

// PoolCapacityGapPercent tracks the gap per pool, keyed by pool id.
var PoolCapacityGapPercent = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "pool_capacity_gap_percent",
	Help:      "Percentage of a pool's demand exceeding its own Talent Partner capacity",
}, []string{"pool_id", "pool"})

// WeeksWithShortfall tracks number of weeks where demand exceeds capacity.
var WeeksWithShortfall = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "weeks_with_shortfall",
	Help:      "Number of hiring weeks where aggregate demand exceeded capacity",
})

// PoolsTotal tracks the number of pools in the plan.
var PoolsTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "pools_total",
	Help:      "Number of talent pools in the current plan",
})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total records successfully parsed.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total pool records successfully parsed",
})

// CalculationDurationSeconds tracks time to compute pool and aggregate results.
var CalculationDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "planner",
	Name:      "calculation_duration_seconds",
	Help:      "Time taken to compute all pool and aggregate results",
	Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
})

// ReconcilerWritesTotal tracks fields written back by the reconciler.
var ReconcilerWritesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "reconciler",
	Name:      "writes_total",
	Help:      "Headcount fields overwritten with suggested values, by field",
}, []string{"field"})

// ReconcilerPasses tracks writing passes needed to converge.
var ReconcilerPasses = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "reconciler",
	Name:      "passes",
	Help:      "Writing passes needed before suggestions stopped changing",
	Buckets:   []float64{0, 1, 2, 3, 5, 8},
})

// ReconcilerNotConvergedTotal counts runs that hit the pass limit.
var ReconcilerNotConvergedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "reconciler",
	Name:      "not_converged_total",
	Help:      "Reconciliation runs stopped at the pass limit before converging",
})

// SyncRequestsTotal tracks demand sync attempts by outcome.
var SyncRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sync",
	Name:      "requests_total",
	Help:      "External demand sync attempts by outcome (ok, network, server, payload)",
}, []string{"outcome"})

// =============================================================================
// Helper Functions
// =============================================================================

// Role labels.
const (
	RoleTalentPartner = "talent_partner"
	RoleSourcer       = "sourcer"
	RoleCoordinator   = "coordinator"
)

// ResetSimulationGauges clears per-run gauges before publishing new results.
func ResetSimulationGauges() {
	DemandTotal.Set(0)
	PeakWeeklyDemand.Set(0)
	CapacityGapPercent.Set(0)
	WeeksWithShortfall.Set(0)
	PoolsTotal.Set(0)
	HeadcountNeeded.Reset()
	HeadcountAllocated.Reset()
	PoolCapacityGapPercent.Reset()
}

// Observe publishes a computed result set.
func Observe(results engine.Results, elapsed time.Duration) {
	ResetSimulationGauges()
	CalculationDurationSeconds.Observe(elapsed.Seconds())

	agg := results.Aggregate
	DemandTotal.Set(agg.TotalDemand)
	PeakWeeklyDemand.Set(agg.PeakWeeklyDemand)
	CapacityGapPercent.Set(agg.CapacityGapPercent)
	PoolsTotal.Set(float64(agg.TotalPools))

	HeadcountNeeded.WithLabelValues(RoleTalentPartner).Set(float64(agg.MaxTPsNeeded))
	HeadcountNeeded.WithLabelValues(RoleSourcer).Set(agg.MaxSourcersNeeded)
	HeadcountNeeded.WithLabelValues(RoleCoordinator).Set(float64(agg.MaxCoordinatorsNeeded))
	HeadcountAllocated.WithLabelValues(RoleTalentPartner).Set(agg.CurrentTPs)
	HeadcountAllocated.WithLabelValues(RoleSourcer).Set(agg.CurrentSourcers)

	shortWeeks := 0
	for _, w := range agg.WeeklyData {
		if !w.IsRampUp && w.Shortfall > 0 {
			shortWeeks++
		}
	}
	WeeksWithShortfall.Set(float64(shortWeeks))

	for _, p := range results.Pools {
		PoolCapacityGapPercent.WithLabelValues(p.ID, p.Name).Set(p.Result.CapacityGapPercent)
	}
}
