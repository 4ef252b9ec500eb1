// Package engine derives weekly Talent Partner, Sourcer and Coordinator need
// for each talent pool and for the system as a whole.
//
// Every function here is pure: identical inputs give identical results, and
// non-positive throughput or ratio values yield zero need instead of a
// division by zero.
package engine

import (
	"math"

	"capacity-planner/models"
)

// TPsPerCoordinator is the fixed Coordinator staffing ratio.
const TPsPerCoordinator = 4

// Engine computes results under a sourcing and a redistribution policy.
type Engine struct {
	sourcing       SourcerPolicy
	redistribution RedistributionPolicy
}

// Option configures an Engine.
type Option func(*Engine)

// WithSourcerPolicy selects how Sourcer need is sized.
func WithSourcerPolicy(p SourcerPolicy) Option {
	return func(e *Engine) {
		if p != nil {
			e.sourcing = p
		}
	}
}

// WithRedistribution selects how stored demand maps onto the hiring window.
func WithRedistribution(p RedistributionPolicy) Option {
	return func(e *Engine) {
		if p != nil {
			e.redistribution = p
		}
	}
}

// New returns an engine using pool-concurrency sourcing and fixed-total
// redistribution unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		sourcing:       PoolConcurrency{},
		redistribution: FixedTotal{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SourcerPolicy returns the engine's sourcing policy.
func (e *Engine) SourcerPolicy() SourcerPolicy { return e.sourcing }

// RedistributionPolicy returns the engine's redistribution policy.
func (e *Engine) RedistributionPolicy() RedistributionPolicy { return e.redistribution }

var defaultEngine = New()

// ComputeScenario computes a pool's results with the default policies.
func ComputeScenario(s models.Scenario, cfg models.GlobalConfig) models.SimulationResult {
	return defaultEngine.ComputeScenario(s, cfg)
}

// Aggregate combines pool results with the default policies.
func Aggregate(results []models.SimulationResult, scenarios []models.Scenario, cfg models.GlobalConfig) models.SimulationResult {
	return defaultEngine.Aggregate(results, scenarios, cfg)
}

// ComputeScenario derives the weekly breakdown and summary for one pool in
// isolation. Ramp-up weeks carry no demand but are staffed for the first
// hiring week.
func (e *Engine) ComputeScenario(s models.Scenario, cfg models.GlobalConfig) models.SimulationResult {
	hiring := e.redistribution.Redistribute(s.Demand, cfg.HiringDuration)
	capacity := s.TalentPartners.Value * cfg.TPCapacityPerWeek
	rampUp := max(0, cfg.RampUpWeeks)

	firstWeek := 0.0
	if len(hiring) > 0 {
		firstWeek = hiring[0]
	}

	weekly := make([]models.WeeklyResult, 0, rampUp+len(hiring))
	for w := range rampUp {
		sourcers := e.sourcing.PoolSourcers(firstWeek, cfg)
		weekly = append(weekly, buildWeek(w+1, true, 0, firstWeek, capacity, sourcers, cfg))
	}
	for i, demand := range hiring {
		sourcers := e.sourcing.PoolSourcers(demand, cfg)
		weekly = append(weekly, buildWeek(rampUp+i+1, false, demand, demand, capacity, sourcers, cfg))
	}

	result := summarize(hiring, weekly, capacity)
	result.CurrentTPs = s.TalentPartners.Value
	result.CurrentSourcers = cfg.TotalSourcers.Value
	return result
}

// Aggregate builds the system-wide result. Demand adds up week by week, but
// Talent Partners form one shared pool and Sourcer need follows the number
// of concurrently active pools rather than hire volume. During ramp-up every
// pool counts as active.
//
// Demand is always taken from scenarios; results may be stale, partial or
// nil without changing the outcome.
func (e *Engine) Aggregate(results []models.SimulationResult, scenarios []models.Scenario, cfg models.GlobalConfig) models.SimulationResult {
	if len(scenarios) == 0 {
		return models.SimulationResult{WeeklyData: []models.WeeklyResult{}}
	}

	weeks := max(0, cfg.HiringDuration)
	rampUp := max(0, cfg.RampUpWeeks)
	demand := make([]float64, weeks)
	activePools := 0
	var currentTPs float64

	for _, s := range scenarios {
		currentTPs += s.TalentPartners.Value
		var poolTotal float64
		for w, d := range e.poolHiring(s, cfg) {
			if w >= weeks {
				break
			}
			demand[w] += d
			poolTotal += d
		}
		if poolTotal > 0 {
			activePools++
		}
	}

	capacity := currentTPs * cfg.TPCapacityPerWeek
	firstWeek := 0.0
	if weeks > 0 {
		firstWeek = demand[0]
	}

	weekly := make([]models.WeeklyResult, 0, cfg.TotalWeeks())
	for w := range rampUp {
		sourcers := e.sourcing.SystemSourcers(len(scenarios), firstWeek, cfg)
		weekly = append(weekly, buildWeek(w+1, true, 0, firstWeek, capacity, sourcers, cfg))
	}
	for i, d := range demand {
		sourcers := e.sourcing.SystemSourcers(activePools, d, cfg)
		weekly = append(weekly, buildWeek(rampUp+i+1, false, d, d, capacity, sourcers, cfg))
	}

	result := summarize(demand, weekly, capacity)
	result.CurrentTPs = currentTPs
	result.CurrentSourcers = cfg.TotalSourcers.Value
	result.TotalPools = len(scenarios)
	return result
}

// poolHiring returns the hiring-window demand of a scenario, redistributed
// from its own stored curve.
func (e *Engine) poolHiring(s models.Scenario, cfg models.GlobalConfig) []float64 {
	return e.redistribution.Redistribute(s.Demand, cfg.HiringDuration)
}

func buildWeek(week int, rampUp bool, demand, basis, capacity, sourcers float64, cfg models.GlobalConfig) models.WeeklyResult {
	tps := talentPartnersFor(basis, cfg.TPCapacityPerWeek)
	shortfall := 0.0
	if demand > 0 {
		shortfall = math.Max(0, (demand-capacity)/demand)
	}
	return models.WeeklyResult{
		Week:               week,
		IsRampUp:           rampUp,
		Demand:             demand,
		SourcersNeeded:     sourcers,
		TPsNeeded:          tps,
		CoordinatorsNeeded: coordinatorsFor(tps),
		Capacity:           capacity,
		Shortfall:          shortfall,
	}
}

func talentPartnersFor(basis, tpCapacity float64) int {
	if basis <= 0 || tpCapacity <= 0 {
		return 0
	}
	return int(math.Ceil(basis / tpCapacity))
}

func coordinatorsFor(tps int) int {
	if tps <= 0 {
		return 0
	}
	return (tps + TPsPerCoordinator - 1) / TPsPerCoordinator
}

// summarize fills the summary fields. Demand totals come from the hiring
// window only; headcount peaks include ramp-up rows.
func summarize(hiring []float64, weekly []models.WeeklyResult, capacity float64) models.SimulationResult {
	result := models.SimulationResult{
		WeeklyData:     weekly,
		MaxCapacity:    capacity,
		LimitingFactor: models.LimitingTalentPartners,
	}
	for _, d := range hiring {
		result.TotalDemand += d
		result.PeakWeeklyDemand = math.Max(result.PeakWeeklyDemand, d)
	}
	for _, w := range weekly {
		result.MaxTPsNeeded = max(result.MaxTPsNeeded, w.TPsNeeded)
		result.MaxSourcersNeeded = math.Max(result.MaxSourcersNeeded, w.SourcersNeeded)
		result.MaxCoordinatorsNeeded = max(result.MaxCoordinatorsNeeded, w.CoordinatorsNeeded)
	}
	if result.TotalDemand > 0 {
		gap := (result.TotalDemand - capacity*float64(len(hiring))) / result.TotalDemand * 100
		result.CapacityGapPercent = math.Max(0, gap)
	}
	return result
}
