// Package comparison contrasts the steady-state team needed under baseline
// and target productivity levers for a fixed hiring plan.
package comparison

import (
	"math"

	"capacity-planner/engine"
	"capacity-planner/models"
)

// WeeksPerMonth converts average weekly hires to a monthly figure.
const WeeksPerMonth = 4.33

// Levers are the productivity assumptions being compared.
type Levers struct {
	TPCapacityPerWeek float64 `json:"tp_capacity_per_week" form:"tp_capacity_per_week"`
	PoolsPerSourcer   float64 `json:"pools_per_sourcer" form:"pools_per_sourcer"`
}

// BaselineLevers reads the levers from a configuration.
func BaselineLevers(cfg models.GlobalConfig) Levers {
	return Levers{TPCapacityPerWeek: cfg.TPCapacityPerWeek, PoolsPerSourcer: cfg.PoolsPerSourcer}
}

// DefaultTarget is a modest improvement over baseline: 20% more hires per
// TP and one more pool per Sourcer, capped at 15.
func DefaultTarget(baseline Levers) Levers {
	return Levers{
		TPCapacityPerWeek: baseline.TPCapacityPerWeek * 1.2,
		PoolsPerSourcer:   math.Min(15, baseline.PoolsPerSourcer+1),
	}
}

// Staff is a team size under one set of levers.
type Staff struct {
	TalentPartners int `json:"talent_partners"`
	Sourcers       int `json:"sourcers"`
	Coordinators   int `json:"coordinators"`
	Total          int `json:"total"`
}

// Result compares baseline and target staffing. StaffSaved is baseline
// total minus target total; a negative value means the target needs more.
type Result struct {
	AverageWeeklyHires  float64 `json:"average_weekly_hires"`
	AverageMonthlyHires float64 `json:"average_monthly_hires"`
	TotalPools          int     `json:"total_pools"`
	Baseline            Staff   `json:"baseline"`
	Target              Staff   `json:"target"`
	BaselineLevers      Levers  `json:"baseline_levers"`
	TargetLevers        Levers  `json:"target_levers"`
	StaffSaved          int     `json:"staff_saved"`
	ImprovementPercent  float64 `json:"improvement_percent"`
	TPCapacityChange    float64 `json:"tp_capacity_change_percent"`
	PoolsPerSourcerGain float64 `json:"pools_per_sourcer_change_percent"`
}

// Compare sizes a steady-state team for totalDemand hires spread over
// hiringDuration weeks across totalPools pools.
func Compare(totalDemand float64, hiringDuration, totalPools int, baseline, target Levers) Result {
	weekly := 0.0
	if totalDemand > 0 && hiringDuration > 0 {
		weekly = totalDemand / float64(hiringDuration)
	}

	res := Result{
		AverageWeeklyHires:  weekly,
		AverageMonthlyHires: weekly * WeeksPerMonth,
		TotalPools:          totalPools,
		Baseline:            staffFor(weekly, totalPools, baseline),
		Target:              staffFor(weekly, totalPools, target),
		BaselineLevers:      baseline,
		TargetLevers:        target,
	}
	res.StaffSaved = res.Baseline.Total - res.Target.Total
	if res.Baseline.Total > 0 {
		res.ImprovementPercent = float64(res.StaffSaved) / float64(res.Baseline.Total) * 100
	}
	res.TPCapacityChange = percentChange(baseline.TPCapacityPerWeek, target.TPCapacityPerWeek)
	res.PoolsPerSourcerGain = percentChange(baseline.PoolsPerSourcer, target.PoolsPerSourcer)
	return res
}

// FromResults compares using an aggregate result and its configuration.
func FromResults(results engine.Results, cfg models.GlobalConfig, target Levers) Result {
	agg := results.Aggregate
	return Compare(agg.TotalDemand, cfg.HiringDuration, agg.TotalPools, BaselineLevers(cfg), target)
}

func staffFor(weeklyHires float64, pools int, l Levers) Staff {
	s := Staff{}
	if l.TPCapacityPerWeek > 0 && weeklyHires > 0 {
		s.TalentPartners = int(math.Ceil(weeklyHires / l.TPCapacityPerWeek))
	}
	if l.PoolsPerSourcer > 0 && pools > 0 {
		s.Sourcers = int(math.Ceil(float64(pools) / l.PoolsPerSourcer))
	}
	s.Coordinators = (s.TalentPartners + engine.TPsPerCoordinator - 1) / engine.TPsPerCoordinator
	s.Total = s.TalentPartners + s.Sourcers + s.Coordinators
	return s
}

func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}
