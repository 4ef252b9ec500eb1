// Package models holds the data shared by the capacity planner packages:
// talent pools, global resourcing assumptions and the derived weekly and
// summary results.
package models

import (
	"math"

	apperrors "capacity-planner/errors"

	"github.com/go-playground/validator/v10"
)

// LimitingTalentPartners is the binding-constraint label reported by the
// current staffing model for both pool and aggregate results.
const LimitingTalentPartners = "Talent Partners"

// Source records who last set an editable headcount value.
type Source string

const (
	// SourceAuto marks a value written by the reconciler.
	SourceAuto Source = "auto"
	// SourceManual marks a value pinned by a user.
	SourceManual Source = "manual"
)

// Pinned is a headcount field that is either suggested by the reconciler or
// pinned by a user. Manual values are never overwritten automatically.
type Pinned[T any] struct {
	Value  T      `json:"value" yaml:"value" mapstructure:"value"`
	Source Source `json:"source" yaml:"source" mapstructure:"source"`
}

// Auto returns an unpinned value.
func Auto[T any](v T) Pinned[T] {
	return Pinned[T]{Value: v, Source: SourceAuto}
}

// Manual returns a user-pinned value.
func Manual[T any](v T) Pinned[T] {
	return Pinned[T]{Value: v, Source: SourceManual}
}

// IsManual reports whether the value is excluded from automatic updates.
// An empty source counts as auto.
func (p Pinned[T]) IsManual() bool {
	return p.Source == SourceManual
}

// Scenario is one talent pool: a hiring initiative with its own weekly
// demand curve and allocated Talent Partner headcount.
type Scenario struct {
	ID             string          `json:"id" yaml:"id" validate:"required"`
	Name           string          `json:"name" yaml:"name"`
	Demand         []float64       `json:"demand" yaml:"demand" validate:"dive,gte=0"`
	Color          string          `json:"color" yaml:"color"`
	TalentPartners Pinned[float64] `json:"talent_partners" yaml:"talent_partners"`
}

// TotalDemand returns the fixed hiring target of the pool, the sum of its
// stored demand curve.
func (s Scenario) TotalDemand() float64 {
	var total float64
	for _, d := range s.Demand {
		total += d
	}
	return total
}

// Validate checks the scenario's struct constraints.
func (s *Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if s.TalentPartners.Value < 0 || math.IsNaN(s.TalentPartners.Value) {
		return apperrors.ErrNegativeHeadcount
	}
	return nil
}

// GlobalConfig holds the resourcing assumptions shared by every pool.
type GlobalConfig struct {
	// HiringDuration is the number of weeks demand is active.
	HiringDuration int `json:"hiring_duration" yaml:"hiring_duration" mapstructure:"hiring_duration" validate:"gt=0"`
	// RampUpWeeks precede hiring; resourcing must already be staffed.
	RampUpWeeks int `json:"ramp_up_weeks" yaml:"ramp_up_weeks" mapstructure:"ramp_up_weeks" validate:"gte=0"`
	// TPCapacityPerWeek is hires closed per Talent Partner per week.
	TPCapacityPerWeek float64 `json:"tp_capacity_per_week" yaml:"tp_capacity_per_week" mapstructure:"tp_capacity_per_week" validate:"gt=0"`
	// PoolsPerSourcer is how many pools one Sourcer services concurrently.
	PoolsPerSourcer float64         `json:"pools_per_sourcer" yaml:"pools_per_sourcer" mapstructure:"pools_per_sourcer" validate:"gt=0"`
	TotalSourcers   Pinned[float64] `json:"total_sourcers" yaml:"total_sourcers" mapstructure:"total_sourcers"`

	// Only read by the candidate-throughput sourcing policy.
	SourcerCapacityPerWeek float64 `json:"sourcer_capacity_per_week,omitempty" yaml:"sourcer_capacity_per_week,omitempty" mapstructure:"sourcer_capacity_per_week" validate:"gte=0"`
	CandidatesPerHire      float64 `json:"candidates_per_hire,omitempty" yaml:"candidates_per_hire,omitempty" mapstructure:"candidates_per_hire" validate:"gte=0"`
}

// TotalWeeks is the full timeline length: ramp-up plus hiring weeks.
// Negative fields count as zero.
func (c GlobalConfig) TotalWeeks() int {
	return max(0, c.RampUpWeeks) + max(0, c.HiringDuration)
}

// Validate checks the configuration's struct constraints.
func (c *GlobalConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.TotalSourcers.Value < 0 || math.IsNaN(c.TotalSourcers.Value) {
		return apperrors.ErrNegativeHeadcount
	}
	return nil
}

// Editing-boundary ranges.
const (
	MinHiringDuration    = 1
	MaxHiringDuration    = 52
	MaxRampUpWeeks       = 12
	MinTPCapacityPerWeek = 0.1
	MaxTPCapacityPerWeek = 5
	MinPoolsPerSourcer   = 1
	MaxPoolsPerSourcer   = 50

	fallbackDuration = 12
)

// Clamp returns a copy of the configuration forced into the ranges accepted
// by the editing surface. A non-positive duration falls back to 12 weeks.
func (c GlobalConfig) Clamp() GlobalConfig {
	out := c
	if out.HiringDuration <= 0 {
		out.HiringDuration = fallbackDuration
	}
	out.HiringDuration = min(MaxHiringDuration, max(MinHiringDuration, out.HiringDuration))
	out.RampUpWeeks = min(MaxRampUpWeeks, max(0, out.RampUpWeeks))
	out.TPCapacityPerWeek = clampFloat(out.TPCapacityPerWeek, MinTPCapacityPerWeek, MaxTPCapacityPerWeek)
	out.PoolsPerSourcer = clampFloat(out.PoolsPerSourcer, MinPoolsPerSourcer, MaxPoolsPerSourcer)
	out.TotalSourcers.Value = nonNegative(out.TotalSourcers.Value)
	out.SourcerCapacityPerWeek = nonNegative(out.SourcerCapacityPerWeek)
	out.CandidatesPerHire = nonNegative(out.CandidatesPerHire)
	if out.TotalSourcers.Source == "" {
		out.TotalSourcers.Source = SourceAuto
	}
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// WeeklyResult is one row of the full timeline.
type WeeklyResult struct {
	Week               int     `json:"week"`
	IsRampUp           bool    `json:"is_ramp_up"`
	Demand             float64 `json:"demand"`
	SourcersNeeded     float64 `json:"sourcers_needed"`
	TPsNeeded          int     `json:"tps_needed"`
	CoordinatorsNeeded int     `json:"coordinators_needed"`
	Capacity           float64 `json:"capacity"`
	// Shortfall is the fraction of the week's demand that exceeds capacity.
	Shortfall float64 `json:"shortfall"`
}

// SimulationResult summarises one pool or the whole system.
type SimulationResult struct {
	TotalDemand           float64        `json:"total_demand"`
	PeakWeeklyDemand      float64        `json:"peak_weekly_demand"`
	MaxTPsNeeded          int            `json:"max_tps_needed"`
	MaxSourcersNeeded     float64        `json:"max_sourcers_needed"`
	MaxCoordinatorsNeeded int            `json:"max_coordinators_needed"`
	CapacityGapPercent    float64        `json:"capacity_gap_percent"`
	WeeklyData            []WeeklyResult `json:"weekly_data"`
	CurrentTPs            float64        `json:"current_tps"`
	CurrentSourcers       float64        `json:"current_sourcers"`
	MaxCapacity           float64        `json:"max_capacity"`
	LimitingFactor        string         `json:"limiting_factor"`
	// TotalPools is only set on aggregate results.
	TotalPools int `json:"total_pools"`
}

var validate = validator.New()
