package engine

import (
	"fmt"
	"math"
	"strings"

	"capacity-planner/curve"
	apperrors "capacity-planner/errors"
	"capacity-planner/models"

	"github.com/shopspring/decimal"
)

// SourcerPolicy sizes Sourcer headcount for a pool week and for a system week.
type SourcerPolicy interface {
	Name() string
	// PoolSourcers returns one pool's Sourcer need for a week with the given
	// resource basis (hires to be staffed for).
	PoolSourcers(basis float64, cfg models.GlobalConfig) float64
	// SystemSourcers returns the shared Sourcer need for a week in which
	// activePools pools are live and demand is the summed resource basis.
	SystemSourcers(activePools int, demand float64, cfg models.GlobalConfig) float64
}

// RedistributionPolicy maps a pool's stored demand curve onto the current
// hiring window.
type RedistributionPolicy interface {
	Name() string
	Redistribute(demand []float64, weeks int) []float64
}

// PoolConcurrency sizes Sourcers by how many pools run at once: each pool
// claims 1/PoolsPerSourcer of a Sourcer, and the system needs
// ceil(activePools / PoolsPerSourcer).
type PoolConcurrency struct{}

func (PoolConcurrency) Name() string { return "pool-concurrency" }

func (PoolConcurrency) PoolSourcers(basis float64, cfg models.GlobalConfig) float64 {
	if basis <= 0 || cfg.PoolsPerSourcer <= 0 {
		return 0
	}
	return roundTenths(1 / cfg.PoolsPerSourcer)
}

func (PoolConcurrency) SystemSourcers(activePools int, _ float64, cfg models.GlobalConfig) float64 {
	if activePools <= 0 || cfg.PoolsPerSourcer <= 0 {
		return 0
	}
	return math.Ceil(float64(activePools) / cfg.PoolsPerSourcer)
}

// CandidateThroughput sizes Sourcers by candidate volume:
// ceil(hires * CandidatesPerHire / SourcerCapacityPerWeek).
type CandidateThroughput struct{}

func (CandidateThroughput) Name() string { return "candidate-throughput" }

func (CandidateThroughput) PoolSourcers(basis float64, cfg models.GlobalConfig) float64 {
	return candidateSourcers(basis, cfg)
}

func (CandidateThroughput) SystemSourcers(_ int, demand float64, cfg models.GlobalConfig) float64 {
	return candidateSourcers(demand, cfg)
}

func candidateSourcers(hires float64, cfg models.GlobalConfig) float64 {
	if hires <= 0 || cfg.SourcerCapacityPerWeek <= 0 {
		return 0
	}
	return math.Ceil(hires * cfg.CandidatesPerHire / cfg.SourcerCapacityPerWeek)
}

// FixedTotal keeps a pool's total hiring target when the window changes
// length and spreads it evenly over the new window.
type FixedTotal struct{}

func (FixedTotal) Name() string { return "fixed-total" }

func (FixedTotal) Redistribute(demand []float64, weeks int) []float64 {
	var total float64
	for _, d := range demand {
		total += d
	}
	return curve.Generate(curve.Flat, weeks, total)
}

// Truncate keeps the stored weekly values, cutting the curve when the
// window shrinks and padding with zero weeks when it grows.
type Truncate struct{}

func (Truncate) Name() string { return "truncate" }

func (Truncate) Redistribute(demand []float64, weeks int) []float64 {
	if weeks <= 0 {
		return []float64{}
	}
	out := make([]float64, weeks)
	copy(out, demand)
	return out
}

// SourcerPolicyByName resolves a sourcing policy name.
func SourcerPolicyByName(name string) (SourcerPolicy, error) {
	for _, p := range []SourcerPolicy{PoolConcurrency{}, CandidateThroughput{}} {
		if strings.EqualFold(p.Name(), strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: sourcer policy %q", apperrors.ErrUnknownPolicy, name)
}

// RedistributionByName resolves a redistribution policy name.
func RedistributionByName(name string) (RedistributionPolicy, error) {
	for _, p := range []RedistributionPolicy{FixedTotal{}, Truncate{}} {
		if strings.EqualFold(p.Name(), strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: redistribution policy %q", apperrors.ErrUnknownPolicy, name)
}

// PolicyNames lists the accepted policy names, sourcing first.
func PolicyNames() (sourcing, redistribution []string) {
	sourcing = []string{PoolConcurrency{}.Name(), CandidateThroughput{}.Name()}
	redistribution = []string{FixedTotal{}.Name(), Truncate{}.Name()}
	return sourcing, redistribution
}

func roundTenths(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}
