// Package reconciler keeps the editable headcount fields in line with the
// engine's suggestions. Fields pinned by a user are never touched.
//
// A pass is split in two: Suggest works out the writes from an aggregate
// result, Apply performs them as one batch. The caller re-runs the pass
// whenever a watched input changes (see Watched) until Suggest returns an
// empty plan.
package reconciler

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"capacity-planner/engine"
	"capacity-planner/models"
)

// Tolerance is the smallest TP difference worth writing back.
const Tolerance = 0.001

// Plan is the set of writes produced by one reconciliation pass.
type Plan struct {
	// Sourcers is the new global Sourcer total, or nil to leave it as is.
	Sourcers *float64
	// TalentPartners maps pool id to its new suggested TP headcount.
	TalentPartners map[string]float64
}

// Empty reports whether the plan writes nothing.
func (p Plan) Empty() bool {
	return p.Sourcers == nil && len(p.TalentPartners) == 0
}

// Writes counts the fields the plan changes.
func (p Plan) Writes() int {
	n := len(p.TalentPartners)
	if p.Sourcers != nil {
		n++
	}
	return n
}

// Suggest compares the unpinned fields against the aggregate result.
// The Sourcer total follows the aggregate's peak Sourcer need. Each pool's
// TPs follow its share of total demand times the aggregate's peak TP need.
func Suggest(aggregate models.SimulationResult, scenarios []models.Scenario, cfg models.GlobalConfig) Plan {
	plan := Plan{}

	if !cfg.TotalSourcers.IsManual() && cfg.TotalSourcers.Value != aggregate.MaxSourcersNeeded {
		v := aggregate.MaxSourcersNeeded
		plan.Sourcers = &v
	}

	var totalDemand float64
	for _, s := range scenarios {
		totalDemand += s.TotalDemand()
	}

	for _, s := range scenarios {
		if s.TalentPartners.IsManual() {
			continue
		}
		suggested := 0.0
		if totalDemand > 0 {
			suggested = s.TotalDemand() / totalDemand * float64(aggregate.MaxTPsNeeded)
		}
		if math.Abs(suggested-s.TalentPartners.Value) > Tolerance {
			if plan.TalentPartners == nil {
				plan.TalentPartners = make(map[string]float64)
			}
			plan.TalentPartners[s.ID] = suggested
		}
	}
	return plan
}

// Step recomputes the aggregate with e and suggests the resulting writes.
func Step(e *engine.Engine, scenarios []models.Scenario, cfg models.GlobalConfig) Plan {
	return Suggest(e.Compute(scenarios, cfg).Aggregate, scenarios, cfg)
}

// Apply performs every write in the plan. Written values are marked auto.
// Pool writes are applied to a copy and swapped in together, so a missing
// pool leaves pools and cfg unchanged.
func Apply(plan Plan, pools *models.PoolSet, cfg *models.GlobalConfig) error {
	next := pools.List()
	for id := range plan.TalentPartners {
		if _, ok := pools.Get(id); !ok {
			return fmt.Errorf("apply reconciliation: pool %s vanished", id)
		}
	}
	for i := range next {
		if v, ok := plan.TalentPartners[next[i].ID]; ok {
			next[i].TalentPartners = models.Auto(v)
		}
	}
	if err := pools.ReplaceAll(next); err != nil {
		return err
	}
	if plan.Sourcers != nil {
		cfg.TotalSourcers = models.Auto(*plan.Sourcers)
	}
	return nil
}

// Watched fingerprints the inputs whose change triggers a pass: the window
// and ramp-up lengths, throughput and ratio settings, the Sourcer pin, and
// each pool's demand curve and TP pin.
func Watched(scenarios []models.Scenario, cfg models.GlobalConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "d=%d;r=%d;tp=%g;pps=%g;scp=%g;cph=%g;src=%s",
		cfg.HiringDuration, cfg.RampUpWeeks, cfg.TPCapacityPerWeek, cfg.PoolsPerSourcer,
		cfg.SourcerCapacityPerWeek, cfg.CandidatesPerHire, pinOf(cfg.TotalSourcers.Source))

	ids := make([]string, 0, len(scenarios))
	byID := make(map[string]models.Scenario, len(scenarios))
	for _, s := range scenarios {
		ids = append(ids, s.ID)
		byID[s.ID] = s
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := byID[id]
		fmt.Fprintf(&sb, "|%s:%s:%v", id, pinOf(s.TalentPartners.Source), s.Demand)
	}
	return sb.String()
}

func pinOf(src models.Source) models.Source {
	if src == models.SourceManual {
		return src
	}
	return models.SourceAuto
}
