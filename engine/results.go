package engine

import "capacity-planner/models"

// PoolResult is one pool's computed result.
type PoolResult struct {
	ID     string                  `json:"id"`
	Name   string                  `json:"name"`
	Color  string                  `json:"color"`
	Result models.SimulationResult `json:"result"`
}

// Results is everything derived from one (pools, config) pair.
type Results struct {
	Pools     []PoolResult            `json:"pools"`
	Aggregate models.SimulationResult `json:"aggregate"`
}

// Compute runs the calculator once per pool and then aggregates.
func (e *Engine) Compute(scenarios []models.Scenario, cfg models.GlobalConfig) Results {
	pools := make([]PoolResult, 0, len(scenarios))
	perPool := make([]models.SimulationResult, 0, len(scenarios))
	for _, s := range scenarios {
		r := e.ComputeScenario(s, cfg)
		perPool = append(perPool, r)
		pools = append(pools, PoolResult{ID: s.ID, Name: s.Name, Color: s.Color, Result: r})
	}
	return Results{
		Pools:     pools,
		Aggregate: e.Aggregate(perPool, scenarios, cfg),
	}
}

// Pool returns the result for the pool with the given id.
func (r Results) Pool(id string) (PoolResult, bool) {
	for _, p := range r.Pools {
		if p.ID == id {
			return p, true
		}
	}
	return PoolResult{}, false
}
