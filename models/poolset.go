package models

import (
	"fmt"
	"slices"
	"strconv"

	apperrors "capacity-planner/errors"
)

// PoolSet is an ordered collection of scenarios keyed by stable id.
// Updates replace by id so identity survives reordering and deletion.
// PoolSet is not safe for concurrent use.
type PoolSet struct {
	order []string
	byID  map[string]Scenario
}

// NewPoolSet builds a set from the given scenarios, keeping their order.
func NewPoolSet(scenarios ...Scenario) (*PoolSet, error) {
	ps := &PoolSet{byID: make(map[string]Scenario, len(scenarios))}
	for _, s := range scenarios {
		if err := ps.Add(s); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

// Len returns the number of pools.
func (ps *PoolSet) Len() int {
	return len(ps.order)
}

// Add appends a scenario. The id must be unique.
func (ps *PoolSet) Add(s Scenario) error {
	if ps.byID == nil {
		ps.byID = make(map[string]Scenario)
	}
	if _, exists := ps.byID[s.ID]; exists {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicatePool, s.ID)
	}
	ps.order = append(ps.order, s.ID)
	ps.byID[s.ID] = cloneScenario(s)
	return nil
}

// Get returns a copy of the scenario with the given id.
func (ps *PoolSet) Get(id string) (Scenario, bool) {
	s, ok := ps.byID[id]
	if !ok {
		return Scenario{}, false
	}
	return cloneScenario(s), true
}

// Replace swaps the stored scenario with the same id for s.
func (ps *PoolSet) Replace(s Scenario) error {
	if _, ok := ps.byID[s.ID]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPoolNotFound, s.ID)
	}
	ps.byID[s.ID] = cloneScenario(s)
	return nil
}

// Delete removes the scenario with the given id.
func (ps *PoolSet) Delete(id string) error {
	if _, ok := ps.byID[id]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPoolNotFound, id)
	}
	delete(ps.byID, id)
	ps.order = slices.DeleteFunc(ps.order, func(v string) bool { return v == id })
	return nil
}

// ReplaceAll discards every pool and loads scenarios in their place.
// On a duplicate id the set is left unchanged.
func (ps *PoolSet) ReplaceAll(scenarios []Scenario) error {
	next, err := NewPoolSet(scenarios...)
	if err != nil {
		return err
	}
	*ps = *next
	return nil
}

// List returns copies of all scenarios in insertion order.
func (ps *PoolSet) List() []Scenario {
	out := make([]Scenario, 0, len(ps.order))
	for _, id := range ps.order {
		out = append(out, cloneScenario(ps.byID[id]))
	}
	return out
}

// NextID returns one more than the largest numeric id in the set, or "1"
// when no id is numeric.
func (ps *PoolSet) NextID() string {
	highest := 0
	for _, id := range ps.order {
		if n, err := strconv.Atoi(id); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

func cloneScenario(s Scenario) Scenario {
	s.Demand = slices.Clone(s.Demand)
	return s
}
