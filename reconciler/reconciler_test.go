package reconciler_test

import (
	"capacity-planner/curve"
	"capacity-planner/engine"
	"capacity-planner/models"
	"capacity-planner/reconciler"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatPool(id string, total float64, tps models.Pinned[float64]) models.Scenario {
	return models.Scenario{
		ID:             id,
		Name:           "Pool " + id,
		Demand:         curve.Generate(curve.Flat, 8, total),
		TalentPartners: tps,
	}
}

func eightWeeks() models.GlobalConfig {
	cfg := models.DefaultConfig()
	cfg.HiringDuration = 8
	cfg.RampUpWeeks = 2
	cfg.TPCapacityPerWeek = 1
	cfg.PoolsPerSourcer = 5
	return cfg
}

func TestSuggest(t *testing.T) {
	// 100 + 60 over 8 weeks = 20 hires/week, so the aggregate needs 20 TPs
	aggregate := models.SimulationResult{MaxTPsNeeded: 20, MaxSourcersNeeded: 1}

	tests := map[string]struct {
		scenarios        []models.Scenario
		sourcers         models.Pinned[float64]
		expectedSourcers *float64
		expectedTPs      map[string]float64
	}{
		"AllAuto": {
			scenarios: []models.Scenario{
				flatPool("1", 100, models.Auto(0.0)),
				flatPool("2", 60, models.Auto(0.0)),
			},
			sourcers:         models.Auto(3.0),
			expectedSourcers: ptr(1.0),
			expectedTPs:      map[string]float64{"1": 12.5, "2": 7.5},
		},
		"PinnedPoolSkipped": {
			scenarios: []models.Scenario{
				flatPool("1", 100, models.Manual(2.0)),
				flatPool("2", 60, models.Auto(0.0)),
			},
			sourcers:    models.Auto(1.0),
			expectedTPs: map[string]float64{"2": 7.5},
		},
		"PinnedSourcersSkipped": {
			scenarios: []models.Scenario{
				flatPool("1", 100, models.Auto(12.5)),
				flatPool("2", 60, models.Auto(7.5)),
			},
			sourcers: models.Manual(9.0),
		},
		"WithinTolerance": {
			scenarios: []models.Scenario{
				flatPool("1", 100, models.Auto(12.5005)),
				flatPool("2", 60, models.Auto(7.4995)),
			},
			sourcers: models.Auto(1.0),
		},
		"JustOutsideTolerance": {
			scenarios: []models.Scenario{
				flatPool("1", 100, models.Auto(12.502)),
				flatPool("2", 60, models.Auto(7.5)),
			},
			sourcers:    models.Auto(1.0),
			expectedTPs: map[string]float64{"1": 12.5},
		},
		"UnsetSourceCountsAsAuto": {
			scenarios: []models.Scenario{
				flatPool("1", 160, models.Pinned[float64]{Value: 3}),
			},
			sourcers:         models.Pinned[float64]{Value: 4},
			expectedSourcers: ptr(1.0),
			expectedTPs:      map[string]float64{"1": 20},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := eightWeeks()
			cfg.TotalSourcers = tc.sourcers

			plan := reconciler.Suggest(aggregate, tc.scenarios, cfg)

			assert.Equal(t, tc.expectedSourcers, plan.Sourcers)
			require.Len(t, plan.TalentPartners, len(tc.expectedTPs))
			for id, want := range tc.expectedTPs {
				assert.InDelta(t, want, plan.TalentPartners[id], 1e-9, "pool %s", id)
			}
			assert.Equal(t, len(tc.expectedTPs) == 0 && tc.expectedSourcers == nil, plan.Empty())
		})
	}
}

func TestSuggest_ZeroDemandSuggestsZero(t *testing.T) {
	scenarios := []models.Scenario{
		flatPool("1", 0, models.Auto(4.0)),
		flatPool("2", 0, models.Auto(0.0)),
	}
	plan := reconciler.Suggest(models.SimulationResult{MaxTPsNeeded: 7}, scenarios, eightWeeks())

	assert.Equal(t, map[string]float64{"1": 0}, plan.TalentPartners)
}

func TestApply(t *testing.T) {
	pools, err := models.NewPoolSet(
		flatPool("1", 100, models.Auto(0.0)),
		flatPool("2", 60, models.Manual(2.0)),
	)
	require.NoError(t, err)
	cfg := eightWeeks()

	plan := reconciler.Plan{
		Sourcers:       ptr(2.0),
		TalentPartners: map[string]float64{"1": 12.5},
	}
	require.NoError(t, reconciler.Apply(plan, pools, &cfg))

	first, _ := pools.Get("1")
	second, _ := pools.Get("2")
	assert.Equal(t, models.Auto(12.5), first.TalentPartners)
	assert.Equal(t, models.Manual(2.0), second.TalentPartners)
	assert.Equal(t, models.Auto(2.0), cfg.TotalSourcers)
	assert.Equal(t, 2, plan.Writes())
}

func TestApply_MissingPoolLeavesStateUntouched(t *testing.T) {
	pools, err := models.NewPoolSet(flatPool("1", 100, models.Auto(1.0)))
	require.NoError(t, err)
	cfg := eightWeeks()
	before := cfg

	plan := reconciler.Plan{
		Sourcers:       ptr(5.0),
		TalentPartners: map[string]float64{"1": 3, "ghost": 2},
	}
	assert.Error(t, reconciler.Apply(plan, pools, &cfg))

	got, _ := pools.Get("1")
	assert.Equal(t, 1.0, got.TalentPartners.Value)
	assert.Equal(t, before, cfg)
}

func TestStep_Converges(t *testing.T) {
	pools, err := models.NewPoolSet(
		flatPool("1", 100, models.Auto(0.0)),
		flatPool("2", 60, models.Auto(0.0)),
		flatPool("3", 12, models.Manual(1.0)),
	)
	require.NoError(t, err)
	cfg := eightWeeks()
	e := engine.New()

	passes := 0
	for ; passes < 5; passes++ {
		plan := reconciler.Step(e, pools.List(), cfg)
		if plan.Empty() {
			break
		}
		require.NoError(t, reconciler.Apply(plan, pools, &cfg))
	}

	assert.Equal(t, 1, passes, "expected a single writing pass")
	assert.True(t, reconciler.Step(e, pools.List(), cfg).Empty())
	assert.Equal(t, 1.0, cfg.TotalSourcers.Value)

	// 172 hires over 8 weeks = 21.5/week -> 22 TPs
	first, _ := pools.Get("1")
	assert.InDelta(t, 100.0/172*22, first.TalentPartners.Value, 1e-9)
	third, _ := pools.Get("3")
	assert.Equal(t, models.Manual(1.0), third.TalentPartners)
}

func TestWatched(t *testing.T) {
	base := []models.Scenario{
		flatPool("1", 100, models.Auto(1.0)),
		flatPool("2", 60, models.Auto(1.0)),
	}
	cfg := eightWeeks()
	key := reconciler.Watched(base, cfg)

	t.Run("StableForSameInputs", func(t *testing.T) {
		assert.Equal(t, key, reconciler.Watched(base, cfg))
	})

	t.Run("IgnoresTPValue", func(t *testing.T) {
		changed := clone(base)
		changed[0].TalentPartners.Value = 42
		assert.Equal(t, key, reconciler.Watched(changed, cfg))
	})

	t.Run("IgnoresSourcerValue", func(t *testing.T) {
		c := cfg
		c.TotalSourcers.Value = 9
		assert.Equal(t, key, reconciler.Watched(base, c))
	})

	t.Run("IgnoresPoolOrder", func(t *testing.T) {
		assert.Equal(t, key, reconciler.Watched([]models.Scenario{base[1], base[0]}, cfg))
	})

	t.Run("TracksWatchedInputs", func(t *testing.T) {
		mutations := map[string]func(s []models.Scenario, c *models.GlobalConfig){
			"Duration":       func(_ []models.Scenario, c *models.GlobalConfig) { c.HiringDuration = 9 },
			"RampUp":         func(_ []models.Scenario, c *models.GlobalConfig) { c.RampUpWeeks = 0 },
			"TPCapacity":     func(_ []models.Scenario, c *models.GlobalConfig) { c.TPCapacityPerWeek = 2 },
			"PoolsPerSource": func(_ []models.Scenario, c *models.GlobalConfig) { c.PoolsPerSourcer = 3 },
			"SourcerPin":     func(_ []models.Scenario, c *models.GlobalConfig) { c.TotalSourcers.Source = models.SourceManual },
			"Demand":         func(s []models.Scenario, _ *models.GlobalConfig) { s[1].Demand[0] = 99 },
			"PoolPin":        func(s []models.Scenario, _ *models.GlobalConfig) { s[0].TalentPartners.Source = models.SourceManual },
		}
		for name, mutate := range mutations {
			s := clone(base)
			c := cfg
			mutate(s, &c)
			assert.NotEqual(t, key, reconciler.Watched(s, c), name)
		}
	})
}

func clone(in []models.Scenario) []models.Scenario {
	out := make([]models.Scenario, len(in))
	for i, s := range in {
		s.Demand = append([]float64(nil), s.Demand...)
		out[i] = s
	}
	return out
}

func ptr(v float64) *float64 { return &v }
