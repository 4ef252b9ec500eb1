package formatter_test

import (
	"capacity-planner/engine"
	"capacity-planner/formatter"
	"capacity-planner/models"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// defaultPlan is the two starter pools at 1 TP each: 3 hires/week against
// 2 hires/week of capacity.
func defaultPlan() *models.SimulationResult {
	res := engine.New().Compute(models.DefaultPools(), models.DefaultConfig()).Aggregate
	return &res
}

func engineeringOnly() *models.SimulationResult {
	res := engine.ComputeScenario(models.DefaultPools()[0], models.DefaultConfig())
	return &res
}

func TestFormatText(t *testing.T) {
	tests := map[string]struct {
		result      *models.SimulationResult
		contains    []string
		notContains []string
	}{
		"EmptyPlan": {
			result: &models.SimulationResult{WeeklyData: []models.WeeklyResult{}},
			contains: []string{
				"CAPACITY PLAN (16 hiring weeks + 4 ramp-up)",
				"Total demand: 0.0 ; peak weekly=0.0",
				"Capacity gap: 0.0%",
			},
			notContains: []string{"CAPACITY WARNING", "Pools:"},
		},
		"DefaultPlan": {
			result: defaultPlan(),
			contains: []string{
				"Pools: 2",
				"Total demand: 48.0 ; peak weekly=3.0",
				"Peak needed: TPs=3, Sourcers=1.0, Coordinators=1",
				"Allocated: TPs=2.0, Sourcers=1.0 ; capacity/week=2.0",
				"Capacity gap: 33.3% (limited by Talent Partners)",
				"W1 [ramp] : TPs=3, Sourcers=1.0, Coordinators=1",
				"W5 : demand=3.0 ; TPs=3, Sourcers=1.0, Coordinators=1, capacity=2.0",
				"⚠️  CAPACITY WARNING: Demand=3.0, Capacity=2.0, Shortfall=33.3%",
				"W20 : demand=3.0",
			},
		},
		"FullyStaffed": {
			result: engineeringOnly(),
			contains: []string{
				"W5 : demand=1.0 ; TPs=1, Sourcers=0.2, Coordinators=1, capacity=1.0",
				"Capacity gap: 0.0% (limited by Talent Partners)",
			},
			notContains: []string{"CAPACITY WARNING", "Pools:"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			output := formatter.FormatText(tt.result, models.DefaultConfig())
			for _, s := range tt.contains {
				assert.Contains(t, output, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, output, s)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	tests := map[string]struct {
		result   *models.SimulationResult
		contains []string
	}{
		"EmptyPlan": {
			result: &models.SimulationResult{WeeklyData: []models.WeeklyResult{}},
			contains: []string{
				`"hiring_weeks": 16`,
				`"total_demand": 0`,
				`"weeks": []`,
			},
		},
		"DefaultPlan": {
			result: defaultPlan(),
			contains: []string{
				`"total_pools": 2`,
				`"max_tps_needed": 3`,
				`"capacity_gap_percent": 33.33`,
				`"ramp_up": true`,
				`"shortfall_percent": 33.33`,
				`"limiting_factor": "Talent Partners"`,
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			output := formatter.FormatJSON(tt.result, models.DefaultConfig())
			for _, s := range tt.contains {
				assert.Contains(t, output, s)
			}
		})
	}
}

func TestFormatCSV(t *testing.T) {
	header := "Week,Phase,Demand,TPs Needed,Sourcers Needed,Coordinators Needed,Capacity,Capacity Warning,Shortfall %"

	tests := map[string]struct {
		result   *models.SimulationResult
		rows     int
		contains []string
	}{
		"EmptyPlan": {
			result: &models.SimulationResult{WeeklyData: []models.WeeklyResult{}},
			rows:   0,
		},
		"DefaultPlan": {
			result: defaultPlan(),
			rows:   20,
			contains: []string{
				"W1,Ramp-up,0.0,3,1.0,1,2.0,No,",
				"W5,Hiring,3.0,3,1.0,1,2.0,Yes,33.3",
			},
		},
		"FullyStaffed": {
			result: engineeringOnly(),
			rows:   20,
			contains: []string{
				"W5,Hiring,1.0,1,0.2,1,1.0,No,",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			output := formatter.FormatCSV(tt.result, models.DefaultConfig())
			lines := strings.Split(strings.TrimSpace(output), "\n")

			// Check header
			assert.Equal(t, header, lines[0])
			assert.Len(t, lines, tt.rows+1)

			for _, s := range tt.contains {
				assert.Contains(t, output, s)
			}
		})
	}
}
