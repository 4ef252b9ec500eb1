package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	customerrors "capacity-planner/errors"
	"capacity-planner/models"
	"capacity-planner/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	const duration = 4

	tests := map[string]struct {
		input         string
		expectedData  []models.Scenario
		expectedError error
	}{
		"ValidInput_SingleTotal": {
			input: `
Engineering, 2, manual, 8
`,
			expectedData: []models.Scenario{
				{
					ID:             "1",
					Name:           "Engineering",
					Demand:         []float64{2, 2, 2, 2},
					Color:          models.Palette[0],
					TalentPartners: models.Manual(2.0),
				},
			},
			expectedError: nil,
		},
		"ValidInput_WeeklyCurve_WithComments": {
			input: `
# This is a comment
# Name, TalentPartners, Source, Week1, Week2, Week3
Sales, 1, auto, 1, 2, 3
Ops, 0, , 4, 4
`,
			expectedData: []models.Scenario{
				{
					ID:             "1",
					Name:           "Sales",
					Demand:         []float64{1, 2, 3},
					Color:          models.Palette[0],
					TalentPartners: models.Auto(1.0),
				},
				{
					ID:             "2",
					Name:           "Ops",
					Demand:         []float64{4, 4},
					Color:          models.Palette[1],
					TalentPartners: models.Auto(0.0),
				},
			},
			expectedError: nil,
		},
		"ValidInput_LinearHeader": {
			input: `
#Name, TalentPartners, Source, TotalLinear
Ramp, 0, AUTO, 10
#Name, TalentPartners, Source, TotalFlat
Steady, 0, auto, 12
`,
			expectedData: []models.Scenario{
				{
					ID:             "1",
					Name:           "Ramp",
					Demand:         []float64{1, 2, 3, 4},
					Color:          models.Palette[0],
					TalentPartners: models.Auto(0.0),
				},
				{
					ID:             "2",
					Name:           "Steady",
					Demand:         []float64{3, 3, 3, 3},
					Color:          models.Palette[1],
					TalentPartners: models.Auto(0.0),
				},
			},
			expectedError: nil,
		},
		"Error_InvalidFieldCount": {
			input: `
Engineering, 2, auto
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidFieldCount,
		},
		"Error_EmptyName": {
			input: `
"", 2, auto, 8
`,
			expectedData:  nil,
			expectedError: customerrors.ErrEmptyName,
		},
		"Error_InvalidTalentPartners": {
			input: `
Engineering, two, auto, 8
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidTalentPartners,
		},
		"Error_NegativeTalentPartners": {
			input: `
Engineering, -1, auto, 8
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidTalentPartners,
		},
		"Error_InvalidSource": {
			input: `
Engineering, 2, pinned, 8
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidSource,
		},
		"Error_InvalidDemand": {
			input: `
Engineering, 2, auto, lots
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidDemand,
		},
		"Error_NegativeDemand": {
			input: `
Engineering, 2, auto, 2, -1
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidDemand,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := strings.NewReader(strings.TrimSpace(tt.input))
			got, err := parser.Parse(r, duration)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("Parse() error = %v, expectedError %v", err, tt.expectedError)
				}
				return
			}

			if err != nil {
				t.Errorf("Parse() unexpected error = %v", err)
				return
			}

			assert.Equal(t, tt.expectedData, got, fmt.Sprintf("Parse() = %v, want %v", got, tt.expectedData))
		})
	}
}

func TestParse_ErrorLine(t *testing.T) {
	input := "# header\nEngineering, 1, auto, 4\nSales, 1, auto, nope\n"

	_, err := parser.Parse(strings.NewReader(input), 4)

	var pe *customerrors.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, "Sales", pe.Record[0])
}

func TestParsePlan(t *testing.T) {
	input := `
config:
  hiring_duration: 4
  ramp_up_weeks: 2
  pools_per_sourcer: 3
  total_sourcers:
    value: 2
    source: manual
pools:
  - name: Engineering
    total: 10
    curve: linear
    talent_partners:
      value: 3
      source: manual
  - id: sales
    name: Sales
    color: "#000000"
    demand: [1, 1, 2]
  - name: Empty
`
	plan, err := parser.ParsePlan(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 4, plan.Config.HiringDuration)
	assert.Equal(t, 2, plan.Config.RampUpWeeks)
	assert.Equal(t, 3.0, plan.Config.PoolsPerSourcer)
	// fields left out keep their defaults
	assert.Equal(t, 1.0, plan.Config.TPCapacityPerWeek)
	assert.Equal(t, models.Manual(2.0), plan.Config.TotalSourcers)

	require.Len(t, plan.Pools, 3)
	eng := plan.Pools[0]
	assert.Equal(t, "1", eng.ID)
	assert.Equal(t, []float64{1, 2, 3, 4}, eng.Demand)
	assert.Equal(t, models.Palette[0], eng.Color)
	assert.Equal(t, models.Manual(3.0), eng.TalentPartners)

	sales := plan.Pools[1]
	assert.Equal(t, "sales", sales.ID)
	assert.Equal(t, "#000000", sales.Color)
	assert.Equal(t, []float64{1, 1, 2}, sales.Demand)
	assert.Equal(t, models.Auto(0.0), sales.TalentPartners)

	assert.Equal(t, []float64{0, 0, 0, 0}, plan.Pools[2].Demand)
}

func TestParsePlan_Defaults(t *testing.T) {
	plan, err := parser.ParsePlan(strings.NewReader("pools: []\n"))
	require.NoError(t, err)

	assert.Equal(t, models.DefaultConfig(), plan.Config)
	assert.Empty(t, plan.Pools)
}

func TestParsePlan_Errors(t *testing.T) {
	tests := map[string]struct {
		input         string
		expectedError error
	}{
		"Error_Malformed": {
			input:         "pools: [",
			expectedError: customerrors.ErrInvalidPlan,
		},
		"Error_EmptyName": {
			input:         "pools:\n  - total: 4\n",
			expectedError: customerrors.ErrEmptyName,
		},
		"Error_DuplicateID": {
			input:         "pools:\n  - id: a\n    name: A\n  - id: a\n    name: B\n",
			expectedError: customerrors.ErrDuplicatePool,
		},
		"Error_NegativeTotal": {
			input:         "pools:\n  - name: A\n    total: -3\n",
			expectedError: customerrors.ErrInvalidDemand,
		},
		"Error_UnknownSource": {
			input:         "pools:\n  - name: A\n    talent_partners: {value: 1, source: pinned}\n",
			expectedError: customerrors.ErrInvalidSource,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parser.ParsePlan(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.expectedError)
			assert.ErrorIs(t, err, customerrors.ErrInvalidPlan)
		})
	}
}
