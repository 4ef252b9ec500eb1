package parser

import (
	"capacity-planner/curve"
	"capacity-planner/errors"
	"capacity-planner/models"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Plan is a complete planning input: assumptions plus pools.
type Plan struct {
	Config models.GlobalConfig
	Pools  []models.Scenario
}

type planFile struct {
	Config *models.GlobalConfig `yaml:"config"`
	Pools  []poolEntry          `yaml:"pools"`
}

// poolEntry is a pool as written in a plan file. Either demand (a weekly
// curve) or total (spread by curve over the hiring window) is given.
type poolEntry struct {
	ID             string                  `yaml:"id"`
	Name           string                  `yaml:"name"`
	Color          string                  `yaml:"color"`
	Demand         []float64               `yaml:"demand"`
	Total          *float64                `yaml:"total"`
	Curve          string                  `yaml:"curve"`
	TalentPartners *models.Pinned[float64] `yaml:"talent_partners"`
}

// ParsePlan reads a YAML plan. A missing config section uses
// models.DefaultConfig; missing config fields keep their defaults. The config
// is clamped into its editable ranges before totals are spread.
func ParsePlan(r io.Reader) (Plan, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Plan{}, fmt.Errorf("error reading plan: %w", err)
	}

	cfg := models.DefaultConfig()
	file := planFile{Config: &cfg}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", errors.ErrInvalidPlan, err)
	}
	if file.Config == nil {
		file.Config = &cfg
	}
	plan := Plan{Config: file.Config.Clamp()}

	seen := make(map[string]bool, len(file.Pools))
	for i, entry := range file.Pools {
		s, err := entry.scenario(i, plan.Config.HiringDuration)
		if err != nil {
			return Plan{}, fmt.Errorf("%w: pool %d: %w", errors.ErrInvalidPlan, i+1, err)
		}
		if seen[s.ID] {
			return Plan{}, fmt.Errorf("%w: pool %d: %w: %s", errors.ErrInvalidPlan, i+1, errors.ErrDuplicatePool, s.ID)
		}
		seen[s.ID] = true
		plan.Pools = append(plan.Pools, s)
	}
	return plan, nil
}

func (p poolEntry) scenario(index, hiringDuration int) (models.Scenario, error) {
	s := models.Scenario{
		ID:             p.ID,
		Name:           p.Name,
		Color:          p.Color,
		TalentPartners: models.Auto(0.0),
	}
	if s.ID == "" {
		s.ID = strconv.Itoa(index + 1)
	}
	if s.Name == "" {
		return s, errors.ErrEmptyName
	}
	if s.Color == "" {
		s.Color = models.ColorFor(index)
	}
	if p.TalentPartners != nil {
		s.TalentPartners = *p.TalentPartners
		switch s.TalentPartners.Source {
		case "":
			s.TalentPartners.Source = models.SourceAuto
		case models.SourceAuto, models.SourceManual:
		default:
			return s, fmt.Errorf("%w: %q", errors.ErrInvalidSource, s.TalentPartners.Source)
		}
	}

	switch {
	case len(p.Demand) > 0:
		s.Demand = append([]float64(nil), p.Demand...)
	case p.Total != nil:
		shape, err := curve.ParseShape(p.Curve)
		if err != nil {
			return s, err
		}
		if *p.Total < 0 {
			return s, fmt.Errorf("%w: total %v", errors.ErrInvalidDemand, *p.Total)
		}
		s.Demand = curve.Generate(shape, hiringDuration, *p.Total)
	default:
		s.Demand = curve.Generate(curve.Flat, hiringDuration, 0)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
