package formatter

import (
	"capacity-planner/models"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ReportData holds prepared plan data used by all formatters
type ReportData struct {
	Summary Summary   `json:"summary"`
	Weeks   []WeekRow `json:"weeks"`
}

// Summary is the headline of a plan
type Summary struct {
	HiringWeeks           int     `json:"hiring_weeks"`
	RampUpWeeks           int     `json:"ramp_up_weeks"`
	TotalPools            int     `json:"total_pools,omitempty"`
	TotalDemand           float64 `json:"total_demand"`
	PeakWeeklyDemand      float64 `json:"peak_weekly_demand"`
	MaxTPsNeeded          int     `json:"max_tps_needed"`
	MaxSourcersNeeded     float64 `json:"max_sourcers_needed"`
	MaxCoordinatorsNeeded int     `json:"max_coordinators_needed"`
	CurrentTPs            float64 `json:"current_tps"`
	CurrentSourcers       float64 `json:"current_sourcers"`
	MaxCapacity           float64 `json:"max_capacity"`
	CapacityGapPercent    float64 `json:"capacity_gap_percent"`
	LimitingFactor        string  `json:"limiting_factor,omitempty"`
}

// WeekRow is one week of the breakdown
type WeekRow struct {
	Week               int     `json:"week"`
	RampUp             bool    `json:"ramp_up"`
	Demand             float64 `json:"demand"`
	TPsNeeded          int     `json:"tps_needed"`
	SourcersNeeded     float64 `json:"sourcers_needed"`
	CoordinatorsNeeded int     `json:"coordinators_needed"`
	Capacity           float64 `json:"capacity"`
	ShortfallPercent   float64 `json:"shortfall_percent"`
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B28B9"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ec4899"))
	rampStyle    = lipgloss.NewStyle().Faint(true)
)

// prepareReportData extracts and organizes plan data for formatting
func prepareReportData(result *models.SimulationResult, cfg models.GlobalConfig) *ReportData {
	weeks := make([]WeekRow, 0, len(result.WeeklyData))
	for _, w := range result.WeeklyData {
		weeks = append(weeks, WeekRow{
			Week:               w.Week,
			RampUp:             w.IsRampUp,
			Demand:             w.Demand,
			TPsNeeded:          w.TPsNeeded,
			SourcersNeeded:     w.SourcersNeeded,
			CoordinatorsNeeded: w.CoordinatorsNeeded,
			Capacity:           w.Capacity,
			ShortfallPercent:   round(w.Shortfall*100, 2),
		})
	}

	return &ReportData{
		Summary: Summary{
			HiringWeeks:           cfg.HiringDuration,
			RampUpWeeks:           cfg.RampUpWeeks,
			TotalPools:            result.TotalPools,
			TotalDemand:           result.TotalDemand,
			PeakWeeklyDemand:      result.PeakWeeklyDemand,
			MaxTPsNeeded:          result.MaxTPsNeeded,
			MaxSourcersNeeded:     result.MaxSourcersNeeded,
			MaxCoordinatorsNeeded: result.MaxCoordinatorsNeeded,
			CurrentTPs:            result.CurrentTPs,
			CurrentSourcers:       result.CurrentSourcers,
			MaxCapacity:           result.MaxCapacity,
			CapacityGapPercent:    round(result.CapacityGapPercent, 2),
			LimitingFactor:        result.LimitingFactor,
		},
		Weeks: weeks,
	}
}

// FormatText returns the text representation of the plan
func FormatText(result *models.SimulationResult, cfg models.GlobalConfig) string {
	data := prepareReportData(result, cfg)
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("CAPACITY PLAN (%d hiring weeks + %d ramp-up)",
		data.Summary.HiringWeeks, data.Summary.RampUpWeeks)))
	sb.WriteString("\n")
	sb.WriteString(formatSummary(data.Summary))
	sb.WriteString("\n")

	for _, week := range data.Weeks {
		line := formatTextLine(week)
		if week.RampUp {
			line = rampStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")

		// Add shortfall warning if exists
		if !week.RampUp && week.ShortfallPercent > 0 {
			sb.WriteString(warningStyle.Render(fmt.Sprintf("  ⚠️  CAPACITY WARNING: Demand=%s, Capacity=%s, Shortfall=%s%%",
				fixed(week.Demand), fixed(week.Capacity), fixed(week.ShortfallPercent))))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// FormatJSON returns the JSON representation of the plan
func FormatJSON(result *models.SimulationResult, cfg models.GlobalConfig) string {
	data := prepareReportData(result, cfg)
	jsonBytes, _ := json.MarshalIndent(data, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns the CSV representation of the weekly breakdown
func FormatCSV(result *models.SimulationResult, cfg models.GlobalConfig) string {
	data := prepareReportData(result, cfg)
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	// Write header
	writer.Write([]string{
		"Week", "Phase", "Demand", "TPs Needed", "Sourcers Needed",
		"Coordinators Needed", "Capacity", "Capacity Warning", "Shortfall %",
	})

	for _, week := range data.Weeks {
		writeWeekToCSV(writer, week)
	}

	writer.Flush()
	return sb.String()
}

// writeWeekToCSV writes a single week's data to CSV
func writeWeekToCSV(writer *csv.Writer, week WeekRow) {
	phase := "Hiring"
	warning := "No"
	shortfall := ""
	if week.RampUp {
		phase = "Ramp-up"
	} else if week.ShortfallPercent > 0 {
		warning = "Yes"
		shortfall = fixed(week.ShortfallPercent)
	}

	writer.Write([]string{
		fmt.Sprintf("W%d", week.Week),
		phase,
		fixed(week.Demand),
		fmt.Sprintf("%d", week.TPsNeeded),
		fixed(week.SourcersNeeded),
		fmt.Sprintf("%d", week.CoordinatorsNeeded),
		fixed(week.Capacity),
		warning,
		shortfall,
	})
}

// formatSummary formats the headline block
func formatSummary(s Summary) string {
	var sb strings.Builder
	if s.TotalPools > 0 {
		sb.WriteString(fmt.Sprintf("Pools: %d\n", s.TotalPools))
	}
	sb.WriteString(fmt.Sprintf("Total demand: %s ; peak weekly=%s\n", fixed(s.TotalDemand), fixed(s.PeakWeeklyDemand)))
	sb.WriteString(fmt.Sprintf("Peak needed: TPs=%d, Sourcers=%s, Coordinators=%d\n",
		s.MaxTPsNeeded, fixed(s.MaxSourcersNeeded), s.MaxCoordinatorsNeeded))
	sb.WriteString(fmt.Sprintf("Allocated: TPs=%s, Sourcers=%s ; capacity/week=%s\n",
		fixed(s.CurrentTPs), fixed(s.CurrentSourcers), fixed(s.MaxCapacity)))

	gap := fmt.Sprintf("Capacity gap: %s%%", fixed(s.CapacityGapPercent))
	if s.LimitingFactor != "" {
		gap += fmt.Sprintf(" (limited by %s)", s.LimitingFactor)
	}
	if s.CapacityGapPercent > 0 {
		gap = warningStyle.Render(gap)
	}
	sb.WriteString(gap)
	sb.WriteString("\n")
	return sb.String()
}

// formatTextLine formats a single week line for text output
func formatTextLine(week WeekRow) string {
	if week.RampUp {
		return fmt.Sprintf("W%d [ramp] : TPs=%d, Sourcers=%s, Coordinators=%d",
			week.Week, week.TPsNeeded, fixed(week.SourcersNeeded), week.CoordinatorsNeeded)
	}
	return fmt.Sprintf("W%d : demand=%s ; TPs=%d, Sourcers=%s, Coordinators=%d, capacity=%s",
		week.Week, fixed(week.Demand), week.TPsNeeded, fixed(week.SourcersNeeded),
		week.CoordinatorsNeeded, fixed(week.Capacity))
}

// fixed renders a value with one decimal place
func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
