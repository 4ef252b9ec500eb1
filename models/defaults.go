package models

// Palette is the colour tag sequence assigned to new pools.
var Palette = []string{
	"#5B28B9",
	"#F4B942",
	"#241049",
	"#8b5cf6",
	"#ec4899",
	"#10b981",
}

// ColorFor returns the palette colour for the pool at position i.
func ColorFor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// DefaultConfig returns the baseline planning assumptions: a 16 week hiring
// window after a 4 week ramp-up, one hire per TP per week and five
// concurrent pools per Sourcer.
func DefaultConfig() GlobalConfig {
	return GlobalConfig{
		HiringDuration:         16,
		RampUpWeeks:            4,
		TPCapacityPerWeek:      1,
		PoolsPerSourcer:        5,
		TotalSourcers:          Auto(1.0),
		SourcerCapacityPerWeek: 20,
		CandidatesPerHire:      4,
	}
}

// DefaultPools returns the two starter pools.
func DefaultPools() []Scenario {
	return []Scenario{
		{
			ID:             "1",
			Name:           "Engineering",
			Demand:         repeat(1, 16),
			Color:          Palette[0],
			TalentPartners: Auto(1.0),
		},
		{
			ID:             "2",
			Name:           "Sales",
			Demand:         repeat(2, 16),
			Color:          Palette[1],
			TalentPartners: Auto(1.0),
		},
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
