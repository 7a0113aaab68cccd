package model

import (
	"math"
	"sort"
)

// Feature labels, fixed set of eight.
const (
	FeatureOutflowLag = "T_out-lag"
	FeatureAirTemp    = "Air Temperature"
	FeatureSolar      = "Solar Radiation"
	FeatureSeason     = "Seasonality"
	FeatureInflowTemp = "Inflow Temp"
	FeatureDischarge  = "Discharge"
	FeatureStorage    = "Storage"
	FeatureWind       = "Wind Speed"
)

type featureBaseline struct {
	name     string
	weight   int
	category FeatureCategory
}

// Baseline driver weights, summing to 100 before conditional bumps.
var importanceBaseline = []featureBaseline{
	{FeatureOutflowLag, 28, CategoryTemporal},
	{FeatureAirTemp, 18, CategoryMeteorology},
	{FeatureSolar, 14, CategoryMeteorology},
	{FeatureSeason, 12, CategoryTemporal},
	{FeatureInflowTemp, 10, CategoryHydrology},
	{FeatureDischarge, 8, CategoryHydrology},
	{FeatureStorage, 6, CategoryOperations},
	{FeatureWind, 4, CategoryMeteorology},
}

// Importance ranks the eight named drivers for the given conditions and
// adjustment. Weights start from the fixed baseline, get rule-adjusted
// bumps, and are normalized to integer percentages of their sum. The
// result is sorted by adjusted weight, descending. Pure and
// deterministic.
func Importance(c ObservedConditions, adj ScenarioAdjustment) []FeatureImportanceEntry {
	eff := adj.Apply(c)

	weights := make(map[string]int, len(importanceBaseline))
	for _, f := range importanceBaseline {
		weights[f.name] = f.weight
	}

	if math.Abs(eff.AirTemp-c.OutflowTemp) > 5 {
		weights[FeatureAirTemp] += 5
		weights[FeatureOutflowLag] -= 3
	}
	if eff.SolarRadiation > 500 {
		weights[FeatureSolar] += 4
		weights[FeatureSeason] -= 2
	}
	if eff.Discharge < 50 {
		weights[FeatureStorage] += 3
		weights[FeatureDischarge] += 2
	}
	if math.Abs(adj.DischargePercentChange) > 20 {
		weights[FeatureDischarge] += 4
	}
	if math.Abs(adj.AirTempDelta) > 3 {
		weights[FeatureAirTemp] += 3
	}
	if math.Abs(adj.StoragePercentChange) > 15 {
		weights[FeatureStorage] += 3
	}

	total := 0
	for _, w := range weights {
		total += w
	}

	type ranked struct {
		featureBaseline
		adjusted int
	}
	entries := make([]ranked, 0, len(importanceBaseline))
	for _, f := range importanceBaseline {
		entries = append(entries, ranked{f, weights[f.name]})
	}
	// Sort on the raw adjusted weight so features that round to the
	// same percentage still rank deterministically.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].adjusted > entries[j].adjusted
	})

	out := make([]FeatureImportanceEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, FeatureImportanceEntry{
			Name:              e.name,
			ImportancePercent: int(math.Round(float64(e.adjusted) * 100 / float64(total))),
			Category:          e.category,
		})
	}
	return out
}
