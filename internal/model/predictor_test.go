package model

import (
	"math"
	"testing"
	"time"
)

// A Sunday, so the weekday seasonal harmonic is exactly zero and the
// reference values below are pinned.
var sunday = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func referenceConditions() ObservedConditions {
	return ObservedConditions{
		OutflowTemp:    18.5,
		InflowTemp:     16.2,
		Discharge:      142.5,
		Storage:        285.3,
		AirTemp:        22.8,
		SolarRadiation: 425,
		WindSpeed:      3.2,
		Humidity:       65,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPredictReferenceScenario(t *testing.T) {
	p := NewPredictor(SeasonalityWeekday)
	res := p.Predict(referenceConditions(), ScenarioAdjustment{}, Horizon1, sunday)

	if !almostEqual(res.PredictedTemp, 17.3) {
		t.Errorf("PredictedTemp = %v, want 17.3", res.PredictedTemp)
	}
	if !almostEqual(res.ChangeFromBaseline, -1.2) {
		t.Errorf("ChangeFromBaseline = %v, want -1.2", res.ChangeFromBaseline)
	}
	if !almostEqual(res.MAEProxy, 0.6) {
		t.Errorf("MAEProxy = %v, want 0.6", res.MAEProxy)
	}
	if res.R2Proxy != 0.94 {
		t.Errorf("R2Proxy = %v, want 0.94", res.R2Proxy)
	}
	if res.ConfidencePercent != 82 {
		t.Errorf("ConfidencePercent = %d, want 82", res.ConfidencePercent)
	}
	if !almostEqual(res.LowerBound, 16.7) {
		t.Errorf("LowerBound = %v, want 16.7", res.LowerBound)
	}
	if !almostEqual(res.UpperBound, 17.9) {
		t.Errorf("UpperBound = %v, want 17.9", res.UpperBound)
	}
}

func TestPredictContractAllHorizons(t *testing.T) {
	p := NewPredictor(SeasonalityWeekday)

	conditions := []ObservedConditions{
		referenceConditions(),
		{OutflowTemp: 2, InflowTemp: 1, Discharge: 10, Storage: 480, AirTemp: -12, SolarRadiation: 50, WindSpeed: 9, Humidity: 90},
		{OutflowTemp: 31, InflowTemp: 29, Discharge: 300, Storage: 50, AirTemp: 39, SolarRadiation: 780, WindSpeed: 0.5, Humidity: 20},
		{OutflowTemp: 0, InflowTemp: 0, Discharge: 0, Storage: 0, AirTemp: 0, SolarRadiation: 0, WindSpeed: 0, Humidity: 0},
	}
	adjustments := []ScenarioAdjustment{
		{},
		{DischargePercentChange: -80, AirTempDelta: 6, StoragePercentChange: 40},
		{DischargePercentChange: 50, AirTempDelta: -8, StoragePercentChange: -30},
	}

	for _, c := range conditions {
		for _, adj := range adjustments {
			for _, h := range []Horizon{Horizon1, Horizon3, Horizon7} {
				res := p.Predict(c, adj, h, sunday)

				if res.PredictedTemp < 0 || res.PredictedTemp > 35 {
					t.Errorf("PredictedTemp %v outside [0, 35] (h=%d, cond=%+v, adj=%+v)", res.PredictedTemp, h, c, adj)
				}
				if res.ConfidencePercent < 60 || res.ConfidencePercent > 95 {
					t.Errorf("ConfidencePercent %d outside [60, 95] (h=%d)", res.ConfidencePercent, h)
				}
				if res.LowerBound > res.PredictedTemp || res.UpperBound < res.PredictedTemp {
					t.Errorf("bounds [%v, %v] do not bracket %v (h=%d)", res.LowerBound, res.UpperBound, res.PredictedTemp, h)
				}
				want := math.Round((res.PredictedTemp-c.OutflowTemp)*10) / 10
				if !almostEqual(res.ChangeFromBaseline, want) {
					t.Errorf("ChangeFromBaseline = %v, want %v (h=%d)", res.ChangeFromBaseline, want, h)
				}
			}
		}
	}
}

func TestPredictHorizonConstants(t *testing.T) {
	p := NewPredictor(SeasonalityWeekday)

	cases := []struct {
		horizon Horizon
		r2      float64
		mae     float64
	}{
		{Horizon1, 0.94, 0.6},
		{Horizon3, 0.89, 0.8},
		{Horizon7, 0.85, 1.2},
	}

	conditions := []ObservedConditions{
		referenceConditions(),
		{OutflowTemp: 5, InflowTemp: 4, Discharge: 30, Storage: 400, AirTemp: 15, SolarRadiation: 600, WindSpeed: 1, Humidity: 40},
	}

	for _, tc := range cases {
		for _, c := range conditions {
			res := p.Predict(c, ScenarioAdjustment{}, tc.horizon, sunday)
			if res.R2Proxy != tc.r2 {
				t.Errorf("h=%d: R2Proxy = %v, want %v", tc.horizon, res.R2Proxy, tc.r2)
			}
			if !almostEqual(res.MAEProxy, tc.mae) {
				t.Errorf("h=%d: MAEProxy = %v, want %v", tc.horizon, res.MAEProxy, tc.mae)
			}
		}
	}
}

func TestPredictZeroAdjustmentIdentity(t *testing.T) {
	p := NewPredictor(SeasonalityWeekday)
	c := referenceConditions()

	for _, h := range []Horizon{Horizon1, Horizon3, Horizon7} {
		plain := p.Predict(c, ScenarioAdjustment{}, h, sunday)
		zeroed := p.Predict(c, ScenarioAdjustment{DischargePercentChange: 0, AirTempDelta: 0, StoragePercentChange: 0}, h, sunday)
		if plain != zeroed {
			t.Errorf("h=%d: zero adjustment changed result: %+v vs %+v", h, plain, zeroed)
		}
	}
}

func TestPredictWarmAirCorrection(t *testing.T) {
	p := NewPredictor(SeasonalityWeekday)
	base := ObservedConditions{
		OutflowTemp: 10, InflowTemp: 10, Discharge: 100, Storage: 200,
		AirTemp: 15.0, SolarRadiation: 300, WindSpeed: 3, Humidity: 50,
	}
	warm := base
	warm.AirTemp = 15.1 // crosses the +5 stratification threshold

	below := p.Predict(base, ScenarioAdjustment{}, Horizon1, sunday)
	above := p.Predict(warm, ScenarioAdjustment{}, Horizon1, sunday)
	if above.PredictedTemp-below.PredictedTemp < 0.1 {
		t.Errorf("warm-air correction missing: %v -> %v", below.PredictedTemp, above.PredictedTemp)
	}

	cold := base
	cold.AirTemp = 4.9 // crosses the -5 threshold
	edge := base
	edge.AirTemp = 5.0
	coldRes := p.Predict(cold, ScenarioAdjustment{}, Horizon3, sunday)
	edgeRes := p.Predict(edge, ScenarioAdjustment{}, Horizon3, sunday)
	if edgeRes.PredictedTemp-coldRes.PredictedTemp < 0.2 {
		t.Errorf("cold-air correction missing: %v vs %v", coldRes.PredictedTemp, edgeRes.PredictedTemp)
	}
}

func TestPredictCalmSunnyCorrection(t *testing.T) {
	p := NewPredictor(SeasonalityWeekday)
	base := ObservedConditions{
		OutflowTemp: 15, InflowTemp: 14, Discharge: 100, Storage: 200,
		AirTemp: 18, SolarRadiation: 600, WindSpeed: 2.5, Humidity: 50,
	}
	calm := base
	calm.WindSpeed = 1.5

	windy := p.Predict(base, ScenarioAdjustment{}, Horizon7, sunday)
	still := p.Predict(calm, ScenarioAdjustment{}, Horizon7, sunday)

	// Calm air removes the wind penalty and triggers the radiative
	// warming term; at h=7 the correction alone is worth 0.30.
	if still.PredictedTemp-windy.PredictedTemp < 0.3 {
		t.Errorf("calm-sunny correction missing: %v -> %v", windy.PredictedTemp, still.PredictedTemp)
	}
}

func TestPredictLowDischargeCorrection(t *testing.T) {
	p := NewPredictor(SeasonalityWeekday)
	base := ObservedConditions{
		OutflowTemp: 15, InflowTemp: 14, Discharge: 60, Storage: 350,
		AirTemp: 18, SolarRadiation: 300, WindSpeed: 3, Humidity: 50,
	}
	low := base
	low.Discharge = 40

	normal := p.Predict(base, ScenarioAdjustment{}, Horizon1, sunday)
	retained := p.Predict(low, ScenarioAdjustment{}, Horizon1, sunday)
	if retained.PredictedTemp-normal.PredictedTemp < 0.15 {
		t.Errorf("low-discharge correction missing: %v -> %v", normal.PredictedTemp, retained.PredictedTemp)
	}
}

func TestPredictClampsToPhysicalRange(t *testing.T) {
	p := NewPredictor(SeasonalityWeekday)

	hot := ObservedConditions{
		OutflowTemp: 60, InflowTemp: 55, Discharge: 10, Storage: 400,
		AirTemp: 70, SolarRadiation: 800, WindSpeed: 0, Humidity: 100,
	}
	if res := p.Predict(hot, ScenarioAdjustment{}, Horizon1, sunday); res.PredictedTemp != 35 {
		t.Errorf("hot scenario: PredictedTemp = %v, want 35", res.PredictedTemp)
	}

	frozen := ObservedConditions{
		OutflowTemp: 0, InflowTemp: 0, Discharge: 100, Storage: 100,
		AirTemp: -30, SolarRadiation: 0, WindSpeed: 8, Humidity: 50,
	}
	if res := p.Predict(frozen, ScenarioAdjustment{}, Horizon7, sunday); res.PredictedTemp != 0 {
		t.Errorf("frozen scenario: PredictedTemp = %v, want 0", res.PredictedTemp)
	}
}

func TestSeasonalityModes(t *testing.T) {
	weekday := NewPredictor(SeasonalityWeekday)
	dayOfYear := NewPredictor(SeasonalityDayOfYear)
	c := referenceConditions()

	// Early April sits near the peak of the day-of-year harmonic, so
	// the two modes must disagree.
	at := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	a := weekday.Predict(c, ScenarioAdjustment{}, Horizon1, at)
	b := dayOfYear.Predict(c, ScenarioAdjustment{}, Horizon1, at)
	if a.PredictedTemp == b.PredictedTemp {
		t.Errorf("seasonality modes agree at %v: %v", at, a.PredictedTemp)
	}

	// Within one calendar day both modes are time-of-day invariant.
	morning := weekday.Predict(c, ScenarioAdjustment{}, Horizon1, at)
	evening := weekday.Predict(c, ScenarioAdjustment{}, Horizon1, at.Add(10*time.Hour))
	if morning != evening {
		t.Errorf("weekday mode varies within a day: %+v vs %+v", morning, evening)
	}
}

func TestNewPredictorFallsBackToWeekday(t *testing.T) {
	p := NewPredictor("something-else")
	if p.Seasonality != SeasonalityWeekday {
		t.Errorf("Seasonality = %q, want %q", p.Seasonality, SeasonalityWeekday)
	}
}

func TestParseHorizon(t *testing.T) {
	for _, days := range []int{1, 3, 7} {
		h, err := ParseHorizon(days)
		if err != nil {
			t.Errorf("ParseHorizon(%d) failed: %v", days, err)
		}
		if int(h) != days {
			t.Errorf("ParseHorizon(%d) = %d", days, h)
		}
	}
	for _, days := range []int{0, 2, 5, -1, 14} {
		if _, err := ParseHorizon(days); err == nil {
			t.Errorf("ParseHorizon(%d) should fail", days)
		}
	}
}

func TestValidateConditions(t *testing.T) {
	good := referenceConditions()
	if err := good.Validate(); err != nil {
		t.Errorf("valid conditions rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*ObservedConditions)
	}{
		{"nan outflow", func(c *ObservedConditions) { c.OutflowTemp = math.NaN() }},
		{"inf air temp", func(c *ObservedConditions) { c.AirTemp = math.Inf(1) }},
		{"humidity above 100", func(c *ObservedConditions) { c.Humidity = 130 }},
		{"negative humidity", func(c *ObservedConditions) { c.Humidity = -5 }},
		{"negative discharge", func(c *ObservedConditions) { c.Discharge = -1 }},
		{"negative storage", func(c *ObservedConditions) { c.Storage = -1 }},
		{"negative radiation", func(c *ObservedConditions) { c.SolarRadiation = -10 }},
		{"negative wind", func(c *ObservedConditions) { c.WindSpeed = -2 }},
	}
	for _, tc := range cases {
		c := referenceConditions()
		tc.mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}

	adj := ScenarioAdjustment{AirTempDelta: math.NaN()}
	if err := adj.Validate(); err == nil {
		t.Error("NaN adjustment should be rejected")
	}
}
