package model

import (
	"errors"
	"fmt"
	"math"
)

// ObservedConditions holds the current reservoir and meteorological
// readings the predictor scores against.
type ObservedConditions struct {
	OutflowTemp    float64 `json:"outflow_temp"`    // °C
	InflowTemp     float64 `json:"inflow_temp"`     // °C
	Discharge      float64 `json:"discharge"`       // m³/s
	Storage        float64 `json:"storage"`         // million m³
	AirTemp        float64 `json:"air_temp"`        // °C
	SolarRadiation float64 `json:"solar_radiation"` // W/m²
	WindSpeed      float64 `json:"wind_speed"`      // m/s
	Humidity       float64 `json:"humidity"`        // %
}

// ScenarioAdjustment is a what-if perturbation applied to observed
// conditions before scoring. Percent fields scale, the delta shifts.
type ScenarioAdjustment struct {
	DischargePercentChange float64 `json:"discharge_percent_change"`
	AirTempDelta           float64 `json:"air_temp_delta"`
	StoragePercentChange   float64 `json:"storage_percent_change"`
}

// IsZero reports whether applying the adjustment would change nothing.
func (a ScenarioAdjustment) IsZero() bool {
	return a.DischargePercentChange == 0 && a.AirTempDelta == 0 && a.StoragePercentChange == 0
}

// EffectiveConditions are observed conditions with a scenario
// adjustment applied. Only discharge, air temperature and storage move;
// the remaining fields pass through.
type EffectiveConditions struct {
	Discharge      float64
	AirTemp        float64
	Storage        float64
	InflowTemp     float64
	SolarRadiation float64
	WindSpeed      float64
	Humidity       float64
}

// Apply derives effective conditions from observed conditions.
func (a ScenarioAdjustment) Apply(c ObservedConditions) EffectiveConditions {
	return EffectiveConditions{
		Discharge:      c.Discharge * (1 + a.DischargePercentChange/100),
		AirTemp:        c.AirTemp + a.AirTempDelta,
		Storage:        c.Storage * (1 + a.StoragePercentChange/100),
		InflowTemp:     c.InflowTemp,
		SolarRadiation: c.SolarRadiation,
		WindSpeed:      c.WindSpeed,
		Humidity:       c.Humidity,
	}
}

// Horizon is the forecast lead time in days.
type Horizon int

const (
	Horizon1 Horizon = 1
	Horizon3 Horizon = 3
	Horizon7 Horizon = 7
)

// ParseHorizon validates a day count against the supported horizons.
func ParseHorizon(days int) (Horizon, error) {
	switch days {
	case 1, 3, 7:
		return Horizon(days), nil
	}
	return 0, fmt.Errorf("horizon must be 1, 3 or 7 days, got %d", days)
}

// PredictionResult is the scored forecast for one horizon.
// Temperatures and bounds carry one decimal, the MAE proxy two;
// ConfidencePercent is an integer in [60, 95].
type PredictionResult struct {
	Horizon            Horizon `json:"horizon"`
	PredictedTemp      float64 `json:"predicted_temp"`
	ChangeFromBaseline float64 `json:"change_from_baseline"`
	MAEProxy           float64 `json:"mae_proxy"`
	R2Proxy            float64 `json:"r2_proxy"`
	ConfidencePercent  int     `json:"confidence_percent"`
	LowerBound         float64 `json:"lower_bound"`
	UpperBound         float64 `json:"upper_bound"`
}

// FeatureCategory groups the ranked drivers for display.
type FeatureCategory string

const (
	CategoryTemporal    FeatureCategory = "temporal"
	CategoryMeteorology FeatureCategory = "meteorology"
	CategoryHydrology   FeatureCategory = "hydrology"
	CategoryOperations  FeatureCategory = "operations"
)

// FeatureImportanceEntry is one ranked driver of the prediction.
type FeatureImportanceEntry struct {
	Name              string          `json:"name"`
	ImportancePercent int             `json:"importance_percent"`
	Category          FeatureCategory `json:"category"`
}

// Validate rejects non-finite readings and values outside physical
// range. The predictor itself does not validate; callers that accept
// untrusted input should check before scoring.
func (c ObservedConditions) Validate() error {
	fields := map[string]float64{
		"outflow_temp":    c.OutflowTemp,
		"inflow_temp":     c.InflowTemp,
		"discharge":       c.Discharge,
		"storage":         c.Storage,
		"air_temp":        c.AirTemp,
		"solar_radiation": c.SolarRadiation,
		"wind_speed":      c.WindSpeed,
		"humidity":        c.Humidity,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	if c.Humidity < 0 || c.Humidity > 100 {
		return errors.New("humidity must be between 0 and 100")
	}
	if c.Discharge < 0 {
		return errors.New("discharge must not be negative")
	}
	if c.Storage < 0 {
		return errors.New("storage must not be negative")
	}
	if c.SolarRadiation < 0 {
		return errors.New("solar radiation must not be negative")
	}
	if c.WindSpeed < 0 {
		return errors.New("wind speed must not be negative")
	}
	return nil
}

// Validate rejects non-finite adjustment values.
func (a ScenarioAdjustment) Validate() error {
	fields := map[string]float64{
		"discharge_percent_change": a.DischargePercentChange,
		"air_temp_delta":           a.AirTempDelta,
		"storage_percent_change":   a.StoragePercentChange,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	return nil
}
