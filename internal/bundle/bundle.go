package bundle

import (
	"archive/zip"
	"fmt"
	"io"
)

// Document is one named text file in the methodology bundle.
type Document struct {
	Name string
	Body string
}

// ArchiveName is the suggested filename for the packaged bundle.
const ArchiveName = "reservoir-ml-methodology.zip"

// Documents returns the fixed set of methodology texts. The content is
// static documentation of the intended training pipeline; it never
// carries live model output.
func Documents() []Document {
	return []Document{
		{
			Name: "README.txt",
			Body: `Reservoir Outflow Temperature Forecasting - Methodology Bundle

This bundle documents the modeling approach behind the forecast
dashboard: feature engineering, candidate model families (GAM, GBM,
Random Forest), multi-horizon calibration and the prediction API
contract. The documents are reference material only; the running
service evaluates a calibrated closed-form scoring expression.
`,
		},
		{
			Name: "training_pipeline.txt",
			Body: `Training pipeline outline
=========================

1. Assemble daily records of outflow temperature, inflow temperature,
   discharge, storage, air temperature, solar radiation, wind speed and
   humidity.
2. Engineer features: harmonic day-of-year seasonality (sin/cos over
   365.25), lagged outflow temperature (1 and 7 days), lagged
   discharge and inflow, 7-day rolling means, air-water stratification
   index (air_temp - t_out_lag1).
3. Fit per horizon (1, 3, 7 days) with time-series cross validation:
   - GAM with per-feature smooths (most interpretable)
   - Gradient boosting (100 trees, depth 4, learning rate 0.1)
   - Random forest (100 trees, depth 10)
4. Quantify uncertainty from ensemble spread (1.96 sigma intervals) or
   GAM prediction intervals.
5. Report MAE and R-squared per horizon on the held-out folds.
`,
		},
		{
			Name: "data_sources.txt",
			Body: `Data sources
============

Hydrology: USGS NWIS daily values service (water temperature parameter
00010, discharge parameter 00060, RDB format).

Meteorology: Daymet single-pixel API (tmax, tmin, srad, vp, dayl);
air temperature derived as (tmax + tmin) / 2.

Series are merged on date with forward fill limited to two days.
`,
		},
		{
			Name: "prediction_api.txt",
			Body: `Prediction API contract
=======================

POST /predict/{horizon} with current conditions returns the predicted
outflow temperature, lower and upper bounds, and per-feature
importance for the requested horizon (1, 3 or 7 days). Horizons
outside that set are rejected.
`,
		},
	}
}

// WriteArchive packages the fixed documents as a zip archive.
func WriteArchive(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, doc := range Documents() {
		f, err := zw.Create(doc.Name)
		if err != nil {
			return fmt.Errorf("creating %s in archive: %w", doc.Name, err)
		}
		if _, err := f.Write([]byte(doc.Body)); err != nil {
			return fmt.Errorf("writing %s to archive: %w", doc.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}
