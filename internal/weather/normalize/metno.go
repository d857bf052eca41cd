// Package normalize maps raw provider response shapes into the canonical
// snapshot model. Each provider has its own adapter; unit conversions and
// derived metrics (feels-like, compass direction, daily aggregation) all
// happen here so the rest of the system only ever sees normalized data.
package normalize

import (
	"fmt"
	"time"

	"github.com/nunatech/sila/internal/weather"
)

// MetResponse is the primary provider's locationforecast document: metadata
// plus a time series of instantaneous details with next-1-hour and
// next-6-hour summaries.
type MetResponse struct {
	Properties struct {
		Meta struct {
			UpdatedAt time.Time `json:"updated_at"`
		} `json:"meta"`
		Timeseries []MetStep `json:"timeseries"`
	} `json:"properties"`
}

// MetStep is one time-indexed entry in the series.
type MetStep struct {
	Time time.Time `json:"time"`
	Data struct {
		Instant struct {
			Details struct {
				AirTemperature   float64 `json:"air_temperature"`
				WindSpeed        float64 `json:"wind_speed"` // m/s
				WindFromDegrees  float64 `json:"wind_from_direction"`
				RelativeHumidity float64 `json:"relative_humidity"`
				CloudAreaPct     float64 `json:"cloud_area_fraction"`
				UVIndex          float64 `json:"ultraviolet_index_clear_sky"`
			} `json:"details"`
		} `json:"instant"`
		Next1Hours *MetPeriod `json:"next_1_hours,omitempty"`
		Next6Hours *MetPeriod `json:"next_6_hours,omitempty"`
	} `json:"data"`
}

// MetPeriod summarizes the hours following a step.
type MetPeriod struct {
	Summary struct {
		SymbolCode string `json:"symbol_code"`
	} `json:"summary"`
	Details struct {
		PrecipitationAmount float64 `json:"precipitation_amount"`
	} `json:"details"`
}

// symbol returns the step's symbol code, preferring the 1-hour summary.
func (s MetStep) symbol() string {
	if s.Data.Next1Hours != nil {
		return s.Data.Next1Hours.Summary.SymbolCode
	}
	if s.Data.Next6Hours != nil {
		return s.Data.Next6Hours.Summary.SymbolCode
	}
	return ""
}

// precip returns the step's expected precipitation amount in mm.
func (s MetStep) precip() float64 {
	if s.Data.Next1Hours != nil {
		return s.Data.Next1Hours.Details.PrecipitationAmount
	}
	if s.Data.Next6Hours != nil {
		return s.Data.Next6Hours.Details.PrecipitationAmount
	}
	return 0
}

// Normalize converts the document into the canonical snapshot. The first
// series entry becomes current conditions; an empty series is fatal.
func (r *MetResponse) Normalize(loc weather.Location, now time.Time) (*weather.Snapshot, error) {
	series := r.Properties.Timeseries
	if len(series) == 0 {
		return nil, fmt.Errorf("normalize %s response: %w", MetSourceName, weather.ErrNoTimeSeries)
	}

	first := series[0]
	det := first.Data.Instant.Details

	windKmh := KmhFromMs(det.WindSpeed)
	updated := r.Properties.Meta.UpdatedAt
	if updated.IsZero() {
		updated = now
	}

	current := weather.Current{
		TemperatureC:  det.AirTemperature,
		FeelsLikeC:    FeelsLike(det.AirTemperature, windKmh, det.RelativeHumidity),
		Condition:     MapSymbol(first.symbol()),
		WindSpeedKmh:  windKmh,
		WindDirection: Compass(det.WindFromDegrees),
		HumidityPct:   det.RelativeHumidity,
		CloudCoverPct: det.CloudAreaPct,
		UVIndex:       det.UVIndex,
		LastUpdated:   updated,
	}

	samples := make([]timeSample, 0, len(series))
	for _, step := range series {
		samples = append(samples, timeSample{
			Time:      step.Time,
			TempC:     step.Data.Instant.Details.AirTemperature,
			Condition: MapSymbol(step.symbol()),
			PrecipMm:  step.precip(),
		})
	}

	return &weather.Snapshot{
		Location:  loc,
		LocalTime: now.In(loc.Zone()).Format("2006-01-02 15:04"),
		Current:   current,
		Days:      buildDays(samples, loc),
		Provider:  MetSourceName,
		FetchedAt: now,
	}, nil
}

// MetSourceName identifies the primary provider in snapshots and logs.
const MetSourceName = "met"
