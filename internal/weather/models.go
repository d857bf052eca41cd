package weather

import (
	"math"
	"time"
)

// ZoneGreenland is the fixed display offset used when a location has no
// resolvable IANA zone. West Greenland runs on UTC-3 in the standard season.
var ZoneGreenland = time.FixedZone("GMT-3", -3*60*60)

// Condition is a normalized weather condition descriptor.
type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

// Location identifies a place we can fetch weather for. Loaded once from
// static configuration at startup and never mutated afterwards.
type Location struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Timezone is the IANA zone name resolved at load time, used only for
	// the display local-time string. Empty means fall back to ZoneGreenland.
	Timezone string `json:"timezone,omitempty"`
}

// Key returns the canonical cache key for this location.
func (l Location) Key() string {
	return l.ID
}

// Zone returns the location's display time zone.
func (l Location) Zone() *time.Location {
	if l.Timezone != "" {
		if z, err := time.LoadLocation(l.Timezone); err == nil {
			return z
		}
	}
	return ZoneGreenland
}

// Round4 rounds a coordinate to 4 decimal places. The primary provider
// rejects requests with higher precision, so this runs before every call.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Current holds the normalized current conditions for a snapshot.
type Current struct {
	TemperatureC  float64   `json:"temperatureC"`
	FeelsLikeC    float64   `json:"feelsLikeC"`
	Condition     Condition `json:"condition"`
	WindSpeedKmh  float64   `json:"windSpeedKmh"`
	WindDirection string    `json:"windDirection"`
	HumidityPct   float64   `json:"humidityPercent"`
	CloudCoverPct float64   `json:"cloudCoverPercent"`
	UVIndex       float64   `json:"uvIndex"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// HourSample is one time-indexed forecast sample within a day.
type HourSample struct {
	Time         time.Time `json:"time"`
	TemperatureC float64   `json:"temperatureC"`
	Condition    Condition `json:"condition"`
	PrecipChance int       `json:"precipChancePercent"`
}

// ForecastDay aggregates one calendar date. Hours are ordered chronologically.
type ForecastDay struct {
	Date         time.Time    `json:"date"`
	MinC         float64      `json:"minC"`
	MaxC         float64      `json:"maxC"`
	AvgC         float64      `json:"avgC"`
	Condition    Condition    `json:"condition"`
	PrecipChance int          `json:"precipChancePercent"`
	Sunrise      string       `json:"sunrise,omitempty"`
	Sunset       string       `json:"sunset,omitempty"`
	Hours        []HourSample `json:"hours,omitempty"`
}

// Snapshot is the canonical normalized weather result for a location.
// Once handed out it is treated as an immutable value; refreshes produce a
// new snapshot rather than mutating in place.
type Snapshot struct {
	Location  Location      `json:"location"`
	LocalTime string        `json:"localTime"`
	Current   Current       `json:"current"`
	Days      []ForecastDay `json:"days"`
	Provider  string        `json:"provider"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// RawSource is the polymorphic ingestion boundary: each provider's decoded
// response shape converts itself into the canonical snapshot.
type RawSource interface {
	Normalize(loc Location, now time.Time) (*Snapshot, error)
}
