package normalize

import (
	"math"
	"sort"
	"time"

	"github.com/nunatech/sila/internal/astro"
	"github.com/nunatech/sila/internal/weather"
)

// precipThresholdMm is the amount above which a sample counts as "wet" for
// the daily precipitation probability.
const precipThresholdMm = 0.1

// timeSample is one fine-grained provider observation before aggregation.
type timeSample struct {
	Time      time.Time
	TempC     float64
	Condition weather.Condition
	PrecipMm  float64
}

// hourChance grades a single sample's precipitation amount into a chance
// percentage for hourly display.
func hourChance(precipMm float64) int {
	switch {
	case precipMm > 1.0:
		return 80
	case precipMm > precipThresholdMm:
		return 50
	default:
		return 0
	}
}

// buildDays groups samples by calendar date in the location's zone and
// aggregates each date into a ForecastDay. Days and their hourly sequences
// come out chronologically ordered. Sunrise and sunset are always computed
// locally so they stay consistent across providers.
func buildDays(samples []timeSample, loc weather.Location) []weather.ForecastDay {
	if len(samples) == 0 {
		return nil
	}

	zone := loc.Zone()
	byDate := make(map[string][]timeSample)
	for _, s := range samples {
		key := s.Time.In(zone).Format(time.DateOnly)
		byDate[key] = append(byDate[key], s)
	}

	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	days := make([]weather.ForecastDay, 0, len(keys))
	for _, k := range keys {
		group := byDate[k]
		sort.Slice(group, func(i, j int) bool { return group[i].Time.Before(group[j].Time) })

		date, _ := time.ParseInLocation(time.DateOnly, k, zone)

		day := weather.ForecastDay{
			Date:      date,
			MinC:      group[0].TempC,
			MaxC:      group[0].TempC,
			Condition: representativeCondition(group, zone),
		}

		var sum float64
		wet := 0
		for _, s := range group {
			day.MinC = math.Min(day.MinC, s.TempC)
			day.MaxC = math.Max(day.MaxC, s.TempC)
			sum += s.TempC
			if s.PrecipMm > precipThresholdMm {
				wet++
			}
			day.Hours = append(day.Hours, weather.HourSample{
				Time:         s.Time.In(zone),
				TemperatureC: s.TempC,
				Condition:    s.Condition,
				PrecipChance: hourChance(s.PrecipMm),
			})
		}
		day.AvgC = sum / float64(len(group))
		day.PrecipChance = int(math.Round(float64(wet) / float64(len(group)) * 100))

		sun := astro.ComputeSunTimes(loc.Latitude, loc.Longitude, date)
		if sun.Sunrise != nil {
			day.Sunrise = sun.Sunrise.String()
		}
		if sun.Sunset != nil {
			day.Sunset = sun.Sunset.String()
		}

		days = append(days, day)
	}
	return days
}

// representativeCondition prefers the sample nearest local noon, falling
// back to the first available.
func representativeCondition(group []timeSample, zone *time.Location) weather.Condition {
	best := group[0]
	bestDiff := math.MaxFloat64
	for _, s := range group {
		local := s.Time.In(zone)
		minutes := float64(local.Hour()*60 + local.Minute())
		diff := math.Abs(minutes - 12*60)
		if diff < bestDiff {
			bestDiff = diff
			best = s
		}
	}
	return best.Condition
}
