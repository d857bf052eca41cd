package normalize

import (
	"fmt"
	"time"

	"github.com/nunatech/sila/internal/astro"
	"github.com/nunatech/sila/internal/weather"
)

// WeatherAPISourceName identifies the fallback provider.
const WeatherAPISourceName = "weatherapi"

// WeatherAPIResponse is the fallback provider's document. It is already
// close to the canonical shape, so normalization is near pass-through.
type WeatherAPIResponse struct {
	Location struct {
		Name      string `json:"name"`
		Region    string `json:"region"`
		Country   string `json:"country"`
		Localtime string `json:"localtime"`
	} `json:"location"`
	Current struct {
		LastUpdatedEpoch int64               `json:"last_updated_epoch"`
		TempC            float64             `json:"temp_c"`
		FeelsLikeC       float64             `json:"feelslike_c"`
		WindKph          float64             `json:"wind_kph"`
		WindDegree       float64             `json:"wind_degree"`
		Humidity         float64             `json:"humidity"`
		Cloud            float64             `json:"cloud"`
		UV               float64             `json:"uv"`
		Condition        WeatherAPICondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []WeatherAPIDay `json:"forecastday"`
	} `json:"forecast"`
}

// WeatherAPICondition is the provider's condition descriptor.
type WeatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

// WeatherAPIDay is one forecast day with its hourly sequence.
type WeatherAPIDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC     float64             `json:"maxtemp_c"`
		MinTempC     float64             `json:"mintemp_c"`
		AvgTempC     float64             `json:"avgtemp_c"`
		ChanceOfRain int                 `json:"daily_chance_of_rain"`
		Condition    WeatherAPICondition `json:"condition"`
	} `json:"day"`
	Hour []WeatherAPIHour `json:"hour"`
}

// WeatherAPIHour is one hourly sample inside a forecast day.
type WeatherAPIHour struct {
	TimeEpoch    int64               `json:"time_epoch"`
	TempC        float64             `json:"temp_c"`
	ChanceOfRain int                 `json:"chance_of_rain"`
	Condition    WeatherAPICondition `json:"condition"`
}

func (c WeatherAPICondition) normalized() weather.Condition {
	// The text itself carries enough signal for the substring table; this
	// keeps condition codes consistent across both providers.
	mapped := MapSymbol(c.Text)
	if mapped.Code < 0 && c.Text != "" {
		return weather.Condition{Text: c.Text, Icon: c.Icon, Code: c.Code}
	}
	return mapped
}

// Normalize converts the document into the canonical snapshot. Sunrise and
// sunset still come from the local solar engine, not the provider's astro
// block, so they agree with primary-sourced snapshots.
func (r *WeatherAPIResponse) Normalize(loc weather.Location, now time.Time) (*weather.Snapshot, error) {
	if len(r.Forecast.ForecastDay) == 0 {
		return nil, fmt.Errorf("normalize %s response: %w", WeatherAPISourceName, weather.ErrNoTimeSeries)
	}

	zone := loc.Zone()

	updated := time.Unix(r.Current.LastUpdatedEpoch, 0).UTC()
	if r.Current.LastUpdatedEpoch == 0 {
		updated = now
	}

	current := weather.Current{
		TemperatureC:  r.Current.TempC,
		FeelsLikeC:    r.Current.FeelsLikeC,
		Condition:     r.Current.Condition.normalized(),
		WindSpeedKmh:  r.Current.WindKph,
		WindDirection: Compass(r.Current.WindDegree),
		HumidityPct:   r.Current.Humidity,
		CloudCoverPct: r.Current.Cloud,
		UVIndex:       r.Current.UV,
		LastUpdated:   updated,
	}

	days := make([]weather.ForecastDay, 0, len(r.Forecast.ForecastDay))
	for _, fd := range r.Forecast.ForecastDay {
		date, err := time.ParseInLocation(time.DateOnly, fd.Date, zone)
		if err != nil {
			continue
		}

		day := weather.ForecastDay{
			Date:         date,
			MinC:         fd.Day.MinTempC,
			MaxC:         fd.Day.MaxTempC,
			AvgC:         fd.Day.AvgTempC,
			Condition:    fd.Day.Condition.normalized(),
			PrecipChance: fd.Day.ChanceOfRain,
		}

		for _, h := range fd.Hour {
			day.Hours = append(day.Hours, weather.HourSample{
				Time:         time.Unix(h.TimeEpoch, 0).In(zone),
				TemperatureC: h.TempC,
				Condition:    h.Condition.normalized(),
				PrecipChance: h.ChanceOfRain,
			})
		}

		sun := astro.ComputeSunTimes(loc.Latitude, loc.Longitude, date)
		if sun.Sunrise != nil {
			day.Sunrise = sun.Sunrise.String()
		}
		if sun.Sunset != nil {
			day.Sunset = sun.Sunset.String()
		}

		days = append(days, day)
	}

	localTime := r.Location.Localtime
	if localTime == "" {
		localTime = now.In(zone).Format("2006-01-02 15:04")
	}

	return &weather.Snapshot{
		Location:  loc,
		LocalTime: localTime,
		Current:   current,
		Days:      days,
		Provider:  WeatherAPISourceName,
		FetchedAt: now,
	}, nil
}
