package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nunatech/sila/internal/weather"
)

func TestCompass(t *testing.T) {
	cases := []struct {
		degrees float64
		want    string
	}{
		{0, "N"},
		{44, "N"},
		{45, "NE"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{359, "NW"},
		{360, "N"},
		{-45, "NW"},
		{405, "NE"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Compass(tc.degrees), "bearing %.0f", tc.degrees)
	}
}

func TestRound4Idempotent(t *testing.T) {
	for _, v := range []float64{64.17481234, -51.73809999, 0.00005, -0.00004, 77.5} {
		once := weather.Round4(v)
		assert.Equal(t, once, weather.Round4(once))
	}
	assert.Equal(t, 64.1748, weather.Round4(64.17481234))
}

func TestFeelsLikeWindChill(t *testing.T) {
	got := FeelsLike(0, 20, 50)
	assert.Less(t, got, 0.0, "cold and windy must feel colder than actual")
	// Standard formula value for 0°C at 20 km/h.
	assert.InDelta(t, -5.2, got, 0.2)
}

func TestFeelsLikeHeatIndex(t *testing.T) {
	got := FeelsLike(30, 10, 60)
	assert.Greater(t, got, 30.0, "hot and humid must feel hotter than actual")
	assert.InDelta(t, 32.8, got, 0.5)
}

func TestFeelsLikeNeutral(t *testing.T) {
	assert.Equal(t, 15.0, FeelsLike(15, 20, 50))

	// Calm cold air does not trigger wind chill.
	assert.Equal(t, -2.0, FeelsLike(-2, 3, 80))

	// Dry heat does not trigger the heat index.
	assert.Equal(t, 30.0, FeelsLike(30, 10, 20))
}

func TestKmhFromMs(t *testing.T) {
	assert.InDelta(t, 18.0, KmhFromMs(5), 1e-9)
	assert.Equal(t, 0.0, KmhFromMs(0))
}

func TestMapSymbolOrder(t *testing.T) {
	// Compound symbols must match their most severe component first.
	assert.Equal(t, "Thunderstorm", MapSymbol("heavyrainandthunder").Text)
	assert.Equal(t, "Thunderstorm", MapSymbol("lightssnowshowersandthunder").Text)
	assert.Equal(t, "Heavy rain", MapSymbol("heavyrain_showers").Text)
	assert.Equal(t, "Rain", MapSymbol("lightrain").Text)
	assert.Equal(t, "Sleet", MapSymbol("sleetshowers").Text)
	assert.Equal(t, "Heavy snow", MapSymbol("heavysnow").Text)
	assert.Equal(t, "Snow", MapSymbol("snowshowers_day").Text)
	assert.Equal(t, "Fog", MapSymbol("fog").Text)
	assert.Equal(t, "Partly cloudy", MapSymbol("partlycloudy_night").Text)
	assert.Equal(t, "Cloudy", MapSymbol("cloudy").Text)
	assert.Equal(t, "Fair", MapSymbol("fair_day").Text)
	assert.Equal(t, "Clear", MapSymbol("clearsky_day").Text)
	assert.Equal(t, -1, MapSymbol("").Code)
}
