package normalize

import "math"

// KmhFromMs converts a wind speed from m/s to km/h.
func KmhFromMs(ms float64) float64 {
	return ms * 3.6
}

var compassLabels = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Compass maps a degree bearing to an 8-point compass label. Sectors are 45
// degrees wide starting at north; 0 and 360 map identically.
func Compass(degrees float64) string {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	idx := int(d/45) % 8
	return compassLabels[idx]
}

// Wind-chill applies below this temperature and above this wind speed.
const (
	windChillMaxTempC   = 10.0
	windChillMinWindKmh = 4.8
)

// Heat index applies above this temperature and humidity.
const (
	heatIndexMinTempC = 27.0
	heatIndexMinRH    = 40.0
)

// FeelsLike computes apparent temperature in Celsius. Cold and windy uses
// the wind-chill formula; hot and humid uses the NOAA heat-index polynomial;
// everything else feels like the actual temperature. Coefficients are the
// published standard values.
func FeelsLike(tempC, windKmh, humidityPct float64) float64 {
	switch {
	case tempC <= windChillMaxTempC && windKmh > windChillMinWindKmh:
		return windChill(tempC, windKmh)
	case tempC >= heatIndexMinTempC && humidityPct >= heatIndexMinRH:
		return heatIndex(tempC, humidityPct)
	default:
		return tempC
	}
}

// windChill is the Environment Canada / NWS formula for Celsius and km/h.
func windChill(tempC, windKmh float64) float64 {
	v := math.Pow(windKmh, 0.16)
	return 13.12 + 0.6215*tempC - 11.37*v + 0.3965*tempC*v
}

// heatIndex is the NOAA 9-term regression. It is defined in Fahrenheit, so
// convert in and back out.
func heatIndex(tempC, rh float64) float64 {
	t := tempC*9/5 + 32
	hi := -42.379 +
		2.04901523*t +
		10.14333127*rh -
		0.22475541*t*rh -
		0.00683783*t*t -
		0.05481717*rh*rh +
		0.00122874*t*t*rh +
		0.00085282*t*rh*rh -
		0.00000199*t*t*rh*rh
	return (hi - 32) * 5 / 9
}
