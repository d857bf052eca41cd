package normalize

import (
	"strings"

	"github.com/nunatech/sila/internal/common"
	"github.com/nunatech/sila/internal/weather"
)

// conditionRule maps provider symbol codes to the normalized condition by
// substring match. First match wins, so compound symbols must come before
// their plain forms: "rainandthunder" has to hit thunderstorm, not rain.
type conditionRule struct {
	cond weather.Condition
	subs []string
}

var conditionRules = []conditionRule{
	{weather.Condition{Text: "Thunderstorm", Icon: "thunderstorm", Code: 10}, []string{"thunder"}},
	{weather.Condition{Text: "Sleet", Icon: "sleet", Code: 9}, []string{"sleet"}},
	{weather.Condition{Text: "Heavy snow", Icon: "heavy-snow", Code: 8}, []string{"heavysnow"}},
	{weather.Condition{Text: "Snow", Icon: "snow", Code: 7}, []string{"snow"}},
	{weather.Condition{Text: "Heavy rain", Icon: "heavy-rain", Code: 6}, []string{"heavyrain"}},
	{weather.Condition{Text: "Rain", Icon: "rain", Code: 5}, []string{"rain", "drizzle", "shower"}},
	{weather.Condition{Text: "Fog", Icon: "fog", Code: 4}, []string{"fog", "mist"}},
	{weather.Condition{Text: "Partly cloudy", Icon: "partly-cloudy", Code: 2}, []string{"partlycloudy"}},
	{weather.Condition{Text: "Cloudy", Icon: "cloudy", Code: 3}, []string{"cloudy"}},
	{weather.Condition{Text: "Fair", Icon: "fair", Code: 1}, []string{"fair"}},
	{weather.Condition{Text: "Clear", Icon: "clear", Code: 0}, []string{"clearsky", "clear"}},
}

// MapSymbol converts a provider symbol code such as "heavyrainandthunder" or
// "clearsky_day" to the normalized condition.
func MapSymbol(symbol string) weather.Condition {
	s := strings.ToLower(symbol)
	for _, rule := range conditionRules {
		if common.HasAny(s, rule.subs...) {
			return rule.cond
		}
	}
	return weather.Condition{Text: "Unknown", Icon: "unknown", Code: -1}
}
