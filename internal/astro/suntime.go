// Package astro computes solar event times and aurora viewing probability
// for high-latitude locations. The sun-time method is the simplified
// solar-position algorithm; it is accurate to a few minutes, which is enough
// for display and for polar day/night detection.
package astro

import (
	"math"
	"time"
)

// Zenith thresholds in degrees. Official rise/set uses the refracted value.
const (
	zenithOfficial = 90.833
	zenithCivil    = 96.0
	zenithNautical = 102.0
)

// utcOffsetHours is a fixed Greenland-representative offset used to convert
// event times to local clock time. The product intentionally does not do a
// true timezone lookup here; all tracked locations share this offset.
const utcOffsetHours = -3.0

// ClockTime is a local wall-clock time of day.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// String formats as HH:MM.
func (c ClockTime) String() string {
	return pad2(c.Hour) + ":" + pad2(c.Minute)
}

func pad2(v int) string {
	if v < 10 {
		return string([]byte{'0', byte('0' + v)})
	}
	return string([]byte{byte('0' + v/10), byte('0' + v%10)})
}

// Minutes returns the time of day in minutes since midnight.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

// SunTimes holds the computed solar events for one date. A nil event means
// it does not occur that day. PolarDay and PolarNight are mutually
// exclusive; when either is set, Sunrise and Sunset are nil by definition.
type SunTimes struct {
	Sunrise       *ClockTime `json:"sunrise,omitempty"`
	Sunset        *ClockTime `json:"sunset,omitempty"`
	CivilDawn     *ClockTime `json:"civilDawn,omitempty"`
	CivilDusk     *ClockTime `json:"civilDusk,omitempty"`
	NauticalDawn  *ClockTime `json:"nauticalDawn,omitempty"`
	NauticalDusk  *ClockTime `json:"nauticalDusk,omitempty"`
	PolarDay      bool       `json:"polarDay"`
	PolarNight    bool       `json:"polarNight"`
	DaylightHours float64    `json:"daylightHours"`
}

// ComputeSunTimes returns the solar events for the given coordinates and
// date. Pure and deterministic; latitudes beyond +-90 are the caller's
// responsibility to avoid.
func ComputeSunTimes(latitude, longitude float64, date time.Time) SunTimes {
	day := float64(date.YearDay())

	var st SunTimes

	rise, riseOK := crossing(latitude, longitude, day, zenithOfficial, true)
	set, setOK := crossing(latitude, longitude, day, zenithOfficial, false)

	if !riseOK && !setOK {
		// The sun never crosses the official horizon today. The altitude at
		// local solar noon decides which polar state applies.
		if middayAltitude(latitude, longitude, day) > -0.833 {
			st.PolarDay = true
			st.DaylightHours = 24
		} else {
			st.PolarNight = true
			st.DaylightHours = 0
		}
	} else {
		if riseOK {
			st.Sunrise = clockFromHours(rise)
		}
		if setOK {
			st.Sunset = clockFromHours(set)
		}
		if riseOK && setOK {
			d := set - rise
			if d < 0 {
				d += 24
			}
			st.DaylightHours = d
		}
	}

	if t, ok := crossing(latitude, longitude, day, zenithCivil, true); ok {
		st.CivilDawn = clockFromHours(t)
	}
	if t, ok := crossing(latitude, longitude, day, zenithCivil, false); ok {
		st.CivilDusk = clockFromHours(t)
	}
	if t, ok := crossing(latitude, longitude, day, zenithNautical, true); ok {
		st.NauticalDawn = clockFromHours(t)
	}
	if t, ok := crossing(latitude, longitude, day, zenithNautical, false); ok {
		st.NauticalDusk = clockFromHours(t)
	}

	return st
}

// crossing computes the local clock hour at which the sun crosses the given
// zenith, rising or setting. ok is false when no crossing occurs that day.
func crossing(latitude, longitude, day, zenith float64, rising bool) (float64, bool) {
	lngHour := longitude / 15

	// Approximate day fraction of the event.
	var t float64
	if rising {
		t = day + (6-lngHour)/24
	} else {
		t = day + (18-lngHour)/24
	}

	// Sun's mean anomaly, then true ecliptic longitude.
	m := 0.9856*t - 3.289
	l := m + 1.916*sinDeg(m) + 0.020*sinDeg(2*m) + 282.634
	l = normDeg(l)

	// Right ascension, pulled into the same quadrant as L so the angle stays
	// continuous across quadrant boundaries.
	ra := normDeg(atanDeg(0.91764 * tanDeg(l)))
	lQuadrant := math.Floor(l/90) * 90
	raQuadrant := math.Floor(ra/90) * 90
	ra += lQuadrant - raQuadrant
	ra /= 15

	// Solar declination.
	sinDec := 0.39782 * sinDeg(l)
	cosDec := cosDeg(asinDeg(sinDec))

	// Hour angle at the requested zenith. Out-of-range cosine means the sun
	// never reaches that threshold today; exact boundary values count as no
	// crossing (conservative near the transition dates).
	cosH := (cosDeg(zenith) - sinDec*sinDeg(latitude)) / (cosDec * cosDeg(latitude))
	if cosH >= 1 || cosH <= -1 {
		return 0, false
	}

	var h float64
	if rising {
		h = 360 - acosDeg(cosH)
	} else {
		h = acosDeg(cosH)
	}
	h /= 15

	// Local mean time of the event, then to UTC, then to the fixed offset.
	lt := h + ra - 0.06571*t - 6.622
	ut := normHours(lt - lngHour)
	return normHours(ut + utcOffsetHours), true
}

// middayAltitude returns the sun's altitude in degrees at local solar noon.
func middayAltitude(latitude, longitude, day float64) float64 {
	lngHour := longitude / 15
	t := day + (12-lngHour)/24

	m := 0.9856*t - 3.289
	l := normDeg(m + 1.916*sinDeg(m) + 0.020*sinDeg(2*m) + 282.634)

	sinDec := 0.39782 * sinDeg(l)
	dec := asinDeg(sinDec)

	// At solar noon the altitude is 90 - |lat - declination|.
	return 90 - math.Abs(latitude-dec)
}

func clockFromHours(h float64) *ClockTime {
	h = normHours(h)
	hour := int(h)
	minute := int(math.Round((h - float64(hour)) * 60))
	if minute == 60 {
		minute = 0
		hour = (hour + 1) % 24
	}
	return &ClockTime{Hour: hour, Minute: minute}
}

func normDeg(v float64) float64 {
	v = math.Mod(v, 360)
	if v < 0 {
		v += 360
	}
	return v
}

func normHours(v float64) float64 {
	v = math.Mod(v, 24)
	if v < 0 {
		v += 24
	}
	return v
}

func sinDeg(v float64) float64  { return math.Sin(v * math.Pi / 180) }
func cosDeg(v float64) float64  { return math.Cos(v * math.Pi / 180) }
func tanDeg(v float64) float64  { return math.Tan(v * math.Pi / 180) }
func asinDeg(v float64) float64 { return math.Asin(v) * 180 / math.Pi }
func acosDeg(v float64) float64 { return math.Acos(v) * 180 / math.Pi }
func atanDeg(v float64) float64 { return math.Atan(v) * 180 / math.Pi }
