package astro

// auroraBase maps a latitude band to base viewing probabilities indexed by
// Kp threshold: >=5, >=4, >=3, >=2, below 2.
var auroraBase = []struct {
	minLat float64
	probs  [5]int
}{
	{75, [5]int{95, 85, 75, 60, 40}},
	{68, [5]int{90, 80, 65, 50, 30}},
	{60, [5]int{80, 65, 50, 35, 15}},
	{-90, [5]int{60, 40, 25, 10, 5}},
}

// AuroraProbability estimates the chance (0-100) of visible aurora for a
// latitude given the current Kp index and cloud cover. Base probability is a
// latitude-banded lookup by Kp threshold, then reduced by cloud cover: full
// overcast removes 80% of the base, linearly in between.
func AuroraProbability(kpIndex, latitude, cloudCoverPct float64) int {
	var probs [5]int
	for _, band := range auroraBase {
		if latitude >= band.minLat {
			probs = band.probs
			break
		}
	}

	var base float64
	switch {
	case kpIndex >= 5:
		base = float64(probs[0])
	case kpIndex >= 4:
		base = float64(probs[1])
	case kpIndex >= 3:
		base = float64(probs[2])
	case kpIndex >= 2:
		base = float64(probs[3])
	default:
		base = float64(probs[4])
	}

	if cloudCoverPct < 0 {
		cloudCoverPct = 0
	} else if cloudCoverPct > 100 {
		cloudCoverPct = 100
	}
	p := base * (1 - 0.8*cloudCoverPct/100)

	if p < 0 {
		p = 0
	} else if p > 100 {
		p = 100
	}
	return int(p + 0.5)
}
