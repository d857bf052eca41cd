package astro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuroraHighLatitudeStrongStorm(t *testing.T) {
	clear := AuroraProbability(5, 77, 0)
	assert.GreaterOrEqual(t, clear, 90)

	// Full overcast removes at most 80% of the base probability.
	overcast := AuroraProbability(5, 77, 100)
	assert.LessOrEqual(t, float64(overcast), 0.2*float64(clear)+0.5)
	assert.Greater(t, overcast, 0)
}

func TestAuroraLatitudeBands(t *testing.T) {
	// Same Kp, further south means lower odds.
	assert.GreaterOrEqual(t, AuroraProbability(4, 76, 0), AuroraProbability(4, 70, 0))
	assert.GreaterOrEqual(t, AuroraProbability(4, 70, 0), AuroraProbability(4, 62, 0))
	assert.GreaterOrEqual(t, AuroraProbability(4, 62, 0), AuroraProbability(4, 50, 0))
}

func TestAuroraKpThresholds(t *testing.T) {
	// Same latitude, stronger storm means better odds.
	lat := 69.2
	assert.GreaterOrEqual(t, AuroraProbability(6, lat, 0), AuroraProbability(4.5, lat, 0))
	assert.GreaterOrEqual(t, AuroraProbability(4.5, lat, 0), AuroraProbability(3, lat, 0))
	assert.GreaterOrEqual(t, AuroraProbability(3, lat, 0), AuroraProbability(1, lat, 0))
}

func TestAuroraCloudReductionLinear(t *testing.T) {
	base := AuroraProbability(3, 70, 0)
	half := AuroraProbability(3, 70, 50)
	// 50% cloud removes 40% of the base.
	assert.InDelta(t, 0.6*float64(base), float64(half), 1.0)
}

func TestAuroraClampedRange(t *testing.T) {
	for _, kp := range []float64{0, 2, 5, 9} {
		for _, cloud := range []float64{-10, 0, 50, 100, 150} {
			p := AuroraProbability(kp, 80, cloud)
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
		}
	}
}
