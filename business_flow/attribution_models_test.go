package businessflow

import (
	"math"
	"testing"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	testingutil "github.com/codetix2020-hash/finanzasmarketing-sub001/testing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchpoints(n int) []*models.AttributionEvent {
	out := make([]*models.AttributionEvent, n)
	for i := range out {
		out[i] = testingutil.NewEvent(testOrg, "user-1", models.EventTypePageView, "google", "brand", baseTime.Add(time.Duration(i)*time.Hour))
	}
	return out
}

func sumValues(credits []credit) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range credits {
		sum = sum.Add(c.Value)
	}
	return sum
}

func TestAllocateThreeTouchJourney(t *testing.T) {
	events := []*models.AttributionEvent{
		testingutil.NewEvent(testOrg, "user-1", models.EventTypeAdClick, "google", "brand", baseTime),
		testingutil.NewEvent(testOrg, "user-1", models.EventTypePageView, "facebook", "retargeting", baseTime.Add(24*time.Hour)),
		testingutil.NewEvent(testOrg, "user-1", models.EventTypePurchase, "", "", baseTime.Add(48*time.Hour)),
	}

	result := allocate(events, decimal.NewFromInt(300))

	assert.Equal(t, "google", result.FirstTouch.Source)
	assert.Equal(t, "brand", result.FirstTouch.Campaign)
	assert.True(t, result.FirstTouch.Value.Equal(decimal.NewFromInt(300)))

	assert.Equal(t, "direct", result.LastTouch.Source)
	assert.Equal(t, "none", result.LastTouch.Campaign)
	assert.True(t, result.LastTouch.Value.Equal(decimal.NewFromInt(300)))

	require.Len(t, result.Linear, 3)
	for _, c := range result.Linear {
		assert.Equal(t, "100", c.Value.String())
	}

	require.Len(t, result.TimeDecay, 3)
	assert.Equal(t, "42.85", result.TimeDecay[0].Value.String())
	assert.Equal(t, "85.71", result.TimeDecay[1].Value.String())
	assert.Equal(t, "171.44", result.TimeDecay[2].Value.String())
	assert.Equal(t, "direct", result.TimeDecay[2].Source)
}

func TestLinearCreditsSumExactly(t *testing.T) {
	tests := []struct {
		name  string
		value string
		n     int
	}{
		{"ThirdsOfHundred", "100", 3},
		{"SevenWays", "1000", 7},
		{"OneCent", "0.01", 3},
		{"SingleTouch", "49.99", 1},
		{"Zero", "0", 4},
		{"ManyTouchesSmallValue", "9.99", 600},
		{"FewerCentsThanTouches", "0.05", 12},
		{"SubCentValue", "10.005", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := decimal.RequireFromString(tt.value)
			credits := linearCredits(touchpoints(tt.n), value)

			require.Len(t, credits, tt.n)
			assert.True(t, sumValues(credits).Equal(value), "sum %s != %s", sumValues(credits), value)
			for i, c := range credits {
				assert.False(t, c.Value.IsNegative(), "credit %d is negative: %s", i, c.Value)
				if i < tt.n-1 {
					assert.True(t, c.Value.Equal(c.Value.Round(2)), "%s is not a currency amount", c.Value)
				}
			}
			for i := 1; i < tt.n-1; i++ {
				assert.True(t, credits[i].Value.GreaterThanOrEqual(credits[i-1].Value), "credit %d below credit %d", i, i-1)
			}
		})
	}

	credits := linearCredits(touchpoints(600), decimal.RequireFromString("9.99"))
	assert.Equal(t, "0.01", credits[0].Value.String())
	assert.Equal(t, "0.01", credits[200].Value.String())
	assert.Equal(t, "0.02", credits[201].Value.String())
	assert.Equal(t, "0.02", credits[599].Value.String())

	credits = linearCredits(touchpoints(3), decimal.NewFromInt(100))
	assert.Equal(t, "33.33", credits[0].Value.String())
	assert.Equal(t, "33.33", credits[1].Value.String())
	assert.Equal(t, "33.34", credits[2].Value.String())
}

func TestTimeDecayWeights(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 53, 54, 64, 1000} {
		weights := timeDecayWeights(n)
		require.Len(t, weights, n)

		var sum float64
		for _, w := range weights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9)

		for i := 1; i < n; i++ {
			assert.InDelta(t, 2.0, weights[i]/weights[i-1], 1e-9)
		}
	}
}

func TestTimeDecayWeightsPastFloatRange(t *testing.T) {
	const n = 1100
	weights := timeDecayWeights(n)
	require.Len(t, weights, n)

	var sum float64
	firstNonZero := -1
	for i, w := range weights {
		assert.False(t, math.IsNaN(w))
		sum += w
		if w > 0 && firstNonZero < 0 {
			firstNonZero = i
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Equal(t, 0.5, weights[n-1])

	// 2^-1074 is the smallest positive float64; older weights clamp to zero
	assert.Equal(t, n-1074, firstNonZero)
	assert.Equal(t, math.SmallestNonzeroFloat64, weights[firstNonZero])
	for i := 0; i < firstNonZero; i++ {
		assert.Zero(t, weights[i])
	}
	for i := firstNonZero + 1; i < n; i++ {
		assert.Equal(t, 2.0, weights[i]/weights[i-1], "weight %d", i)
	}
}

func TestTimeDecayCreditsNeverNegative(t *testing.T) {
	tests := []struct {
		name  string
		value string
		n     int
	}{
		{"ThirdsOfThree", "3", 2},
		{"ManyTouchesSmallValue", "9.99", 600},
		{"OneCentLongJourney", "0.01", 50},
		{"SubCentValue", "10.005", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := decimal.RequireFromString(tt.value)
			credits := timeDecayCredits(touchpoints(tt.n), value)

			require.Len(t, credits, tt.n)
			assert.True(t, sumValues(credits).Equal(value), "sum %s != %s", sumValues(credits), value)
			for i, c := range credits {
				assert.False(t, c.Value.IsNegative(), "credit %d is negative: %s", i, c.Value)
			}
		})
	}

	credits := timeDecayCredits(touchpoints(2), decimal.NewFromInt(3))
	assert.Equal(t, "1", credits[0].Value.String())
	assert.Equal(t, "2", credits[1].Value.String())
}

func TestTimeDecayCreditsLongJourney(t *testing.T) {
	value := decimal.NewFromInt(500)
	credits := timeDecayCredits(touchpoints(2000), value)

	require.Len(t, credits, 2000)
	assert.True(t, sumValues(credits).Equal(value))
	assert.True(t, credits[0].Value.IsZero())
	assert.InDelta(t, 250.0, credits[1999].Value.InexactFloat64(), 0.1)
}

func TestReturnRatios(t *testing.T) {
	roi, roas := returnRatios(decimal.NewFromInt(2500), decimal.NewFromInt(1000))
	assert.Equal(t, 150.0, roi)
	assert.Equal(t, 2.5, roas)

	roi, roas = returnRatios(decimal.NewFromInt(2500), decimal.Zero)
	assert.Zero(t, roi)
	assert.Zero(t, roas)

	roi, roas = returnRatios(decimal.Zero, decimal.NewFromInt(400))
	assert.Equal(t, -100.0, roi)
	assert.Zero(t, roas)
}
