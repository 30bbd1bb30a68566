package businessflow

import (
	"math"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/shopspring/decimal"
)

// credit is the share of a conversion value given to one touchpoint
type credit struct {
	Source     string
	Campaign   string
	Value      decimal.Decimal
	Weight     float64
	OccurredAt time.Time
}

// allocation holds the output of every attribution model for one journey
type allocation struct {
	FirstTouch credit
	LastTouch  credit
	Linear     []credit
	TimeDecay  []credit
}

// allocate distributes value across touchpoints, which must be in touch order and non-empty.
// Linear and time-decay shares are never negative and each model sums to exactly value.
func allocate(touchpoints []*models.AttributionEvent, value decimal.Decimal) allocation {
	n := len(touchpoints)
	first, last := touchpoints[0], touchpoints[n-1]

	return allocation{
		FirstTouch: newCredit(first, value, 1),
		LastTouch:  newCredit(last, value, 1),
		Linear:     linearCredits(touchpoints, value),
		TimeDecay:  timeDecayCredits(touchpoints, value),
	}
}

// linearCredits gives every touch the same whole number of cents. The cents
// left over go one each to the latest touches, and any sub-cent part of value
// goes to the last touch.
func linearCredits(touchpoints []*models.AttributionEvent, value decimal.Decimal) []credit {
	n := len(touchpoints)
	count := decimal.NewFromInt(int64(n))
	cents := value.Shift(utils.CurrencyScale)

	base := cents.Div(count).Floor()
	leftover := cents.Sub(base.Mul(count))
	extra := int(leftover.Floor().IntPart())
	fraction := leftover.Sub(leftover.Floor())
	weight := 1 / float64(n)

	credits := make([]credit, n)
	for i, tp := range touchpoints {
		c := base
		if i >= n-extra {
			c = c.Add(decimal.NewFromInt(1))
		}
		if i == n-1 {
			c = c.Add(fraction)
		}
		credits[i] = newCredit(tp, c.Shift(-utils.CurrencyScale), weight)
	}
	return credits
}

// timeDecayWeights returns 2^i / sum(2^j) for i in [0, n). Each weight is an
// exact power of two times the same normalizer, so neighbours differ by a factor
// of exactly 2 until the oldest weights fall below the smallest float64 and
// clamp to zero.
func timeDecayWeights(n int) []float64 {
	// sum(2^j) / 2^n = 1 - 2^-n, which is 1 in float64 once n > 53
	norm := 1 / (1 - math.Ldexp(1, -n))

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = math.Ldexp(norm, i-n)
	}
	return weights
}

// timeDecayCredits credits touch i with value * 2^i / (2^n - 1), computed in
// decimal and truncated to whole cents. Every earlier touch is truncated, so
// the last touch keeps a remainder of at least half the value.
func timeDecayCredits(touchpoints []*models.AttributionEvent, value decimal.Decimal) []credit {
	n := len(touchpoints)
	weights := timeDecayWeights(n)

	two := decimal.NewFromInt(2)
	total := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		total = total.Mul(two)
	}
	total = total.Sub(decimal.NewFromInt(1))

	credits := make([]credit, n)
	remaining := value
	power := decimal.NewFromInt(1)
	for i, tp := range touchpoints {
		v := remaining
		if i < n-1 {
			v = value.Mul(power).Div(total).Truncate(utils.CurrencyScale)
		}
		remaining = remaining.Sub(v)
		credits[i] = newCredit(tp, v, weights[i])
		power = power.Mul(two)
	}
	return credits
}

func newCredit(e *models.AttributionEvent, value decimal.Decimal, weight float64) credit {
	return credit{
		Source:     e.SourceOrDirect(),
		Campaign:   e.CampaignOrNone(),
		Value:      value,
		Weight:     weight,
		OccurredAt: e.CreatedAt,
	}
}

// toMoney rounds an amount to the currency unit
func toMoney(d decimal.Decimal) float64 {
	return d.Round(utils.CurrencyScale).InexactFloat64()
}

// returnRatios computes ROI percent and ROAS, both zero when spend is zero
func returnRatios(revenue, spend decimal.Decimal) (roi, roas float64) {
	if !spend.IsPositive() {
		return 0, 0
	}
	roi = revenue.Sub(spend).Div(spend).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	roas = revenue.Div(spend).Round(4).InexactFloat64()
	return roi, roas
}
