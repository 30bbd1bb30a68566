package models

import (
	"testing"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(source, campaign string, eventType EventType, at time.Time) Touchpoint {
	return Touchpoint{
		UserID:         "user-1",
		OrganizationID: "org-1",
		Source:         utils.ToPtr(source),
		Campaign:       utils.ToPtr(campaign),
		EventType:      eventType,
		OccurredAt:     at,
	}
}

func TestCustomerJourneyApplyTouchpoint(t *testing.T) {
	start := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("first touch opens the journey", func(t *testing.T) {
		j := NewCustomerJourney(touch("google", "brand", EventTypeAdClick, start))

		assert.Equal(t, 1, j.TouchpointsCount)
		assert.Equal(t, "google", *j.FirstTouchSource)
		assert.Equal(t, "google", *j.LastTouchSource)
		assert.Equal(t, start, j.FirstTouchDate)
		assert.Equal(t, start, j.LastTouchDate)
		assert.False(t, j.HasConverted)
		assert.Nil(t, j.DaysToConversion)
	})

	t.Run("first touch is immutable and count equals applications", func(t *testing.T) {
		j := NewCustomerJourney(touch("google", "brand", EventTypeAdClick, start))
		for i := 1; i < 10; i++ {
			j.ApplyTouchpoint(touch("facebook", "retarget", EventTypePageView, start.Add(time.Duration(i)*time.Hour)))
		}

		assert.Equal(t, 10, j.TouchpointsCount)
		assert.Equal(t, "google", *j.FirstTouchSource)
		assert.Equal(t, "brand", *j.FirstTouchCampaign)
		assert.Equal(t, start, j.FirstTouchDate)
		assert.Equal(t, "facebook", *j.LastTouchSource)
		assert.Equal(t, start.Add(9*time.Hour), j.LastTouchDate)
	})

	t.Run("first conversion wins", func(t *testing.T) {
		j := NewCustomerJourney(touch("google", "brand", EventTypeAdClick, start))

		converted := j.ApplyTouchpoint(touch("direct", "none", EventTypePurchase, start.Add(50*time.Hour)))
		require.True(t, converted)
		require.NotNil(t, j.DaysToConversion)
		assert.Equal(t, 3, *j.DaysToConversion)
		firstConversion := *j.ConversionDate

		converted = j.ApplyTouchpoint(touch("email", "upsell", EventTypePurchase, start.Add(200*time.Hour)))
		assert.False(t, converted)
		assert.True(t, j.HasConverted)
		assert.Equal(t, firstConversion, *j.ConversionDate)
		assert.Equal(t, 3, *j.DaysToConversion)
		assert.Equal(t, "email", *j.LastTouchSource)
		assert.Equal(t, 3, j.TouchpointsCount)
	})

	t.Run("trial start converts", func(t *testing.T) {
		j := NewCustomerJourney(touch("google", "brand", EventTypePageView, start))
		assert.True(t, j.ApplyTouchpoint(touch("google", "brand", EventTypeTrialStart, start.Add(time.Hour))))
		assert.Equal(t, 1, *j.DaysToConversion)
	})

	t.Run("converting first event has zero days", func(t *testing.T) {
		j := NewCustomerJourney(touch("google", "brand", EventTypePurchase, start))
		assert.True(t, j.HasConverted)
		assert.Equal(t, 0, *j.DaysToConversion)
	})
}

func TestAttributionEventBackfillFromUTM(t *testing.T) {
	e := &AttributionEvent{
		Source:      utils.ToPtr("newsletter"),
		UTMSource:   utils.ToPtr("google"),
		UTMMedium:   utils.ToPtr("cpc"),
		UTMCampaign: utils.ToPtr("spring"),
	}

	e.BackfillFromUTM()

	assert.Equal(t, "newsletter", *e.Source)
	assert.Equal(t, "cpc", *e.Medium)
	assert.Equal(t, "spring", *e.Campaign)

	empty := &AttributionEvent{}
	empty.BackfillFromUTM()
	assert.Nil(t, empty.Source)
	assert.Equal(t, "direct", empty.SourceOrDirect())
	assert.Equal(t, "none", empty.CampaignOrNone())
}

func TestEventTypeValid(t *testing.T) {
	assert.True(t, EventTypeCTAClick.Valid())
	assert.False(t, EventType("refund").Valid())
	assert.True(t, EventTypePurchase.IsConversion())
	assert.False(t, EventTypeSignup.IsConversion())
}
