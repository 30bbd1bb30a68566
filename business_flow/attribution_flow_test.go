package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	testingutil "github.com/codetix2020-hash/finanzasmarketing-sub001/testing"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedThreeTouchJourney(t *testing.T, store *testingutil.MemoryStore) {
	t.Helper()
	seedTouch(t, store, testingutil.NewEvent(testOrg, "user-1", models.EventTypeAdClick, "google", "spring", baseTime))
	seedTouch(t, store, testingutil.NewEvent(testOrg, "user-1", models.EventTypePageView, "facebook", "", baseTime.Add(time.Hour)))
	seedTouch(t, store, testingutil.NewEvent(testOrg, "user-1", models.EventTypeSignup, "email", "newsletter", baseTime.Add(2*time.Hour)))
}

func TestCalculateAttribution(t *testing.T) {
	ctx := context.Background()

	t.Run("ThreeTouchJourney", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedThreeTouchJourney(t, store)
		flow := newTestAttributionFlow(store)

		result, err := flow.CalculateAttribution(ctx, &dto.CalculateAttributionRequest{
			OrganizationID:  testOrg,
			UserID:          "user-1",
			ConversionValue: utils.ToPtr(300.0),
		})
		require.NoError(t, err)

		assert.Equal(t, 3, result.Touchpoints)
		assert.Equal(t, "google", result.FirstTouch.Source)
		assert.Equal(t, "spring", result.FirstTouch.Campaign)
		assert.Equal(t, 300.0, result.FirstTouch.Value)
		assert.Equal(t, "email", result.LastTouch.Source)
		assert.Equal(t, 300.0, result.LastTouch.Value)

		require.Len(t, result.Linear, 3)
		for _, c := range result.Linear {
			assert.Equal(t, 100.0, c.Value)
		}
		assert.Equal(t, "none", result.Linear[1].Campaign)

		require.Len(t, result.TimeDecay, 3)
		assert.Equal(t, 42.85, result.TimeDecay[0].Value)
		assert.Equal(t, 85.71, result.TimeDecay[1].Value)
		assert.Equal(t, 171.44, result.TimeDecay[2].Value)

		journey, err := store.Journeys().ByUserID(ctx, testOrg, "user-1")
		require.NoError(t, err)
		require.NotNil(t, journey.LinearValue)
		assert.Equal(t, 300.0, *journey.FirstTouchValue)
		assert.Equal(t, 300.0, *journey.LastTouchValue)
		assert.Equal(t, 100.0, *journey.LinearValue)
		assert.Equal(t, 171.44, *journey.TimeDecayValue)
		assert.Equal(t, 300.0, *journey.ConversionValue)
		assert.Equal(t, 300.0, *journey.LifetimeValue)
		assert.NotNil(t, journey.AttributedAt)
	})

	t.Run("RecomputeOverwrites", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedThreeTouchJourney(t, store)
		flow := newTestAttributionFlow(store)

		for _, value := range []float64{300, 90} {
			_, err := flow.CalculateAttribution(ctx, &dto.CalculateAttributionRequest{
				OrganizationID:  testOrg,
				UserID:          "user-1",
				ConversionValue: utils.ToPtr(value),
			})
			require.NoError(t, err)
		}

		journey, err := store.Journeys().ByUserID(ctx, testOrg, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 90.0, *journey.ConversionValue)
		assert.Equal(t, 90.0, *journey.LifetimeValue)
		assert.Equal(t, 30.0, *journey.LinearValue)
	})

	t.Run("SingleTouchGetsEverything", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedTouch(t, store, testingutil.NewPurchase(testOrg, "user-1", "", "", 75, baseTime))
		flow := newTestAttributionFlow(store)

		result, err := flow.CalculateAttribution(ctx, &dto.CalculateAttributionRequest{
			OrganizationID:  testOrg,
			UserID:          "user-1",
			ConversionValue: utils.ToPtr(75.0),
		})
		require.NoError(t, err)

		assert.Equal(t, "direct", result.FirstTouch.Source)
		assert.Equal(t, 75.0, result.Linear[0].Value)
		assert.Equal(t, 75.0, result.TimeDecay[0].Value)
	})

	t.Run("UserWithoutEvents", func(t *testing.T) {
		flow := newTestAttributionFlow(testingutil.NewMemoryStore())

		_, err := flow.CalculateAttribution(ctx, &dto.CalculateAttributionRequest{
			OrganizationID:  testOrg,
			UserID:          "ghost",
			ConversionValue: utils.ToPtr(10.0),
		})

		assert.True(t, IsUserEventsNotFound(err))
		assert.Equal(t, CodeUserEventsNotFound, ErrorCode(err))
	})

	t.Run("EventsInOtherOrganization", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedThreeTouchJourney(t, store)
		flow := newTestAttributionFlow(store)

		_, err := flow.CalculateAttribution(ctx, &dto.CalculateAttributionRequest{
			OrganizationID:  "org-other",
			UserID:          "user-1",
			ConversionValue: utils.ToPtr(10.0),
		})

		assert.True(t, IsUserEventsNotFound(err))
	})

	t.Run("NegativeConversionValue", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedThreeTouchJourney(t, store)
		flow := newTestAttributionFlow(store)

		_, err := flow.CalculateAttribution(ctx, &dto.CalculateAttributionRequest{
			OrganizationID:  testOrg,
			UserID:          "user-1",
			ConversionValue: utils.ToPtr(-5.0),
		})

		assert.ErrorIs(t, err, ErrNegativeConversionValue)
		assert.True(t, IsInvalidInput(err))
	})

	t.Run("MissingConversionValue", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedThreeTouchJourney(t, store)
		flow := newTestAttributionFlow(store)

		_, err := flow.CalculateAttribution(ctx, &dto.CalculateAttributionRequest{
			OrganizationID: testOrg,
			UserID:         "user-1",
		})

		assert.ErrorIs(t, err, ErrConversionValueRequired)
		assert.True(t, IsInvalidInput(err))

		journey, err := store.Journeys().ByUserID(ctx, testOrg, "user-1")
		require.NoError(t, err)
		assert.Nil(t, journey.ConversionValue)
	})

	t.Run("JourneyWriteFailure", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedThreeTouchJourney(t, store)
		store.FailJourneyWrites(errors.New("deadlock detected"))
		flow := newTestAttributionFlow(store)

		_, err := flow.CalculateAttribution(ctx, &dto.CalculateAttributionRequest{
			OrganizationID:  testOrg,
			UserID:          "user-1",
			ConversionValue: utils.ToPtr(10.0),
		})

		assert.True(t, IsPersistenceFailure(err))
	})
}
