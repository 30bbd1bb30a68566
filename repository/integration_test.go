package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/repository"
	testingutil "github.com/codetix2020-hash/finanzasmarketing-sub001/testing"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPostgres(t *testing.T, fn func(t *testing.T, tdb *testingutil.TestDB)) {
	t.Helper()
	if !testingutil.DatabaseConfigured() {
		t.Skip("TEST_DB_HOST not set")
	}

	err := testingutil.TestWithDB(func(tdb *testingutil.TestDB) error {
		fn(t, tdb)
		return nil
	})
	require.NoError(t, err)
}

func TestConcurrentTouchpointsPostgres(t *testing.T) {
	withPostgres(t, func(t *testing.T, tdb *testingutil.TestDB) {
		ctx := testingutil.CreateTestContext()
		repo := repository.NewCustomerJourneyRepository(tdb.DB)
		start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

		const touches = 20
		var wg sync.WaitGroup
		errs := make(chan error, touches)
		for i := 0; i < touches; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				eventType := models.EventTypePageView
				if i == touches-1 {
					eventType = models.EventTypePurchase
				}
				_, err := repo.ApplyTouchpoint(ctx, models.Touchpoint{
					UserID:         "user-concurrent",
					OrganizationID: "org-it",
					Source:         utils.ToPtr("google"),
					EventType:      eventType,
					OccurredAt:     start.Add(time.Duration(i) * time.Minute),
				})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		journey, err := repo.ByUserID(ctx, "org-it", "user-concurrent")
		require.NoError(t, err)
		require.NotNil(t, journey)
		assert.Equal(t, touches, journey.TouchpointsCount)
		assert.True(t, journey.HasConverted)
	})
}

func TestJourneysScopedByOrganizationPostgres(t *testing.T) {
	withPostgres(t, func(t *testing.T, tdb *testingutil.TestDB) {
		ctx := testingutil.CreateTestContext()
		repo := repository.NewCustomerJourneyRepository(tdb.DB)
		start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

		_, err := repo.ApplyTouchpoint(ctx, models.Touchpoint{
			UserID: "shared-user", OrganizationID: "org-a", Source: utils.ToPtr("google"),
			EventType: models.EventTypeAdClick, OccurredAt: start,
		})
		require.NoError(t, err)
		_, err = repo.ApplyTouchpoint(ctx, models.Touchpoint{
			UserID: "shared-user", OrganizationID: "org-b", Source: utils.ToPtr("facebook"),
			EventType: models.EventTypePurchase, OccurredAt: start.Add(time.Hour),
		})
		require.NoError(t, err)

		a, err := repo.ByUserID(ctx, "org-a", "shared-user")
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, 1, a.TouchpointsCount)
		assert.False(t, a.HasConverted)

		require.NoError(t, repo.UpdateAttribution(ctx, "org-b", "shared-user", models.AttributionValues{
			ConversionValue: 500, AttributedAt: start.Add(2 * time.Hour),
		}))

		a, err = repo.ByUserID(ctx, "org-a", "shared-user")
		require.NoError(t, err)
		assert.Nil(t, a.ConversionValue)

		b, err := repo.ByUserID(ctx, "org-b", "shared-user")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.True(t, b.HasConverted)
		require.NotNil(t, b.ConversionValue)
		assert.Equal(t, 500.0, *b.ConversionValue)

		require.NoError(t, tdb.ClearAllTables())
	})
}

func TestPerformanceUpsertPostgres(t *testing.T) {
	withPostgres(t, func(t *testing.T, tdb *testingutil.TestDB) {
		ctx := context.Background()
		repo := repository.NewCampaignPerformanceRepository(tdb.DB)
		periodStart := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

		perf := &models.CampaignPerformance{
			OrganizationID: "org-it",
			CampaignID:     1,
			CampaignName:   "spring",
			PeriodStart:    periodStart,
			PeriodEnd:      periodStart.Add(30 * 24 * time.Hour),
			Revenue:        100,
			Spend:          50,
			ROI:            100,
			ROAS:           2,
			BudgetKind:     models.BudgetKindTotal,
		}
		require.NoError(t, repo.Upsert(ctx, perf))

		recomputed := *perf
		recomputed.ID = 0
		recomputed.Revenue = 150
		recomputed.ROI = 200
		recomputed.ROAS = 3
		require.NoError(t, repo.Upsert(ctx, &recomputed))

		stored, err := repo.ByFilter(ctx, models.CampaignPerformanceFilter{OrganizationID: utils.ToPtr("org-it")}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, 150.0, stored[0].Revenue)
		assert.Equal(t, 3.0, stored[0].ROAS)

		require.NoError(t, tdb.ClearAllTables())
	})
}
