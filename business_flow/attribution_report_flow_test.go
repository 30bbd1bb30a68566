package businessflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	testingutil "github.com/codetix2020-hash/finanzasmarketing-sub001/testing"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedReportingOrganization builds three journeys and three campaigns:
//   - user-a converts on "spring" after 50 hours
//   - user-b browses four times and never converts
//   - user-c converts on "summer" after 24 hours
func seedReportingOrganization(t *testing.T, store *testingutil.MemoryStore) {
	t.Helper()

	store.AddCampaign(testingutil.NewCampaign(testOrg, "spring", `{"total": 100}`, models.CampaignStatusActive))
	store.AddCampaign(testingutil.NewCampaign(testOrg, "summer", `{"daily": 1}`, models.CampaignStatusPaused))
	store.AddCampaign(testingutil.NewCampaign(testOrg, "autumn", `{"total": 50}`, models.CampaignStatusDraft))
	store.AddCampaign(testingutil.NewCampaign("org-other", "spring", `{"total": 5000}`, models.CampaignStatusActive))

	seedTouch(t, store, testingutil.NewEvent(testOrg, "user-a", models.EventTypeSignup, "google", "spring", baseTime))
	seedTouch(t, store, testingutil.NewPurchase(testOrg, "user-a", "google", "spring", 100, baseTime.Add(50*time.Hour)))

	for i := 0; i < 4; i++ {
		seedTouch(t, store, testingutil.NewEvent(testOrg, "user-b", models.EventTypePageView, "", "", baseTime.Add(time.Duration(i)*time.Hour)))
	}

	seedTouch(t, store, testingutil.NewEvent(testOrg, "user-c", models.EventTypeAdClick, "facebook", "summer", baseTime))
	seedTouch(t, store, testingutil.NewPurchase(testOrg, "user-c", "facebook", "summer", 50, baseTime.Add(24*time.Hour)))
}

func TestGetAttributionReport(t *testing.T) {
	ctx := context.Background()

	t.Run("JourneyAndRevenueSummary", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedReportingOrganization(t, store)
		flow := newTestReportFlow(store, nil)

		report, err := flow.GetAttributionReport(ctx, &dto.AttributionReportRequest{OrganizationID: testOrg})
		require.NoError(t, err)

		assert.Equal(t, 150.0, report.TotalRevenue)
		assert.Equal(t, int64(2), report.TotalConversions)
		assert.Equal(t, int64(3), report.TotalJourneys)
		assert.Equal(t, int64(2), report.ConvertedJourneys)
		assert.InDelta(t, 8.0/3.0, report.AvgTouchpoints, 1e-9)
		assert.Equal(t, 2.0, report.AvgTimeToConversion)

		// draft campaigns still count towards spend: 100 + 30 + 50
		assert.Equal(t, 180.0, report.TotalSpend)
		assert.Equal(t, 0.8333, report.OverallROAS)

		require.Len(t, report.TopCampaigns, 2)
		assert.Equal(t, "summer", report.TopCampaigns[0].CampaignName)
		assert.Equal(t, 66.67, report.TopCampaigns[0].ROI)
		assert.Equal(t, "spring", report.TopCampaigns[1].CampaignName)
		assert.Zero(t, report.TopCampaigns[1].ROI)
	})

	t.Run("RevenueByModel", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedReportingOrganization(t, store)
		attribution := newTestAttributionFlow(store)
		for user, value := range map[string]float64{"user-a": 100, "user-c": 50} {
			_, err := attribution.CalculateAttribution(ctx, &dto.CalculateAttributionRequest{
				OrganizationID:  testOrg,
				UserID:          user,
				ConversionValue: utils.ToPtr(value),
			})
			require.NoError(t, err)
		}
		flow := newTestReportFlow(store, nil)

		report, err := flow.GetAttributionReport(ctx, &dto.AttributionReportRequest{OrganizationID: testOrg})
		require.NoError(t, err)

		assert.Equal(t, 150.0, report.RevenueByModel.FirstTouch)
		assert.Equal(t, 150.0, report.RevenueByModel.LastTouch)
		assert.Equal(t, 75.0, report.RevenueByModel.Linear)
		assert.Equal(t, 100.01, report.RevenueByModel.TimeDecay)
	})

	t.Run("EmptyOrganization", func(t *testing.T) {
		flow := newTestReportFlow(testingutil.NewMemoryStore(), nil)

		report, err := flow.GetAttributionReport(ctx, &dto.AttributionReportRequest{OrganizationID: testOrg})
		require.NoError(t, err)

		assert.Zero(t, report.TotalRevenue)
		assert.Zero(t, report.OverallROAS)
		assert.Zero(t, report.AvgTouchpoints)
		assert.Zero(t, report.AvgTimeToConversion)
		assert.Empty(t, report.TopCampaigns)
	})

	t.Run("TimeRangeFiltersRevenue", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedReportingOrganization(t, store)
		flow := newTestReportFlow(store, nil)

		report, err := flow.GetAttributionReport(ctx, &dto.AttributionReportRequest{
			OrganizationID: testOrg,
			Start:          utils.ToPtr(baseTime.Add(40 * time.Hour)),
		})
		require.NoError(t, err)

		assert.Equal(t, 100.0, report.TotalRevenue)
		assert.Equal(t, int64(1), report.TotalConversions)
	})

	t.Run("StartAfterEnd", func(t *testing.T) {
		flow := newTestReportFlow(testingutil.NewMemoryStore(), nil)

		_, err := flow.GetAttributionReport(ctx, &dto.AttributionReportRequest{
			OrganizationID: testOrg,
			Start:          utils.ToPtr(baseTime),
			End:            utils.ToPtr(baseTime.Add(-time.Second)),
		})

		assert.ErrorIs(t, err, ErrStartDateAfterEndDate)
	})

	t.Run("TopCampaignsAreCapped", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		for i := 0; i < 7; i++ {
			name := fmt.Sprintf("campaign-%d", i)
			store.AddCampaign(testingutil.NewCampaign(testOrg, name, `{"total": 100}`, models.CampaignStatusActive))
			seedTouch(t, store, testingutil.NewPurchase(testOrg, fmt.Sprintf("user-%d", i), "google", name, float64(100+i*10), baseTime))
		}
		flow := newTestReportFlow(store, nil)

		report, err := flow.GetAttributionReport(ctx, &dto.AttributionReportRequest{OrganizationID: testOrg})
		require.NoError(t, err)

		require.Len(t, report.TopCampaigns, 5)
		assert.Equal(t, "campaign-6", report.TopCampaigns[0].CampaignName)
		assert.Equal(t, "campaign-2", report.TopCampaigns[4].CampaignName)
	})
}

func TestAttributionReportCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	store := testingutil.NewMemoryStore()
	seedReportingOrganization(t, store)
	flow := newTestReportFlow(store, rc)
	req := &dto.AttributionReportRequest{OrganizationID: testOrg}

	first, err := flow.GetAttributionReport(ctx, req)
	require.NoError(t, err)
	assert.True(t, mr.Exists("attribution-test:report:org-test:open:open"))

	seedTouch(t, store, testingutil.NewPurchase(testOrg, "user-d", "google", "spring", 900, baseTime))

	cached, err := flow.GetAttributionReport(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.TotalRevenue, cached.TotalRevenue)
	assert.True(t, first.GeneratedAt.Equal(cached.GeneratedAt))

	mr.FastForward(6 * time.Minute)

	fresh, err := flow.GetAttributionReport(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1050.0, fresh.TotalRevenue)

	t.Run("UnavailableRedisFallsBackToDatabase", func(t *testing.T) {
		mr.Close()

		report, err := flow.GetAttributionReport(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 1050.0, report.TotalRevenue)
	})
}

func TestGetCampaignPerformance(t *testing.T) {
	ctx := context.Background()

	t.Run("ReportableCampaignsOnly", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedReportingOrganization(t, store)
		flow := newTestReportFlow(store, nil)

		perf, err := flow.GetCampaignPerformance(ctx, &dto.CampaignPerformanceRequest{OrganizationID: testOrg})
		require.NoError(t, err)

		assert.Equal(t, 2, perf.TotalCampaigns)
		assert.Equal(t, 150.0, perf.TotalRevenue)
		assert.Equal(t, 130.0, perf.TotalSpend)
		assert.Equal(t, "summer", perf.Campaigns[0].CampaignName)
		assert.Equal(t, string(models.BudgetKindDaily), perf.Campaigns[0].BudgetKind)
		assert.Equal(t, utils.StartOfDayUTC(perf.PeriodStart), perf.PeriodStart)
	})

	t.Run("SnapshotsAreUpserted", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedReportingOrganization(t, store)
		flow := newTestReportFlow(store, nil)
		req := &dto.CampaignPerformanceRequest{
			OrganizationID: testOrg,
			Start:          utils.ToPtr(baseTime.Add(-24 * time.Hour)),
			End:            utils.ToPtr(baseTime.Add(72 * time.Hour)),
		}

		_, err := flow.GetCampaignPerformance(ctx, req)
		require.NoError(t, err)
		_, err = flow.GetCampaignPerformance(ctx, req)
		require.NoError(t, err)

		snapshots := store.AllPerformances()
		require.Len(t, snapshots, 2)
		for _, s := range snapshots {
			assert.Equal(t, testOrg, s.OrganizationID)
			assert.True(t, s.PeriodStart.Equal(baseTime.Add(-24*time.Hour)))
		}
	})

	t.Run("FailingCampaignIsOmitted", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedReportingOrganization(t, store)
		store.FailCampaign("summer", errors.New("statement timeout"))
		flow := newTestReportFlow(store, nil)

		perf, err := flow.GetCampaignPerformance(ctx, &dto.CampaignPerformanceRequest{OrganizationID: testOrg})
		require.NoError(t, err)

		require.Len(t, perf.Campaigns, 1)
		assert.Equal(t, "spring", perf.Campaigns[0].CampaignName)
		snapshots := store.AllPerformances()
		require.Len(t, snapshots, 1)
		assert.Equal(t, "spring", snapshots[0].CampaignName)
	})

	t.Run("SnapshotWriteFailureIsOmitted", func(t *testing.T) {
		store := testingutil.NewMemoryStore()
		seedReportingOrganization(t, store)
		store.FailPerformanceWrites(errors.New("disk full"))
		flow := newTestReportFlow(store, nil)

		perf, err := flow.GetCampaignPerformance(ctx, &dto.CampaignPerformanceRequest{OrganizationID: testOrg})
		require.NoError(t, err)
		assert.Empty(t, perf.Campaigns)
		assert.Zero(t, perf.TotalRevenue)
	})

	t.Run("MissingOrganization", func(t *testing.T) {
		flow := newTestReportFlow(testingutil.NewMemoryStore(), nil)

		_, err := flow.GetCampaignPerformance(ctx, &dto.CampaignPerformanceRequest{})
		assert.ErrorIs(t, err, ErrOrganizationIDRequired)
	})
}

func TestListCampaignPerformance(t *testing.T) {
	ctx := context.Background()
	store := testingutil.NewMemoryStore()
	seedReportingOrganization(t, store)
	flow := newTestReportFlow(store, nil)

	for _, day := range []int{0, 1} {
		start := baseTime.Add(time.Duration(day) * 24 * time.Hour)
		_, err := flow.GetCampaignPerformance(ctx, &dto.CampaignPerformanceRequest{
			OrganizationID: testOrg,
			Start:          &start,
			End:            utils.ToPtr(start.Add(96 * time.Hour)),
		})
		require.NoError(t, err)
	}

	t.Run("NewestPeriodFirst", func(t *testing.T) {
		history, err := flow.ListCampaignPerformance(ctx, &dto.ListCampaignPerformanceRequest{OrganizationID: testOrg})
		require.NoError(t, err)

		require.Len(t, history.Snapshots, 4)
		assert.True(t, history.Snapshots[0].PeriodStart.After(history.Snapshots[3].PeriodStart))
	})

	t.Run("SingleCampaignWithLimit", func(t *testing.T) {
		history, err := flow.ListCampaignPerformance(ctx, &dto.ListCampaignPerformanceRequest{
			OrganizationID: testOrg,
			CampaignID:     utils.ToPtr(uint(1)),
			Limit:          1,
		})
		require.NoError(t, err)

		require.Len(t, history.Snapshots, 1)
		assert.Equal(t, "spring", history.Snapshots[0].CampaignName)
		assert.True(t, history.Snapshots[0].PeriodStart.Equal(baseTime.Add(24*time.Hour)))
	})

	t.Run("OtherOrganizationSeesNothing", func(t *testing.T) {
		history, err := flow.ListCampaignPerformance(ctx, &dto.ListCampaignPerformanceRequest{OrganizationID: "org-other"})
		require.NoError(t, err)
		assert.Empty(t, history.Snapshots)
	})
}

func TestExportCampaignPerformance(t *testing.T) {
	ctx := context.Background()
	store := testingutil.NewMemoryStore()
	seedReportingOrganization(t, store)
	flow := newTestReportFlow(store, nil)

	end := baseTime.Add(72 * time.Hour)
	filename, data, err := flow.ExportCampaignPerformance(ctx, &dto.CampaignPerformanceRequest{
		OrganizationID: testOrg,
		End:            &end,
	})
	require.NoError(t, err)

	assert.Equal(t, "campaign_performance_org-test_20260305.xlsx", filename)
	assert.NotEmpty(t, data)
	assert.Len(t, store.AllPerformances(), 2)

	_, _, err = flow.ExportCampaignPerformance(ctx, &dto.CampaignPerformanceRequest{})
	assert.ErrorIs(t, err, ErrOrganizationIDRequired)
}
