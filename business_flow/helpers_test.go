package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/config"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	testingutil "github.com/codetix2020-hash/finanzasmarketing-sub001/testing"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOrg = "org-test"

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// seedTouch stores an event and advances the journey exactly as TrackEvent does,
// but with a caller chosen timestamp
func seedTouch(t *testing.T, store *testingutil.MemoryStore, e *models.AttributionEvent) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Events().Save(ctx, e))
	if e.UserID != nil {
		_, err := store.Journeys().ApplyTouchpoint(ctx, e.Touchpoint())
		require.NoError(t, err)
	}
}

func newTestReportFlow(store *testingutil.MemoryStore, rc *redis.Client) ReportFlow {
	return NewReportFlow(
		store.Campaigns(),
		store.Events(),
		store.Journeys(),
		store.Performances(),
		NewCampaignNameJoiner(),
		rc,
		config.AttributionConfig{
			PerformanceWindow: 30 * 24 * time.Hour,
			ReportCacheTTL:    5 * time.Minute,
			TopCampaigns:      5,
		},
		config.CacheConfig{RedisPrefix: "attribution-test:"},
		zap.NewNop(),
	)
}

func newTestAttributionFlow(store *testingutil.MemoryStore) AttributionFlow {
	return NewAttributionFlow(store.Events(), store.Journeys(), zap.NewNop())
}
