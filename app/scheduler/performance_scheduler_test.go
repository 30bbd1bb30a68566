package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	businessflow "github.com/codetix2020-hash/finanzasmarketing-sub001/business_flow"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/config"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	testingutil "github.com/codetix2020-hash/finanzasmarketing-sub001/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedCampaigns(store *testingutil.MemoryStore) {
	store.AddCampaign(testingutil.NewCampaign("org-b", "spring", `{"total": 100}`, models.CampaignStatusActive))
	store.AddCampaign(testingutil.NewCampaign("org-a", "summer", `{"daily": 5}`, models.CampaignStatusPaused))
	store.AddCampaign(testingutil.NewCampaign("org-a", "autumn", `{"total": 10}`, models.CampaignStatusActive))
	store.AddCampaign(testingutil.NewCampaign("org-c", "winter", `{"total": 10}`, models.CampaignStatusDraft))
}

func TestRunOnceRefreshesEveryOrganization(t *testing.T) {
	store := testingutil.NewMemoryStore()
	seedCampaigns(store)
	now := time.Now().UTC()
	require.NoError(t, store.Events().Save(context.Background(), testingutil.NewPurchase("org-b", "u-1", "google", "spring", 300, now.Add(-time.Hour))))

	reportFlow := businessflow.NewReportFlow(store.Campaigns(), store.Events(), store.Journeys(), store.Performances(),
		businessflow.NewCampaignNameJoiner(), nil, config.AttributionConfig{}, config.CacheConfig{}, zap.NewNop())
	s := NewPerformanceScheduler(store.Campaigns(), reportFlow, time.Hour, time.Second, zap.NewNop())

	refreshed := s.RunOnce(context.Background())

	assert.Equal(t, 2, refreshed)
	byOrganization := map[string]int{}
	for _, snapshot := range store.AllPerformances() {
		byOrganization[snapshot.OrganizationID]++
	}
	assert.Equal(t, map[string]int{"org-a": 2, "org-b": 1}, byOrganization)
}

type mockReportFlow struct {
	businessflow.ReportFlow
	mock.Mock
}

func (m *mockReportFlow) GetCampaignPerformance(ctx context.Context, req *dto.CampaignPerformanceRequest) (*dto.CampaignPerformanceResponse, error) {
	args := m.Called(req.OrganizationID)
	resp, _ := args.Get(0).(*dto.CampaignPerformanceResponse)
	return resp, args.Error(1)
}

func TestRunOnceSkipsFailingOrganization(t *testing.T) {
	store := testingutil.NewMemoryStore()
	seedCampaigns(store)

	flow := &mockReportFlow{}
	flow.On("GetCampaignPerformance", "org-a").Return(nil, errors.New("database unavailable")).Once()
	flow.On("GetCampaignPerformance", "org-b").Return(&dto.CampaignPerformanceResponse{TotalCampaigns: 1}, nil).Once()

	s := NewPerformanceScheduler(store.Campaigns(), flow, time.Hour, time.Second, zap.NewNop())

	assert.Equal(t, 1, s.RunOnce(context.Background()))
	flow.AssertExpectations(t)
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	store := testingutil.NewMemoryStore()
	store.AddCampaign(testingutil.NewCampaign("org-a", "spring", `{"total": 100}`, models.CampaignStatusActive))

	called := make(chan struct{}, 1)
	flow := &mockReportFlow{}
	flow.On("GetCampaignPerformance", "org-a").Return(&dto.CampaignPerformanceResponse{}, nil).Run(func(mock.Arguments) {
		select {
		case called <- struct{}{}:
		default:
		}
	})

	s := NewPerformanceScheduler(store.Campaigns(), flow, time.Hour, time.Second, zap.NewNop())
	stop := s.Start(context.Background())

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		require.Fail(t, "scheduler did not run on start")
	}
	stop()
}
