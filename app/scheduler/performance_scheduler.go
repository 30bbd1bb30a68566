// Package scheduler runs periodic background jobs
package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	businessflow "github.com/codetix2020-hash/finanzasmarketing-sub001/business_flow"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/repository"
	"go.uber.org/zap"
)

// PerformanceScheduler periodically refreshes the campaign performance snapshots of
// every organization that has active or paused campaigns
type PerformanceScheduler struct {
	campaignRepo repository.CampaignRepository
	reportFlow   businessflow.ReportFlow
	interval     time.Duration
	timeout      time.Duration
	logger       *zap.Logger
}

// NewPerformanceScheduler creates a scheduler that refreshes snapshots every interval,
// giving each organization at most timeout per run. Non-positive values fall back
// to one hour and one minute.
func NewPerformanceScheduler(
	campaignRepo repository.CampaignRepository,
	reportFlow businessflow.ReportFlow,
	interval time.Duration,
	timeout time.Duration,
	logger *zap.Logger,
) *PerformanceScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceScheduler{
		campaignRepo: campaignRepo,
		reportFlow:   reportFlow,
		interval:     interval,
		timeout:      timeout,
		logger:       logger.Named("scheduler"),
	}
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *PerformanceScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// RunOnce refreshes snapshots for every organization and returns how many succeeded.
// A failing organization is logged and skipped.
func (s *PerformanceScheduler) RunOnce(ctx context.Context) int {
	organizations, err := s.organizations(ctx)
	if err != nil {
		s.logger.Error("Failed to list organizations", zap.Error(err))
		return 0
	}

	refreshed := 0
	for _, organizationID := range organizations {
		if ctx.Err() != nil {
			break
		}

		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		resp, err := s.reportFlow.GetCampaignPerformance(runCtx, &dto.CampaignPerformanceRequest{OrganizationID: organizationID})
		cancel()
		if err != nil {
			s.logger.Warn("Performance refresh failed",
				zap.String("organization_id", organizationID),
				zap.Error(err),
			)
			continue
		}

		refreshed++
		s.logger.Debug("Performance refreshed",
			zap.String("organization_id", organizationID),
			zap.Int("campaigns", resp.TotalCampaigns),
		)
	}

	s.logger.Info("Performance refresh finished",
		zap.Int("organizations", len(organizations)),
		zap.Int("refreshed", refreshed),
	)
	return refreshed
}

func (s *PerformanceScheduler) organizations(ctx context.Context) ([]string, error) {
	campaigns, err := s.campaignRepo.ByFilter(ctx, models.CampaignFilter{
		Statuses: []models.CampaignStatus{models.CampaignStatusActive, models.CampaignStatusPaused},
	}, "", 0, 0)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(campaigns))
	organizations := make([]string, 0, len(campaigns))
	for _, c := range campaigns {
		if _, ok := seen[c.OrganizationID]; ok {
			continue
		}
		seen[c.OrganizationID] = struct{}{}
		organizations = append(organizations, c.OrganizationID)
	}
	sort.Strings(organizations)
	return organizations, nil
}
