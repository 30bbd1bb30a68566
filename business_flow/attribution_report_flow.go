package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/services"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/config"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/repository"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 100

// ReportFlow handles organization level performance and attribution reports
type ReportFlow interface {
	GetCampaignPerformance(ctx context.Context, req *dto.CampaignPerformanceRequest) (*dto.CampaignPerformanceResponse, error)
	GetAttributionReport(ctx context.Context, req *dto.AttributionReportRequest) (*dto.AttributionReportResponse, error)
	ListCampaignPerformance(ctx context.Context, req *dto.ListCampaignPerformanceRequest) (*dto.ListCampaignPerformanceResponse, error)
	ExportCampaignPerformance(ctx context.Context, req *dto.CampaignPerformanceRequest) (string, []byte, error)
}

// ReportFlowImpl implements the reporting business flow
type ReportFlowImpl struct {
	campaignRepo    repository.CampaignRepository
	eventRepo       repository.AttributionEventRepository
	journeyRepo     repository.CustomerJourneyRepository
	performanceRepo repository.CampaignPerformanceRepository
	calculator      *roiCalculator
	exporter        services.ReportExporter
	rc              *redis.Client
	cfg             config.AttributionConfig
	cacheConfig     config.CacheConfig
	logger          *zap.Logger
}

// NewReportFlow creates a new report flow instance. A nil redis client disables report caching.
func NewReportFlow(
	campaignRepo repository.CampaignRepository,
	eventRepo repository.AttributionEventRepository,
	journeyRepo repository.CustomerJourneyRepository,
	performanceRepo repository.CampaignPerformanceRepository,
	joiner CampaignEventJoiner,
	rc *redis.Client,
	cfg config.AttributionConfig,
	cacheConfig config.CacheConfig,
	logger *zap.Logger,
) ReportFlow {
	if cfg.PerformanceWindow <= 0 {
		cfg.PerformanceWindow = utils.DefaultPerformanceWindow
	}
	if cfg.TopCampaigns <= 0 {
		cfg.TopCampaigns = utils.DefaultTopCampaigns
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportFlowImpl{
		campaignRepo:    campaignRepo,
		eventRepo:       eventRepo,
		journeyRepo:     journeyRepo,
		performanceRepo: performanceRepo,
		calculator:      newROICalculator(eventRepo, joiner),
		exporter:        services.NewXLSXReportExporter(),
		rc:              rc,
		cfg:             cfg,
		cacheConfig:     cacheConfig,
		logger:          logger.Named("report"),
	}
}

// GetCampaignPerformance computes ROI for every active or paused campaign and
// stores a snapshot per campaign and period. Campaigns that fail are logged and left out.
func (s *ReportFlowImpl) GetCampaignPerformance(ctx context.Context, req *dto.CampaignPerformanceRequest) (*dto.CampaignPerformanceResponse, error) {
	if strings.TrimSpace(req.OrganizationID) == "" {
		return nil, NewBusinessError(CodeValidation, "Performance request validation failed", ErrOrganizationIDRequired)
	}
	timeRange, err := resolveTimeRange(req.Start, req.End)
	if err != nil {
		return nil, NewBusinessError(CodeInvalidTimeRange, "Invalid time range", err)
	}

	resp, err := s.aggregatePerformance(ctx, req.OrganizationID, timeRange)
	if err != nil {
		return nil, persistenceError("Failed to aggregate campaign performance", err)
	}
	return resp, nil
}

func (s *ReportFlowImpl) aggregatePerformance(ctx context.Context, organizationID string, timeRange *models.TimeRange) (*dto.CampaignPerformanceResponse, error) {
	periodStart, periodEnd := s.period(timeRange)

	campaigns, err := s.campaignRepo.ByFilter(ctx, models.CampaignFilter{
		OrganizationID: &organizationID,
		Statuses:       models.ReportableCampaignStatuses,
	}, "", 0, 0)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CampaignPerformanceItem, 0, len(campaigns))
	totalRevenue, totalSpend := decimal.Zero, decimal.Zero
	for _, campaign := range campaigns {
		roi, err := s.calculator.compute(ctx, campaign, timeRange)
		if err != nil {
			s.skipCampaign(campaign, "roi computation failed", err)
			continue
		}

		snapshot := &models.CampaignPerformance{
			OrganizationID: organizationID,
			CampaignID:     campaign.ID,
			CampaignName:   campaign.Name,
			PeriodStart:    periodStart,
			PeriodEnd:      periodEnd,
			TotalEvents:    roi.TotalEvents,
			Conversions:    roi.Conversions,
			Revenue:        roi.Revenue,
			Spend:          roi.Spend,
			ROI:            roi.ROI,
			ROAS:           roi.ROAS,
			BudgetKind:     models.BudgetKind(roi.BudgetKind),
		}
		if err := s.performanceRepo.Upsert(ctx, snapshot); err != nil {
			s.skipCampaign(campaign, "snapshot upsert failed", err)
			continue
		}

		items = append(items, dto.CampaignPerformanceItem{
			CampaignROIResponse: *roi,
			PeriodStart:         periodStart,
			PeriodEnd:           periodEnd,
		})
		totalRevenue = totalRevenue.Add(decimal.NewFromFloat(roi.Revenue))
		totalSpend = totalSpend.Add(decimal.NewFromFloat(roi.Spend))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ROI != items[j].ROI {
			return items[i].ROI > items[j].ROI
		}
		return items[i].CampaignName < items[j].CampaignName
	})

	return &dto.CampaignPerformanceResponse{
		Campaigns:      items,
		TotalCampaigns: len(items),
		TotalRevenue:   toMoney(totalRevenue),
		TotalSpend:     toMoney(totalSpend),
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
	}, nil
}

// period returns the snapshot bounds. A missing end is now and a missing start is
// one performance window before the end, truncated to the UTC day so that
// repeated calls on one day update the same snapshot.
func (s *ReportFlowImpl) period(timeRange *models.TimeRange) (time.Time, time.Time) {
	end := utils.UTCNow()
	if timeRange != nil && timeRange.End != nil {
		end = timeRange.End.UTC()
	}
	start := utils.StartOfDayUTC(end.Add(-s.cfg.PerformanceWindow))
	if timeRange != nil && timeRange.Start != nil {
		start = timeRange.Start.UTC()
	}
	return start, end
}

func (s *ReportFlowImpl) skipCampaign(campaign *models.Campaign, reason string, err error) {
	campaignAggregationFailuresTotal.Inc()
	s.logger.Warn("campaign omitted from performance report",
		zap.String("organization_id", campaign.OrganizationID),
		zap.Uint("campaign_id", campaign.ID),
		zap.String("campaign", campaign.Name),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

// GetAttributionReport summarises revenue, attribution and journeys of an organization
func (s *ReportFlowImpl) GetAttributionReport(ctx context.Context, req *dto.AttributionReportRequest) (*dto.AttributionReportResponse, error) {
	if strings.TrimSpace(req.OrganizationID) == "" {
		return nil, NewBusinessError(CodeValidation, "Report request validation failed", ErrOrganizationIDRequired)
	}
	timeRange, err := resolveTimeRange(req.Start, req.End)
	if err != nil {
		return nil, NewBusinessError(CodeInvalidTimeRange, "Invalid time range", err)
	}

	cacheKey := s.reportCacheKey(req.OrganizationID, timeRange)
	if cached := s.cachedReport(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	report, err := s.buildReport(ctx, req.OrganizationID, timeRange)
	if err != nil {
		return nil, persistenceError("Failed to build attribution report", err)
	}

	s.storeReport(ctx, cacheKey, report)
	return report, nil
}

func (s *ReportFlowImpl) buildReport(ctx context.Context, organizationID string, timeRange *models.TimeRange) (*dto.AttributionReportResponse, error) {
	filter := models.AttributionEventFilter{OrganizationID: &organizationID}
	timeRange.Apply(&filter)

	revenue, err := s.eventRepo.RevenueSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats, err := s.journeyRepo.Stats(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	performance, err := s.aggregatePerformance(ctx, organizationID, timeRange)
	if err != nil {
		return nil, err
	}

	totalSpend, err := s.organizationSpend(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	_, overallROAS := returnRatios(decimal.NewFromFloat(revenue.Revenue), totalSpend)

	top := performance.Campaigns
	if len(top) > s.cfg.TopCampaigns {
		top = top[:s.cfg.TopCampaigns]
	}

	var avgTime float64
	if stats.AvgTimeToConversion != nil {
		avgTime = *stats.AvgTimeToConversion
	}

	return &dto.AttributionReportResponse{
		TotalRevenue:     toMoney(decimal.NewFromFloat(revenue.Revenue)),
		TotalConversions: revenue.Conversions,
		TotalSpend:       toMoney(totalSpend),
		OverallROAS:      overallROAS,
		RevenueByModel: dto.RevenueByModel{
			FirstTouch: toMoney(decimal.NewFromFloat(stats.FirstTouchRevenue)),
			LastTouch:  toMoney(decimal.NewFromFloat(stats.LastTouchRevenue)),
			Linear:     toMoney(decimal.NewFromFloat(stats.LinearRevenue)),
			TimeDecay:  toMoney(decimal.NewFromFloat(stats.TimeDecayRevenue)),
		},
		TopCampaigns:        top,
		TotalJourneys:       stats.TotalJourneys,
		ConvertedJourneys:   stats.ConvertedJourneys,
		AvgTouchpoints:      stats.AvgTouchpoints,
		AvgTimeToConversion: avgTime,
		GeneratedAt:         utils.UTCNow(),
	}, nil
}

// organizationSpend sums the budget spend of every campaign of the organization, whatever its status
func (s *ReportFlowImpl) organizationSpend(ctx context.Context, organizationID string) (decimal.Decimal, error) {
	campaigns, err := s.campaignRepo.ByFilter(ctx, models.CampaignFilter{OrganizationID: &organizationID}, "", 0, 0)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, c := range campaigns {
		total = total.Add(c.ResolvedBudget().Spend())
	}
	return total, nil
}

func (s *ReportFlowImpl) reportCacheKey(organizationID string, timeRange *models.TimeRange) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "open"
		}
		return t.UTC().Format(time.RFC3339)
	}

	start, end := "open", "open"
	if timeRange != nil {
		start, end = bound(timeRange.Start), bound(timeRange.End)
	}
	return fmt.Sprintf("%sreport:%s:%s:%s", s.cacheConfig.RedisPrefix, organizationID, start, end)
}

func (s *ReportFlowImpl) cachedReport(ctx context.Context, key string) *dto.AttributionReportResponse {
	if s.rc == nil || s.cfg.ReportCacheTTL <= 0 {
		return nil
	}

	bs, err := s.rc.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
		reportCacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil
	}

	var out dto.AttributionReportResponse
	if err := json.Unmarshal(bs, &out); err != nil {
		s.logger.Warn("report cache entry is corrupt", zap.String("key", key), zap.Error(err))
		reportCacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil
	}

	reportCacheLookupsTotal.WithLabelValues("hit").Inc()
	return &out
}

func (s *ReportFlowImpl) storeReport(ctx context.Context, key string, report *dto.AttributionReportResponse) {
	if s.rc == nil || s.cfg.ReportCacheTTL <= 0 {
		return
	}

	bs, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("failed to encode report for cache", zap.Error(err))
		return
	}
	if err := s.rc.Set(ctx, key, bs, s.cfg.ReportCacheTTL).Err(); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// ListCampaignPerformance returns stored snapshots, newest period first
func (s *ReportFlowImpl) ListCampaignPerformance(ctx context.Context, req *dto.ListCampaignPerformanceRequest) (*dto.ListCampaignPerformanceResponse, error) {
	if strings.TrimSpace(req.OrganizationID) == "" {
		return nil, NewBusinessError(CodeValidation, "History request validation failed", ErrOrganizationIDRequired)
	}

	limit := req.Limit
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	rows, err := s.performanceRepo.ByFilter(ctx, models.CampaignPerformanceFilter{
		OrganizationID: &req.OrganizationID,
		CampaignID:     req.CampaignID,
	}, "", limit, 0)
	if err != nil {
		return nil, persistenceError("Failed to load performance history", err)
	}

	snapshots := make([]dto.PerformanceSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, ToPerformanceSnapshot(row))
	}
	return &dto.ListCampaignPerformanceResponse{Snapshots: snapshots}, nil
}

// ExportCampaignPerformance aggregates performance like GetCampaignPerformance and
// returns it as an XLSX workbook together with a download file name
func (s *ReportFlowImpl) ExportCampaignPerformance(ctx context.Context, req *dto.CampaignPerformanceRequest) (string, []byte, error) {
	perf, err := s.GetCampaignPerformance(ctx, req)
	if err != nil {
		return "", nil, err
	}

	data, err := s.exporter.ExportCampaignPerformance(perf)
	if err != nil {
		s.logger.Error("failed to export campaign performance", zap.String("organization_id", req.OrganizationID), zap.Error(err))
		return "", nil, NewBusinessError(CodeExportFailure, "Failed to export campaign performance", err)
	}

	filename := fmt.Sprintf("campaign_performance_%s_%s.xlsx", req.OrganizationID, perf.PeriodEnd.Format("20060102"))
	return filename, data, nil
}
