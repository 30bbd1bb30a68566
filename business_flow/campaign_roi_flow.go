package businessflow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CampaignROIFlow handles campaign return on investment
type CampaignROIFlow interface {
	GetROI(ctx context.Context, req *dto.GetCampaignROIRequest) (*dto.CampaignROIResponse, error)
}

// CampaignROIFlowImpl implements the campaign ROI business flow
type CampaignROIFlowImpl struct {
	campaignRepo repository.CampaignRepository
	calculator   *roiCalculator
	logger       *zap.Logger
}

// NewCampaignROIFlow creates a new campaign ROI flow instance
func NewCampaignROIFlow(
	campaignRepo repository.CampaignRepository,
	eventRepo repository.AttributionEventRepository,
	joiner CampaignEventJoiner,
	logger *zap.Logger,
) CampaignROIFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignROIFlowImpl{
		campaignRepo: campaignRepo,
		calculator:   newROICalculator(eventRepo, joiner),
		logger:       logger.Named("roi"),
	}
}

// GetROI computes revenue, spend, ROI and ROAS of a campaign, with a per source breakdown
func (s *CampaignROIFlowImpl) GetROI(ctx context.Context, req *dto.GetCampaignROIRequest) (*dto.CampaignROIResponse, error) {
	if strings.TrimSpace(req.OrganizationID) == "" {
		return nil, NewBusinessError(CodeValidation, "ROI request validation failed", ErrOrganizationIDRequired)
	}
	timeRange, err := resolveTimeRange(req.Start, req.End)
	if err != nil {
		return nil, NewBusinessError(CodeInvalidTimeRange, "Invalid time range", err)
	}

	campaign, err := s.campaignRepo.ByID(ctx, req.CampaignID)
	if err != nil {
		return nil, persistenceError("Failed to load campaign", err)
	}
	if campaign == nil || campaign.OrganizationID != req.OrganizationID {
		return nil, NewBusinessError(CodeCampaignNotFound, "Campaign not found", ErrCampaignNotFound)
	}

	resp, err := s.calculator.compute(ctx, campaign, timeRange)
	if err != nil {
		return nil, persistenceError("Failed to compute campaign ROI", err)
	}

	s.logger.Debug("campaign roi computed",
		zap.Uint("campaign_id", campaign.ID),
		zap.Float64("roi", resp.ROI),
		zap.Float64("roas", resp.ROAS),
	)

	return resp, nil
}

// roiCalculator joins a campaign with its events and derives the ROI figures
type roiCalculator struct {
	eventRepo repository.AttributionEventRepository
	joiner    CampaignEventJoiner
}

func newROICalculator(eventRepo repository.AttributionEventRepository, joiner CampaignEventJoiner) *roiCalculator {
	if joiner == nil {
		joiner = NewCampaignNameJoiner()
	}
	return &roiCalculator{eventRepo: eventRepo, joiner: joiner}
}

type sourceTotals struct {
	events      int64
	conversions int64
	revenue     decimal.Decimal
}

func (c *roiCalculator) compute(ctx context.Context, campaign *models.Campaign, timeRange *models.TimeRange) (*dto.CampaignROIResponse, error) {
	events, err := c.eventRepo.ByFilter(ctx, c.joiner.EventFilter(campaign, timeRange), "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load events of campaign %d: %w", campaign.ID, err)
	}

	var (
		conversions int64
		revenue     = decimal.Zero
		bySource    = make(map[string]*sourceTotals)
	)
	for _, e := range events {
		source := e.SourceOrDirect()
		st, ok := bySource[source]
		if !ok {
			st = &sourceTotals{revenue: decimal.Zero}
			bySource[source] = st
		}
		st.events++

		if e.EventType != models.EventTypePurchase {
			continue
		}
		conversions++
		st.conversions++
		if e.EventValue != nil {
			v := decimal.NewFromFloat(*e.EventValue)
			revenue = revenue.Add(v)
			st.revenue = st.revenue.Add(v)
		}
	}

	budget := campaign.ResolvedBudget()
	spend := budget.Spend()
	roi, roas := returnRatios(revenue, spend)

	return &dto.CampaignROIResponse{
		CampaignID:      campaign.ID,
		CampaignName:    campaign.Name,
		Status:          campaign.Status.String(),
		BudgetKind:      string(budget.Kind),
		TotalEvents:     int64(len(events)),
		Conversions:     conversions,
		Revenue:         toMoney(revenue),
		Spend:           toMoney(spend),
		ROI:             roi,
		ROAS:            roas,
		SourceBreakdown: sourceBreakdown(bySource, int64(len(events)), spend),
	}, nil
}

// sourceBreakdown splits spend across sources by their share of events.
// Rows are ordered by ROI descending, then by source name.
func sourceBreakdown(bySource map[string]*sourceTotals, totalEvents int64, spend decimal.Decimal) []dto.SourceROI {
	rows := make([]dto.SourceROI, 0, len(bySource))
	if totalEvents == 0 {
		return rows
	}

	for source, st := range bySource {
		sourceSpend := spend.Mul(decimal.NewFromInt(st.events)).Div(decimal.NewFromInt(totalEvents))
		roi, roas := returnRatios(st.revenue, sourceSpend)
		rows = append(rows, dto.SourceROI{
			Source:      source,
			Events:      st.events,
			Conversions: st.conversions,
			Revenue:     toMoney(st.revenue),
			Spend:       toMoney(sourceSpend),
			ROI:         roi,
			ROAS:        roas,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ROI != rows[j].ROI {
			return rows[i].ROI > rows[j].ROI
		}
		return rows[i].Source < rows[j].Source
	})
	return rows
}
