// Package businessflow contains the core business logic and use cases for attribution workflows
package businessflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/repository"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AttributionFlow handles attribution of conversion value to touchpoints
type AttributionFlow interface {
	CalculateAttribution(ctx context.Context, req *dto.CalculateAttributionRequest) (*dto.AttributionResultResponse, error)
}

// AttributionFlowImpl implements the attribution business flow
type AttributionFlowImpl struct {
	eventRepo   repository.AttributionEventRepository
	journeyRepo repository.CustomerJourneyRepository
	logger      *zap.Logger
}

// NewAttributionFlow creates a new attribution flow instance
func NewAttributionFlow(
	eventRepo repository.AttributionEventRepository,
	journeyRepo repository.CustomerJourneyRepository,
	logger *zap.Logger,
) AttributionFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttributionFlowImpl{
		eventRepo:   eventRepo,
		journeyRepo: journeyRepo,
		logger:      logger.Named("attribution"),
	}
}

// CalculateAttribution runs every attribution model over the user's touchpoints
// and stores the resulting values on the journey. Recomputing overwrites.
func (s *AttributionFlowImpl) CalculateAttribution(ctx context.Context, req *dto.CalculateAttributionRequest) (*dto.AttributionResultResponse, error) {
	if err := s.validateCalculateAttributionRequest(req); err != nil {
		return nil, NewBusinessError(CodeValidation, "Attribution request validation failed", err)
	}

	started := time.Now()
	userID := strings.TrimSpace(req.UserID)

	events, err := s.eventRepo.ByUserID(ctx, req.OrganizationID, userID)
	if err != nil {
		return nil, persistenceError("Failed to load user events", err)
	}
	if len(events) == 0 {
		return nil, NewBusinessError(CodeUserEventsNotFound, "No events found for user", ErrUserEventsNotFound)
	}

	value := decimal.NewFromFloat(*req.ConversionValue).Round(utils.CurrencyScale)
	result := allocate(events, value)

	attributedAt := utils.UTCNow()
	v := toMoney(value)
	values := models.AttributionValues{
		FirstTouchValue: v,
		LastTouchValue:  v,
		LinearValue:     toMoney(result.Linear[0].Value),
		TimeDecayValue:  toMoney(result.TimeDecay[len(result.TimeDecay)-1].Value),
		ConversionValue: v,
		LifetimeValue:   v,
		AttributedAt:    attributedAt,
	}

	if err := s.journeyRepo.UpdateAttribution(ctx, req.OrganizationID, userID, values); err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return nil, NewBusinessError(CodeJourneyNotFound, "Customer journey not found", ErrJourneyNotFound)
		}
		return nil, persistenceError("Failed to store attribution", err)
	}

	attributionCalculationsTotal.Inc()
	attributionCalculationDuration.Observe(time.Since(started).Seconds())

	s.logger.Info("attribution calculated",
		zap.String("organization_id", req.OrganizationID),
		zap.String("user_id", userID),
		zap.Int("touchpoints", len(events)),
		zap.Float64("conversion_value", v),
		zap.Duration("duration", time.Since(started)),
	)

	return &dto.AttributionResultResponse{
		UserID:          userID,
		ConversionValue: v,
		Touchpoints:     len(events),
		FirstTouch:      toCreditDTO(result.FirstTouch),
		LastTouch:       toCreditDTO(result.LastTouch),
		Linear:          toCreditDTOs(result.Linear),
		TimeDecay:       toCreditDTOs(result.TimeDecay),
		AttributedAt:    attributedAt,
	}, nil
}

func (s *AttributionFlowImpl) validateCalculateAttributionRequest(req *dto.CalculateAttributionRequest) error {
	if strings.TrimSpace(req.OrganizationID) == "" {
		return ErrOrganizationIDRequired
	}
	if strings.TrimSpace(req.UserID) == "" {
		return ErrUserIDRequired
	}
	if req.ConversionValue == nil {
		return ErrConversionValueRequired
	}
	if *req.ConversionValue < 0 {
		return ErrNegativeConversionValue
	}
	return nil
}

func toCreditDTO(c credit) dto.AttributionCredit {
	return dto.AttributionCredit{
		Source:     c.Source,
		Campaign:   c.Campaign,
		Value:      toMoney(c.Value),
		Weight:     c.Weight,
		OccurredAt: c.OccurredAt.UTC(),
	}
}

func toCreditDTOs(cs []credit) []dto.AttributionCredit {
	out := make([]dto.AttributionCredit, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCreditDTO(c))
	}
	return out
}
