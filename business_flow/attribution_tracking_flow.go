package businessflow

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/services"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/repository"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// TrackingFlow handles event ingestion and journey reads
type TrackingFlow interface {
	TrackEvent(ctx context.Context, req *dto.TrackEventRequest, metadata *ClientMetadata) (*dto.TrackEventResponse, error)
	GetJourney(ctx context.Context, req *dto.GetJourneyRequest) (*dto.JourneyResponse, error)
}

// TrackingFlowImpl implements the tracking business flow
type TrackingFlowImpl struct {
	eventRepo   repository.AttributionEventRepository
	journeyRepo repository.CustomerJourneyRepository
	txManager   repository.TransactionManager
	geo         services.GeoResolver
	logger      *zap.Logger
}

// NewTrackingFlow creates a new tracking flow instance
func NewTrackingFlow(
	eventRepo repository.AttributionEventRepository,
	journeyRepo repository.CustomerJourneyRepository,
	txManager repository.TransactionManager,
	geo services.GeoResolver,
	logger *zap.Logger,
) TrackingFlow {
	if geo == nil {
		geo = services.NewNoopGeoResolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingFlowImpl{
		eventRepo:   eventRepo,
		journeyRepo: journeyRepo,
		txManager:   txManager,
		geo:         geo,
		logger:      logger.Named("tracking"),
	}
}

// TrackEvent records an event and, for identified users, advances their journey
// in the same transaction. Either both writes happen or neither does.
func (s *TrackingFlowImpl) TrackEvent(ctx context.Context, req *dto.TrackEventRequest, metadata *ClientMetadata) (*dto.TrackEventResponse, error) {
	if err := s.validateTrackEventRequest(req); err != nil {
		return nil, NewBusinessError(CodeValidation, "Event validation failed", err)
	}

	event, err := s.buildEvent(req, metadata)
	if err != nil {
		return nil, NewBusinessError(CodeValidation, "Event validation failed", err)
	}
	s.enrichLocation(event)

	var journey *models.CustomerJourney
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.eventRepo.Save(txCtx, event); err != nil {
			return err
		}
		if event.UserID == nil {
			return nil
		}

		var err error
		journey, err = s.journeyRepo.ApplyTouchpoint(txCtx, event.Touchpoint())
		return err
	})
	if err != nil {
		s.logger.Error("failed to record event",
			zap.String("request_id", requestID(metadata)),
			zap.String("organization_id", event.OrganizationID),
			zap.String("event_type", event.EventType.String()),
			zap.Error(err),
		)
		return nil, persistenceError("Failed to record event", err)
	}

	eventsRecordedTotal.WithLabelValues(event.EventType.String()).Inc()

	resp := &dto.TrackEventResponse{
		Message: "Event recorded successfully",
		EventID: event.EventID.String(),
	}

	fields := []zap.Field{
		zap.String("event_id", resp.EventID),
		zap.String("request_id", requestID(metadata)),
		zap.String("organization_id", event.OrganizationID),
		zap.String("event_type", event.EventType.String()),
		zap.String("source", event.SourceOrDirect()),
		zap.String("campaign", event.CampaignOrNone()),
	}

	if journey != nil {
		resp.JourneyUpdated = true
		resp.Converted = convertedBy(journey, event)
		s.recordJourneyOutcome(journey, resp.Converted)
		fields = append(fields,
			zap.String("user_id", journey.UserID),
			zap.Int("touchpoints", journey.TouchpointsCount),
			zap.Bool("converted", resp.Converted),
		)
	}

	s.logger.Info("event recorded", fields...)

	return resp, nil
}

// GetJourney returns the journey of a user inside the caller's organization
// together with its events in touch order
func (s *TrackingFlowImpl) GetJourney(ctx context.Context, req *dto.GetJourneyRequest) (*dto.JourneyResponse, error) {
	if strings.TrimSpace(req.OrganizationID) == "" {
		return nil, NewBusinessError(CodeValidation, "Journey request validation failed", ErrOrganizationIDRequired)
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, NewBusinessError(CodeValidation, "Journey request validation failed", ErrUserIDRequired)
	}

	journey, err := s.journeyRepo.ByUserID(ctx, req.OrganizationID, userID)
	if err != nil {
		return nil, persistenceError("Failed to load customer journey", err)
	}
	if journey == nil {
		return nil, NewBusinessError(CodeJourneyNotFound, "Customer journey not found", ErrJourneyNotFound)
	}

	events, err := s.eventRepo.ByUserID(ctx, req.OrganizationID, userID)
	if err != nil {
		return nil, persistenceError("Failed to load journey events", err)
	}

	resp := ToJourneyResponse(journey)
	resp.Events = make([]dto.AttributionEventResponse, 0, len(events))
	for _, e := range events {
		resp.Events = append(resp.Events, ToAttributionEventResponse(e))
	}

	return resp, nil
}

func (s *TrackingFlowImpl) validateTrackEventRequest(req *dto.TrackEventRequest) error {
	if strings.TrimSpace(req.OrganizationID) == "" {
		return ErrOrganizationIDRequired
	}
	if strings.TrimSpace(req.VisitorID) == "" {
		return ErrVisitorIDRequired
	}
	if strings.TrimSpace(req.EventType) == "" {
		return ErrEventTypeRequired
	}
	if !models.EventType(strings.TrimSpace(req.EventType)).Valid() {
		return ErrInvalidEventType
	}
	if req.EventValue != nil && *req.EventValue < 0 {
		return ErrNegativeEventValue
	}
	return nil
}

func (s *TrackingFlowImpl) buildEvent(req *dto.TrackEventRequest, metadata *ClientMetadata) (*models.AttributionEvent, error) {
	event := &models.AttributionEvent{
		EventID:        uuid.New(),
		OrganizationID: req.OrganizationID,
		VisitorID:      strings.TrimSpace(req.VisitorID),
		UserID:         utils.FirstNonEmpty(req.UserID),
		SessionID:      utils.FirstNonEmpty(req.SessionID),
		EventType:      models.EventType(strings.TrimSpace(req.EventType)),
		EventValue:     req.EventValue,
		Source:         utils.FirstNonEmpty(req.Source),
		Medium:         utils.FirstNonEmpty(req.Medium),
		Campaign:       utils.FirstNonEmpty(req.Campaign),
		UTMSource:      utils.FirstNonEmpty(req.UTMSource),
		UTMMedium:      utils.FirstNonEmpty(req.UTMMedium),
		UTMCampaign:    utils.FirstNonEmpty(req.UTMCampaign),
		UTMTerm:        utils.FirstNonEmpty(req.UTMTerm),
		UTMContent:     utils.FirstNonEmpty(req.UTMContent),
		AdGroup:        utils.FirstNonEmpty(req.AdGroup),
		Keyword:        utils.FirstNonEmpty(req.Keyword),
		AdID:           utils.FirstNonEmpty(req.AdID),
		LandingPage:    utils.FirstNonEmpty(req.LandingPage),
		Referrer:       utils.FirstNonEmpty(req.Referrer),
		Device:         utils.FirstNonEmpty(req.Device),
		Browser:        utils.FirstNonEmpty(req.Browser),
		OS:             utils.FirstNonEmpty(req.OS),
		Country:        utils.FirstNonEmpty(req.Country),
		City:           utils.FirstNonEmpty(req.City),
		IPAddress:      utils.FirstNonEmpty(req.IPAddress),
		UserAgent:      utils.FirstNonEmpty(req.UserAgent),
		// Postgres keeps microseconds; the journey's conversion date is compared against this
		CreatedAt: utils.UTCNow().Truncate(time.Microsecond),
	}

	if metadata != nil {
		if event.IPAddress == nil {
			event.IPAddress = utils.FirstNonEmpty(&metadata.IPAddress)
		}
		if event.UserAgent == nil {
			event.UserAgent = utils.FirstNonEmpty(&metadata.UserAgent)
		}
	}

	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, err
		}
		event.Metadata = datatypes.JSON(raw)
	}

	event.BackfillFromUTM()
	return event, nil
}

// enrichLocation fills a missing country or city from the event's IP address
func (s *TrackingFlowImpl) enrichLocation(event *models.AttributionEvent) {
	if event.IPAddress == nil || (event.Country != nil && event.City != nil) {
		return
	}

	loc, err := s.geo.Lookup(*event.IPAddress)
	if err != nil {
		s.logger.Debug("geo lookup failed", zap.String("ip_address", *event.IPAddress), zap.Error(err))
		return
	}
	if loc == nil {
		return
	}

	if event.Country == nil {
		event.Country = utils.FirstNonEmpty(&loc.Country)
	}
	if event.City == nil {
		event.City = utils.FirstNonEmpty(&loc.City)
	}
}

func (s *TrackingFlowImpl) recordJourneyOutcome(journey *models.CustomerJourney, converted bool) {
	if journey.TouchpointsCount == 1 {
		journeyUpdatesTotal.WithLabelValues(journeyOutcomeCreated).Inc()
	} else {
		journeyUpdatesTotal.WithLabelValues(journeyOutcomeUpdated).Inc()
	}
	if converted {
		journeyUpdatesTotal.WithLabelValues(journeyOutcomeConverted).Inc()
		s.logger.Info("journey converted",
			zap.String("user_id", journey.UserID),
			zap.Intp("days_to_conversion", journey.DaysToConversion),
		)
	}
}

// convertedBy reports whether event is the touch that converted the journey
func convertedBy(journey *models.CustomerJourney, event *models.AttributionEvent) bool {
	return event.EventType.IsConversion() &&
		journey.HasConverted &&
		journey.ConversionDate != nil &&
		journey.ConversionDate.Equal(event.CreatedAt)
}

func requestID(metadata *ClientMetadata) string {
	if metadata == nil {
		return ""
	}
	return metadata.RequestID
}
