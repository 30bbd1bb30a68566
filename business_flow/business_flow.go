// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/dto"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
)

// ClientMetadata holds the client information of the request that produced an event
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// resolveTimeRange validates optional bounds and returns nil when both are open
func resolveTimeRange(start, end *time.Time) (*models.TimeRange, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrStartDateAfterEndDate
	}
	if start == nil && end == nil {
		return nil, nil
	}
	return &models.TimeRange{
		Start: utils.TimeToUTCPtr(start),
		End:   utils.TimeToUTCPtr(end),
	}, nil
}

// ToJourneyResponse converts a journey model to its API form
func ToJourneyResponse(j *models.CustomerJourney) *dto.JourneyResponse {
	return &dto.JourneyResponse{
		UserID:             j.UserID,
		FirstTouchSource:   utils.StringOr(j.FirstTouchSource, utils.DirectSource),
		FirstTouchCampaign: utils.StringOr(j.FirstTouchCampaign, utils.NoneCampaign),
		FirstTouchDate:     j.FirstTouchDate.UTC(),
		LastTouchSource:    utils.StringOr(j.LastTouchSource, utils.DirectSource),
		LastTouchCampaign:  utils.StringOr(j.LastTouchCampaign, utils.NoneCampaign),
		LastTouchDate:      j.LastTouchDate.UTC(),
		TouchpointsCount:   j.TouchpointsCount,
		HasConverted:       j.HasConverted,
		ConversionDate:     utils.TimeToUTCPtr(j.ConversionDate),
		DaysToConversion:   j.DaysToConversion,
		FirstTouchValue:    j.FirstTouchValue,
		LastTouchValue:     j.LastTouchValue,
		LinearValue:        j.LinearValue,
		TimeDecayValue:     j.TimeDecayValue,
		ConversionValue:    j.ConversionValue,
		LifetimeValue:      j.LifetimeValue,
		AttributedAt:       utils.TimeToUTCPtr(j.AttributedAt),
	}
}

// ToAttributionEventResponse converts an event model to its API form
func ToAttributionEventResponse(e *models.AttributionEvent) dto.AttributionEventResponse {
	return dto.AttributionEventResponse{
		EventID:     e.EventID.String(),
		VisitorID:   e.VisitorID,
		SessionID:   e.SessionID,
		EventType:   e.EventType.String(),
		EventValue:  e.EventValue,
		Source:      e.SourceOrDirect(),
		Medium:      e.Medium,
		Campaign:    e.CampaignOrNone(),
		UTMTerm:     e.UTMTerm,
		UTMContent:  e.UTMContent,
		LandingPage: e.LandingPage,
		Referrer:    e.Referrer,
		Device:      e.Device,
		Country:     e.Country,
		City:        e.City,
		CreatedAt:   e.CreatedAt.UTC(),
	}
}

// ToPerformanceSnapshot converts a stored snapshot to its API form
func ToPerformanceSnapshot(p *models.CampaignPerformance) dto.PerformanceSnapshot {
	return dto.PerformanceSnapshot{
		CampaignID:   p.CampaignID,
		CampaignName: p.CampaignName,
		PeriodStart:  p.PeriodStart.UTC(),
		PeriodEnd:    p.PeriodEnd.UTC(),
		BudgetKind:   string(p.BudgetKind),
		TotalEvents:  p.TotalEvents,
		Conversions:  p.Conversions,
		Revenue:      p.Revenue,
		Spend:        p.Spend,
		ROI:          p.ROI,
		ROAS:         p.ROAS,
		UpdatedAt:    p.UpdatedAt.UTC(),
	}
}
