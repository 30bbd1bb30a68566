package dto

import (
	"time"
)

// TrackEventRequest represents a touchpoint sent by a tracking client
type TrackEventRequest struct {
	OrganizationID string   `json:"-"`
	VisitorID      string   `json:"visitor_id" validate:"required,max=255"`
	UserID         *string  `json:"user_id,omitempty" validate:"omitempty,max=255"`
	SessionID      *string  `json:"session_id,omitempty" validate:"omitempty,max=255"`
	EventType      string   `json:"event_type" validate:"required,oneof=page_view ad_click signup trial_start purchase cta_click"`
	EventValue     *float64 `json:"event_value,omitempty" validate:"omitempty,gte=0"`

	Source   *string `json:"source,omitempty" validate:"omitempty,max=255"`
	Medium   *string `json:"medium,omitempty" validate:"omitempty,max=255"`
	Campaign *string `json:"campaign,omitempty" validate:"omitempty,max=255"`

	UTMSource   *string `json:"utm_source,omitempty" validate:"omitempty,max=255"`
	UTMMedium   *string `json:"utm_medium,omitempty" validate:"omitempty,max=255"`
	UTMCampaign *string `json:"utm_campaign,omitempty" validate:"omitempty,max=255"`
	UTMTerm     *string `json:"utm_term,omitempty" validate:"omitempty,max=255"`
	UTMContent  *string `json:"utm_content,omitempty" validate:"omitempty,max=255"`

	AdGroup     *string `json:"ad_group,omitempty" validate:"omitempty,max=255"`
	Keyword     *string `json:"keyword,omitempty" validate:"omitempty,max=255"`
	AdID        *string `json:"ad_id,omitempty" validate:"omitempty,max=255"`
	LandingPage *string `json:"landing_page,omitempty"`
	Referrer    *string `json:"referrer,omitempty"`

	Device    *string `json:"device,omitempty" validate:"omitempty,max=64"`
	Browser   *string `json:"browser,omitempty" validate:"omitempty,max=64"`
	OS        *string `json:"os,omitempty" validate:"omitempty,max=64"`
	Country   *string `json:"country,omitempty" validate:"omitempty,max=64"`
	City      *string `json:"city,omitempty" validate:"omitempty,max=128"`
	IPAddress *string `json:"ip_address,omitempty" validate:"omitempty,ip"`
	UserAgent *string `json:"user_agent,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// TrackEventResponse represents the result of recording an event
type TrackEventResponse struct {
	Message        string `json:"message"`
	EventID        string `json:"event_id"`
	JourneyUpdated bool   `json:"journey_updated"`
	Converted      bool   `json:"converted"`
}

// GetJourneyRequest represents the request to read a user's journey
type GetJourneyRequest struct {
	OrganizationID string `json:"-"`
	UserID         string `json:"-"`
}

// JourneyResponse represents a customer journey in responses
type JourneyResponse struct {
	UserID             string     `json:"user_id"`
	FirstTouchSource   string     `json:"first_touch_source"`
	FirstTouchCampaign string     `json:"first_touch_campaign"`
	FirstTouchDate     time.Time  `json:"first_touch_date"`
	LastTouchSource    string     `json:"last_touch_source"`
	LastTouchCampaign  string     `json:"last_touch_campaign"`
	LastTouchDate      time.Time  `json:"last_touch_date"`
	TouchpointsCount   int        `json:"touchpoints_count"`
	HasConverted       bool       `json:"has_converted"`
	ConversionDate     *time.Time `json:"conversion_date,omitempty"`
	DaysToConversion   *int       `json:"days_to_conversion,omitempty"`
	FirstTouchValue    *float64   `json:"first_touch_value,omitempty"`
	LastTouchValue     *float64   `json:"last_touch_value,omitempty"`
	LinearValue        *float64   `json:"linear_value,omitempty"`
	TimeDecayValue     *float64   `json:"time_decay_value,omitempty"`
	ConversionValue    *float64   `json:"conversion_value,omitempty"`
	LifetimeValue      *float64   `json:"lifetime_value,omitempty"`
	AttributedAt       *time.Time `json:"attributed_at,omitempty"`

	Events []AttributionEventResponse `json:"events"`
}

// AttributionEventResponse represents one recorded touchpoint of a journey
type AttributionEventResponse struct {
	EventID     string    `json:"event_id"`
	VisitorID   string    `json:"visitor_id"`
	SessionID   *string   `json:"session_id,omitempty"`
	EventType   string    `json:"event_type"`
	EventValue  *float64  `json:"event_value,omitempty"`
	Source      string    `json:"source"`
	Medium      *string   `json:"medium,omitempty"`
	Campaign    string    `json:"campaign"`
	UTMTerm     *string   `json:"utm_term,omitempty"`
	UTMContent  *string   `json:"utm_content,omitempty"`
	LandingPage *string   `json:"landing_page,omitempty"`
	Referrer    *string   `json:"referrer,omitempty"`
	Device      *string   `json:"device,omitempty"`
	Country     *string   `json:"country,omitempty"`
	City        *string   `json:"city,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CalculateAttributionRequest represents the request to attribute a conversion value
type CalculateAttributionRequest struct {
	OrganizationID  string  `json:"-"`
	UserID          string  `json:"-"`
	ConversionValue *float64 `json:"conversion_value" validate:"required,gte=0"`
}

// AttributionCredit is the value one touchpoint receives under a model
type AttributionCredit struct {
	Source     string    `json:"source"`
	Campaign   string    `json:"campaign"`
	Value      float64   `json:"value"`
	Weight     float64   `json:"weight,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AttributionResultResponse represents the outcome of every attribution model
type AttributionResultResponse struct {
	UserID          string              `json:"user_id"`
	ConversionValue float64             `json:"conversion_value"`
	Touchpoints     int                 `json:"touchpoints"`
	FirstTouch      AttributionCredit   `json:"first_touch"`
	LastTouch       AttributionCredit   `json:"last_touch"`
	Linear          []AttributionCredit `json:"linear"`
	TimeDecay       []AttributionCredit `json:"time_decay"`
	AttributedAt    time.Time           `json:"attributed_at"`
}

// GetCampaignROIRequest represents the request to compute a campaign's ROI
type GetCampaignROIRequest struct {
	OrganizationID string     `json:"-"`
	CampaignID     uint       `json:"-"`
	Start          *time.Time `json:"start,omitempty"`
	End            *time.Time `json:"end,omitempty"`
}

// SourceROI is the ROI of one traffic source inside a campaign
type SourceROI struct {
	Source      string  `json:"source"`
	Events      int64   `json:"events"`
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	Spend       float64 `json:"spend"`
	ROI         float64 `json:"roi"`
	ROAS        float64 `json:"roas"`
}

// CampaignROIResponse represents the ROI of a campaign
type CampaignROIResponse struct {
	CampaignID      uint        `json:"campaign_id"`
	CampaignName    string      `json:"campaign_name"`
	Status          string      `json:"status"`
	BudgetKind      string      `json:"budget_kind"`
	TotalEvents     int64       `json:"total_events"`
	Conversions     int64       `json:"conversions"`
	Revenue         float64     `json:"revenue"`
	Spend           float64     `json:"spend"`
	ROI             float64     `json:"roi"`
	ROAS            float64     `json:"roas"`
	SourceBreakdown []SourceROI `json:"source_breakdown"`
}

// CampaignPerformanceRequest represents the request to aggregate campaign performance
type CampaignPerformanceRequest struct {
	OrganizationID string     `json:"-"`
	Start          *time.Time `json:"start,omitempty"`
	End            *time.Time `json:"end,omitempty"`
}

// CampaignPerformanceItem is one campaign row of a performance report
type CampaignPerformanceItem struct {
	CampaignROIResponse
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// CampaignPerformanceResponse represents the performance of an organization's campaigns
type CampaignPerformanceResponse struct {
	Campaigns      []CampaignPerformanceItem `json:"campaigns"`
	TotalCampaigns int                       `json:"total_campaigns"`
	TotalRevenue   float64                   `json:"total_revenue"`
	TotalSpend     float64                   `json:"total_spend"`
	PeriodStart    time.Time                 `json:"period_start"`
	PeriodEnd      time.Time                 `json:"period_end"`
}

// ListCampaignPerformanceRequest represents the request to read stored snapshots
type ListCampaignPerformanceRequest struct {
	OrganizationID string `json:"-"`
	CampaignID     *uint  `json:"campaign_id,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// PerformanceSnapshot represents a stored campaign performance snapshot
type PerformanceSnapshot struct {
	CampaignID   uint      `json:"campaign_id"`
	CampaignName string    `json:"campaign_name"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	BudgetKind   string    `json:"budget_kind"`
	TotalEvents  int64     `json:"total_events"`
	Conversions  int64     `json:"conversions"`
	Revenue      float64   `json:"revenue"`
	Spend        float64   `json:"spend"`
	ROI          float64   `json:"roi"`
	ROAS         float64   `json:"roas"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListCampaignPerformanceResponse represents the performance history of an organization
type ListCampaignPerformanceResponse struct {
	Snapshots []PerformanceSnapshot `json:"snapshots"`
}

// AttributionReportRequest represents the request for the organization report
type AttributionReportRequest struct {
	OrganizationID string     `json:"-"`
	Start          *time.Time `json:"start,omitempty"`
	End            *time.Time `json:"end,omitempty"`
}

// RevenueByModel is the attributed revenue summed per model
type RevenueByModel struct {
	FirstTouch float64 `json:"first_touch"`
	LastTouch  float64 `json:"last_touch"`
	Linear     float64 `json:"linear"`
	TimeDecay  float64 `json:"time_decay"`
}

// AttributionReportResponse represents the organization attribution report
type AttributionReportResponse struct {
	TotalRevenue        float64                   `json:"total_revenue"`
	TotalConversions    int64                     `json:"total_conversions"`
	TotalSpend          float64                   `json:"total_spend"`
	OverallROAS         float64                   `json:"overall_roas"`
	RevenueByModel      RevenueByModel            `json:"revenue_by_model"`
	TopCampaigns        []CampaignPerformanceItem `json:"top_campaigns"`
	TotalJourneys       int64                     `json:"total_journeys"`
	ConvertedJourneys   int64                     `json:"converted_journeys"`
	AvgTouchpoints      float64                   `json:"avg_touchpoints"`
	AvgTimeToConversion float64                   `json:"avg_time_to_conversion"`
	GeneratedAt         time.Time                 `json:"generated_at"`
}
