package models

import (
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"gorm.io/gorm"
)

// Touchpoint is the slice of an event that drives the journey state machine
type Touchpoint struct {
	UserID         string
	OrganizationID string
	Source         *string
	Campaign       *string
	EventType      EventType
	OccurredAt     time.Time
}

// CustomerJourney is the per-user aggregate of touches and conversion state
type CustomerJourney struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         string `gorm:"size:255;not null;uniqueIndex:uk_customer_journeys_org_user,priority:2" json:"user_id"`
	OrganizationID string `gorm:"size:64;not null;uniqueIndex:uk_customer_journeys_org_user,priority:1;index:idx_customer_journeys_org" json:"organization_id"`

	FirstTouchSource   *string   `gorm:"size:255" json:"first_touch_source,omitempty"`
	FirstTouchCampaign *string   `gorm:"size:255" json:"first_touch_campaign,omitempty"`
	FirstTouchDate     time.Time `gorm:"not null" json:"first_touch_date"`
	LastTouchSource    *string   `gorm:"size:255" json:"last_touch_source,omitempty"`
	LastTouchCampaign  *string   `gorm:"size:255" json:"last_touch_campaign,omitempty"`
	LastTouchDate      time.Time `gorm:"not null" json:"last_touch_date"`
	TouchpointsCount   int       `gorm:"not null;default:0" json:"touchpoints_count"`

	HasConverted     bool       `gorm:"not null;default:false;index:idx_customer_journeys_org" json:"has_converted"`
	ConversionDate   *time.Time `json:"conversion_date,omitempty"`
	DaysToConversion *int       `json:"days_to_conversion,omitempty"`

	FirstTouchValue *float64   `gorm:"type:numeric(14,2)" json:"first_touch_value,omitempty"`
	LastTouchValue  *float64   `gorm:"type:numeric(14,2)" json:"last_touch_value,omitempty"`
	LinearValue     *float64   `gorm:"type:numeric(14,2)" json:"linear_value,omitempty"`
	TimeDecayValue  *float64   `gorm:"type:numeric(14,2)" json:"time_decay_value,omitempty"`
	ConversionValue *float64   `gorm:"type:numeric(14,2)" json:"conversion_value,omitempty"`
	LifetimeValue   *float64   `gorm:"type:numeric(14,2)" json:"lifetime_value,omitempty"`
	AttributedAt    *time.Time `json:"attributed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for the model
func (CustomerJourney) TableName() string {
	return "customer_journeys"
}

// BeforeUpdate is called before updating a record
func (j *CustomerJourney) BeforeUpdate(tx *gorm.DB) error {
	j.UpdatedAt = utils.UTCNow()
	return nil
}

// NewCustomerJourney opens a journey from its first touchpoint
func NewCustomerJourney(tp Touchpoint) *CustomerJourney {
	j := &CustomerJourney{
		UserID:             tp.UserID,
		OrganizationID:     tp.OrganizationID,
		FirstTouchSource:   tp.Source,
		FirstTouchCampaign: tp.Campaign,
		FirstTouchDate:     tp.OccurredAt,
		LastTouchSource:    tp.Source,
		LastTouchCampaign:  tp.Campaign,
		LastTouchDate:      tp.OccurredAt,
		TouchpointsCount:   1,
		CreatedAt:          tp.OccurredAt,
		UpdatedAt:          tp.OccurredAt,
	}
	j.markConverted(tp)
	return j
}

// ApplyTouchpoint advances an existing journey by one touch.
// First touch is never rewritten and conversion fields are set at most once.
// It returns true when this touch converted the journey.
func (j *CustomerJourney) ApplyTouchpoint(tp Touchpoint) bool {
	j.LastTouchSource = tp.Source
	j.LastTouchCampaign = tp.Campaign
	j.LastTouchDate = tp.OccurredAt
	j.TouchpointsCount++
	j.UpdatedAt = tp.OccurredAt
	return j.markConverted(tp)
}

func (j *CustomerJourney) markConverted(tp Touchpoint) bool {
	if j.HasConverted || !tp.EventType.IsConversion() {
		return false
	}
	at := tp.OccurredAt
	days := utils.CeilDays(j.FirstTouchDate, at)
	j.HasConverted = true
	j.ConversionDate = &at
	j.DaysToConversion = &days
	return true
}

// AttributionValues are the model outputs persisted on a journey
type AttributionValues struct {
	FirstTouchValue float64
	LastTouchValue  float64
	LinearValue     float64
	TimeDecayValue  float64
	ConversionValue float64
	// LifetimeValue mirrors ConversionValue; values from earlier conversions are not accumulated.
	LifetimeValue float64
	AttributedAt  time.Time
}

// ApplyAttribution stores model outputs on the journey
func (j *CustomerJourney) ApplyAttribution(v AttributionValues) {
	j.FirstTouchValue = utils.ToPtr(v.FirstTouchValue)
	j.LastTouchValue = utils.ToPtr(v.LastTouchValue)
	j.LinearValue = utils.ToPtr(v.LinearValue)
	j.TimeDecayValue = utils.ToPtr(v.TimeDecayValue)
	j.ConversionValue = utils.ToPtr(v.ConversionValue)
	j.LifetimeValue = utils.ToPtr(v.LifetimeValue)
	j.AttributedAt = utils.ToPtr(v.AttributedAt)
	j.UpdatedAt = v.AttributedAt
}

// CustomerJourneyFilter represents filter criteria for journeys
type CustomerJourneyFilter struct {
	OrganizationID *string `json:"organization_id,omitempty"`
	UserID         *string `json:"user_id,omitempty"`
	HasConverted   *bool   `json:"has_converted,omitempty"`
}

// JourneyStats summarises the journeys of an organization
type JourneyStats struct {
	TotalJourneys       int64    `json:"total_journeys"`
	ConvertedJourneys   int64    `json:"converted_journeys"`
	AvgTouchpoints      float64  `json:"avg_touchpoints"`
	AvgTimeToConversion *float64 `json:"avg_time_to_conversion,omitempty"`
	FirstTouchRevenue   float64  `json:"first_touch_revenue"`
	LastTouchRevenue    float64  `json:"last_touch_revenue"`
	LinearRevenue       float64  `json:"linear_revenue"`
	TimeDecayRevenue    float64  `json:"time_decay_revenue"`
}
