// Package models contains the persistent entities of the attribution engine
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventType classifies a tracked touchpoint
type EventType string

const (
	EventTypePageView   EventType = "page_view"
	EventTypeAdClick    EventType = "ad_click"
	EventTypeSignup     EventType = "signup"
	EventTypeTrialStart EventType = "trial_start"
	EventTypePurchase   EventType = "purchase"
	EventTypeCTAClick   EventType = "cta_click"
)

// String returns the string representation of the event type
func (t EventType) String() string {
	return string(t)
}

// Valid checks if the event type is one of the known types
func (t EventType) Valid() bool {
	switch t {
	case EventTypePageView, EventTypeAdClick, EventTypeSignup,
		EventTypeTrialStart, EventTypePurchase, EventTypeCTAClick:
		return true
	default:
		return false
	}
}

// IsConversion reports whether the event converts a journey
func (t EventType) IsConversion() bool {
	return t == EventTypePurchase || t == EventTypeTrialStart
}

// Scan implements the sql.Scanner interface for EventType
func (t *EventType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = EventType(v)
	case []byte:
		*t = EventType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into EventType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for EventType
func (t EventType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid EventType: %s", t)
	}
	return string(t), nil
}

// AttributionEvent is an immutable touchpoint fact.
// Events of one user are ordered by (CreatedAt, ID).
type AttributionEvent struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	EventID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_attribution_events_event_id" json:"event_id"`
	OrganizationID string    `gorm:"size:64;not null;index:idx_attribution_events_org_created,priority:1" json:"organization_id"`
	VisitorID      string    `gorm:"size:255;not null;index:idx_attribution_events_visitor_id" json:"visitor_id"`
	UserID         *string   `gorm:"size:255;index:idx_attribution_events_user_created,priority:1" json:"user_id,omitempty"`
	SessionID      *string   `gorm:"size:255" json:"session_id,omitempty"`
	EventType      EventType `gorm:"type:varchar(32);not null;index:idx_attribution_events_type" json:"event_type"`
	EventValue     *float64  `gorm:"type:numeric(14,2)" json:"event_value,omitempty"`

	Source   *string `gorm:"size:255" json:"source,omitempty"`
	Medium   *string `gorm:"size:255" json:"medium,omitempty"`
	Campaign *string `gorm:"size:255;index:idx_attribution_events_org_campaign,priority:2" json:"campaign,omitempty"`

	UTMSource   *string `gorm:"column:utm_source;size:255" json:"utm_source,omitempty"`
	UTMMedium   *string `gorm:"column:utm_medium;size:255" json:"utm_medium,omitempty"`
	UTMCampaign *string `gorm:"column:utm_campaign;size:255" json:"utm_campaign,omitempty"`
	UTMTerm     *string `gorm:"column:utm_term;size:255" json:"utm_term,omitempty"`
	UTMContent  *string `gorm:"column:utm_content;size:255" json:"utm_content,omitempty"`

	AdGroup     *string `gorm:"size:255" json:"ad_group,omitempty"`
	Keyword     *string `gorm:"size:255" json:"keyword,omitempty"`
	AdID        *string `gorm:"column:ad_id;size:255" json:"ad_id,omitempty"`
	LandingPage *string `gorm:"type:text" json:"landing_page,omitempty"`
	Referrer    *string `gorm:"type:text" json:"referrer,omitempty"`

	Device    *string `gorm:"size:64" json:"device,omitempty"`
	Browser   *string `gorm:"size:64" json:"browser,omitempty"`
	OS        *string `gorm:"column:os;size:64" json:"os,omitempty"`
	Country   *string `gorm:"size:64" json:"country,omitempty"`
	City      *string `gorm:"size:128" json:"city,omitempty"`
	IPAddress *string `gorm:"column:ip_address;size:64" json:"ip_address,omitempty"`
	UserAgent *string `gorm:"type:text" json:"user_agent,omitempty"`

	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index:idx_attribution_events_org_created,priority:2;index:idx_attribution_events_user_created,priority:2" json:"created_at"`
}

// TableName returns the table name for the model
func (AttributionEvent) TableName() string {
	return "attribution_events"
}

// BeforeCreate assigns the public id and creation time
func (e *AttributionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BackfillFromUTM copies utm_* values into source/medium/campaign when those are absent.
// It runs once, before the event is written.
func (e *AttributionEvent) BackfillFromUTM() {
	e.Source = utils.FirstNonEmpty(e.Source, e.UTMSource)
	e.Medium = utils.FirstNonEmpty(e.Medium, e.UTMMedium)
	e.Campaign = utils.FirstNonEmpty(e.Campaign, e.UTMCampaign)
}

// SourceOrDirect returns the resolved source, "direct" when missing
func (e *AttributionEvent) SourceOrDirect() string {
	return utils.StringOr(e.Source, utils.DirectSource)
}

// CampaignOrNone returns the resolved campaign, "none" when missing
func (e *AttributionEvent) CampaignOrNone() string {
	return utils.StringOr(e.Campaign, utils.NoneCampaign)
}

// Touchpoint extracts the journey-relevant part of the event
func (e *AttributionEvent) Touchpoint() Touchpoint {
	var userID string
	if e.UserID != nil {
		userID = *e.UserID
	}
	return Touchpoint{
		UserID:         userID,
		OrganizationID: e.OrganizationID,
		Source:         e.Source,
		Campaign:       e.Campaign,
		EventType:      e.EventType,
		OccurredAt:     e.CreatedAt,
	}
}

// AttributionEventFilter represents filter criteria for attribution events
type AttributionEventFilter struct {
	OrganizationID *string    `json:"organization_id,omitempty"`
	UserID         *string    `json:"user_id,omitempty"`
	VisitorID      *string    `json:"visitor_id,omitempty"`
	Campaign       *string    `json:"campaign,omitempty"`
	EventType      *EventType `json:"event_type,omitempty"`
	CreatedAfter   *time.Time `json:"created_after,omitempty"`
	CreatedBefore  *time.Time `json:"created_before,omitempty"`
}

// RevenueSummary aggregates purchase revenue
type RevenueSummary struct {
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

// TimeRange bounds event queries; nil ends are open
type TimeRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Apply copies the range onto an event filter
func (r *TimeRange) Apply(filter *AttributionEventFilter) {
	if r == nil {
		return
	}
	filter.CreatedAfter = r.Start
	filter.CreatedBefore = r.End
}

// Contains reports whether t falls inside the range (inclusive)
func (r *TimeRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}
