package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CampaignStatus represents the lifecycle status of a marketing campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusArchived  CampaignStatus = "archived"
)

// ReportableCampaignStatuses are the statuses included in performance reports
var ReportableCampaignStatuses = []CampaignStatus{CampaignStatusActive, CampaignStatusPaused}

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused,
		CampaignStatusCompleted, CampaignStatusArchived:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = normaliseStatus(v)
	case []byte:
		*s = normaliseStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// the campaign store writes statuses upper-case (ACTIVE, PAUSED)
func normaliseStatus(v string) CampaignStatus {
	return CampaignStatus(strings.ToLower(strings.TrimSpace(v)))
}

// Campaign is owned by the campaign-management system and only read here.
// Name is the key events reference through their campaign field.
type Campaign struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	OrganizationID string         `gorm:"size:64;not null;index:idx_campaigns_org_status,priority:1" json:"organization_id"`
	Name           string         `gorm:"size:255;not null;index:idx_campaigns_name" json:"name"`
	Budget         datatypes.JSON `gorm:"type:jsonb" json:"budget,omitempty"`
	Status         CampaignStatus `gorm:"type:varchar(32);not null;default:'draft';index:idx_campaigns_org_status,priority:2" json:"status"`
	Platform       *string        `gorm:"size:64" json:"platform,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// ResolvedBudget parses the budget document into its tagged form
func (c *Campaign) ResolvedBudget() Budget {
	return ParseBudget(c.Budget)
}

// IsReportable reports whether the campaign takes part in performance reports
func (c *Campaign) IsReportable() bool {
	for _, s := range ReportableCampaignStatuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID             *uint            `json:"id,omitempty"`
	OrganizationID *string          `json:"organization_id,omitempty"`
	Name           *string          `json:"name,omitempty"`
	Statuses       []CampaignStatus `json:"statuses,omitempty"`
}

// GetStatusDisplayName returns a human-readable status name
func (c *Campaign) GetStatusDisplayName() string {
	switch c.Status {
	case CampaignStatusDraft:
		return "Draft"
	case CampaignStatusActive:
		return "Active"
	case CampaignStatusPaused:
		return "Paused"
	case CampaignStatusCompleted:
		return "Completed"
	case CampaignStatusArchived:
		return "Archived"
	default:
		return "Unknown"
	}
}
