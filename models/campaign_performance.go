package models

import (
	"time"
)

// CampaignPerformance is a recomputable ROI snapshot for one campaign and period
type CampaignPerformance struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	OrganizationID string     `gorm:"size:64;not null;uniqueIndex:uk_campaign_performance_period,priority:1" json:"organization_id"`
	CampaignID     uint       `gorm:"not null;uniqueIndex:uk_campaign_performance_period,priority:2" json:"campaign_id"`
	CampaignName   string     `gorm:"size:255;not null" json:"campaign_name"`
	PeriodStart    time.Time  `gorm:"not null;uniqueIndex:uk_campaign_performance_period,priority:3" json:"period_start"`
	PeriodEnd      time.Time  `gorm:"not null" json:"period_end"`
	TotalEvents    int64      `gorm:"not null;default:0" json:"total_events"`
	Conversions    int64      `gorm:"not null;default:0" json:"conversions"`
	Revenue        float64    `gorm:"type:numeric(14,2);not null;default:0" json:"revenue"`
	Spend          float64    `gorm:"type:numeric(14,2);not null;default:0" json:"spend"`
	ROI            float64    `gorm:"column:roi;type:numeric(14,2);not null;default:0" json:"roi"`
	ROAS           float64    `gorm:"column:roas;type:numeric(14,4);not null;default:0" json:"roas"`
	BudgetKind     BudgetKind `gorm:"type:varchar(16);not null;default:'unknown'" json:"budget_kind"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the table name for the model
func (CampaignPerformance) TableName() string {
	return "campaign_performance"
}

// CampaignPerformanceFilter represents filter criteria for performance snapshots
type CampaignPerformanceFilter struct {
	OrganizationID *string    `json:"organization_id,omitempty"`
	CampaignID     *uint      `json:"campaign_id,omitempty"`
	PeriodFrom     *time.Time `json:"period_from,omitempty"`
	PeriodTo       *time.Time `json:"period_to,omitempty"`
}
