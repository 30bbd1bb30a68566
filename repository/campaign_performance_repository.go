package repository

import (
	"context"
	"fmt"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignPerformanceRepositoryImpl implements CampaignPerformanceRepository on PostgreSQL
type CampaignPerformanceRepositoryImpl struct {
	*BaseRepository[models.CampaignPerformance, models.CampaignPerformanceFilter]
}

// NewCampaignPerformanceRepository creates a new campaign performance repository
func NewCampaignPerformanceRepository(db *gorm.DB) CampaignPerformanceRepository {
	return &CampaignPerformanceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CampaignPerformance, models.CampaignPerformanceFilter](db),
	}
}

// Upsert inserts the snapshot or overwrites the one with the same period key
func (r *CampaignPerformanceRepositoryImpl) Upsert(ctx context.Context, perf *models.CampaignPerformance) error {
	db := r.getDB(ctx)

	now := utils.UTCNow()
	if perf.CreatedAt.IsZero() {
		perf.CreatedAt = now
	}
	perf.UpdatedAt = now

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "organization_id"},
			{Name: "campaign_id"},
			{Name: "period_start"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"campaign_name",
			"period_end",
			"total_events",
			"conversions",
			"revenue",
			"spend",
			"roi",
			"roas",
			"budget_kind",
			"updated_at",
		}),
	}).Create(perf).Error
	if err != nil {
		return fmt.Errorf("failed to upsert performance for campaign %d: %w", perf.CampaignID, err)
	}

	return nil
}

// ByFilter retrieves snapshots based on filter criteria
func (r *CampaignPerformanceRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignPerformanceFilter, orderBy string, limit, offset int) ([]*models.CampaignPerformance, error) {
	db := r.getDB(ctx)

	var rows []*models.CampaignPerformance
	query := r.applyFilter(db, filter)

	if orderBy == "" {
		orderBy = "period_start DESC, roi DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find performance snapshots: %w", err)
	}

	return rows, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CampaignPerformanceRepositoryImpl) applyFilter(db *gorm.DB, filter models.CampaignPerformanceFilter) *gorm.DB {
	if filter.OrganizationID != nil {
		db = db.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.PeriodFrom != nil {
		db = db.Where("period_start >= ?", *filter.PeriodFrom)
	}
	if filter.PeriodTo != nil {
		db = db.Where("period_start <= ?", *filter.PeriodTo)
	}
	return db
}
