package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const touchOrder = "created_at ASC, id ASC"

// AttributionEventRepositoryImpl implements AttributionEventRepository on PostgreSQL
type AttributionEventRepositoryImpl struct {
	*BaseRepository[models.AttributionEvent, models.AttributionEventFilter]
}

// NewAttributionEventRepository creates a new attribution event repository
func NewAttributionEventRepository(db *gorm.DB) AttributionEventRepository {
	return &AttributionEventRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AttributionEvent, models.AttributionEventFilter](db),
	}
}

// ByEventID retrieves an event by its public id
func (r *AttributionEventRepositoryImpl) ByEventID(ctx context.Context, eventID uuid.UUID) (*models.AttributionEvent, error) {
	db := r.getDB(ctx)

	var event models.AttributionEvent
	err := db.Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find event %s: %w", eventID, err)
	}

	return &event, nil
}

// ByUserID returns all events of a user inside an organization, earliest first
func (r *AttributionEventRepositoryImpl) ByUserID(ctx context.Context, organizationID, userID string) ([]*models.AttributionEvent, error) {
	filter := models.AttributionEventFilter{
		OrganizationID: &organizationID,
		UserID:         &userID,
	}
	return r.ByFilter(ctx, filter, touchOrder, 0, 0)
}

// ByFilter retrieves events based on filter criteria
func (r *AttributionEventRepositoryImpl) ByFilter(ctx context.Context, filter models.AttributionEventFilter, orderBy string, limit, offset int) ([]*models.AttributionEvent, error) {
	db := r.getDB(ctx)

	var events []*models.AttributionEvent
	query := r.applyFilter(db, filter)

	if orderBy == "" {
		orderBy = touchOrder
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find events by filter: %w", err)
	}

	return events, nil
}

// Count returns the number of events matching the filter
func (r *AttributionEventRepositoryImpl) Count(ctx context.Context, filter models.AttributionEventFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.AttributionEvent{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	return count, nil
}

// Exists checks if any event matching the filter exists
func (r *AttributionEventRepositoryImpl) Exists(ctx context.Context, filter models.AttributionEventFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// RevenueSummary counts purchase events and sums their values
func (r *AttributionEventRepositoryImpl) RevenueSummary(ctx context.Context, filter models.AttributionEventFilter) (*models.RevenueSummary, error) {
	purchase := models.EventTypePurchase
	filter.EventType = &purchase

	var summary models.RevenueSummary
	db := r.getDB(ctx)
	err := r.applyFilter(db.Model(&models.AttributionEvent{}), filter).
		Select("COUNT(*) AS conversions, COALESCE(SUM(event_value), 0) AS revenue").
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarise revenue: %w", err)
	}

	return &summary, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *AttributionEventRepositoryImpl) applyFilter(db *gorm.DB, filter models.AttributionEventFilter) *gorm.DB {
	if filter.OrganizationID != nil {
		db = db.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.VisitorID != nil {
		db = db.Where("visitor_id = ?", *filter.VisitorID)
	}
	if filter.Campaign != nil {
		db = db.Where("campaign = ?", *filter.Campaign)
	}
	if filter.EventType != nil {
		db = db.Where("event_type = ?", string(*filter.EventType))
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}
