package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"gorm.io/gorm"
)

// ErrJourneyNotFound is returned by writes that target a missing journey
var ErrJourneyNotFound = errors.New("customer journey not found")

// upsertJourneySQL applies one touchpoint atomically. Every SET expression reads
// the pre-update row, so the conversion CASEs see the old has_converted flag.
const upsertJourneySQL = `
INSERT INTO customer_journeys (
	user_id, organization_id,
	first_touch_source, first_touch_campaign, first_touch_date,
	last_touch_source, last_touch_campaign, last_touch_date,
	touchpoints_count, has_converted, conversion_date, days_to_conversion,
	created_at, updated_at
) VALUES (
	@user_id, @organization_id,
	@source, @campaign, CAST(@touched_at AS timestamptz),
	@source, @campaign, CAST(@touched_at AS timestamptz),
	1, CAST(@converts AS boolean),
	CASE WHEN CAST(@converts AS boolean) THEN CAST(@touched_at AS timestamptz) END,
	CASE WHEN CAST(@converts AS boolean) THEN 0 END,
	CAST(@touched_at AS timestamptz), CAST(@touched_at AS timestamptz)
)
ON CONFLICT (organization_id, user_id) DO UPDATE SET
	last_touch_source = EXCLUDED.last_touch_source,
	last_touch_campaign = EXCLUDED.last_touch_campaign,
	last_touch_date = EXCLUDED.last_touch_date,
	touchpoints_count = customer_journeys.touchpoints_count + 1,
	has_converted = customer_journeys.has_converted OR EXCLUDED.has_converted,
	conversion_date = CASE
		WHEN NOT customer_journeys.has_converted AND EXCLUDED.has_converted THEN EXCLUDED.last_touch_date
		ELSE customer_journeys.conversion_date
	END,
	days_to_conversion = CASE
		WHEN NOT customer_journeys.has_converted AND EXCLUDED.has_converted THEN
			CAST(GREATEST(CEIL(EXTRACT(EPOCH FROM (EXCLUDED.last_touch_date - customer_journeys.first_touch_date)) / 86400.0), 0) AS integer)
		ELSE customer_journeys.days_to_conversion
	END,
	updated_at = EXCLUDED.updated_at
RETURNING *`

// CustomerJourneyRepositoryImpl implements CustomerJourneyRepository on PostgreSQL
type CustomerJourneyRepositoryImpl struct {
	*BaseRepository[models.CustomerJourney, models.CustomerJourneyFilter]
}

// NewCustomerJourneyRepository creates a new customer journey repository
func NewCustomerJourneyRepository(db *gorm.DB) CustomerJourneyRepository {
	return &CustomerJourneyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CustomerJourney, models.CustomerJourneyFilter](db),
	}
}

// ByUserID retrieves the journey of a user inside an organization
func (r *CustomerJourneyRepositoryImpl) ByUserID(ctx context.Context, organizationID, userID string) (*models.CustomerJourney, error) {
	db := r.getDB(ctx)

	var journey models.CustomerJourney
	err := db.Where("organization_id = ? AND user_id = ?", organizationID, userID).First(&journey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find journey for user %s: %w", userID, err)
	}

	return &journey, nil
}

// ApplyTouchpoint creates or advances the user's journey with a single upsert
func (r *CustomerJourneyRepositoryImpl) ApplyTouchpoint(ctx context.Context, tp models.Touchpoint) (*models.CustomerJourney, error) {
	db := r.getDB(ctx)

	var journey models.CustomerJourney
	err := db.Raw(upsertJourneySQL, map[string]any{
		"user_id":         tp.UserID,
		"organization_id": tp.OrganizationID,
		"source":          tp.Source,
		"campaign":        tp.Campaign,
		"touched_at":      tp.OccurredAt,
		"converts":        tp.EventType.IsConversion(),
	}).Scan(&journey).Error
	if err != nil {
		return nil, fmt.Errorf("failed to apply touchpoint for user %s: %w", tp.UserID, err)
	}

	return &journey, nil
}

// UpdateAttribution overwrites the attribution value columns of a journey
func (r *CustomerJourneyRepositoryImpl) UpdateAttribution(ctx context.Context, organizationID, userID string, values models.AttributionValues) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				err = db.Commit().Error
			}
		}()
	}

	result := db.Model(&models.CustomerJourney{}).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Updates(map[string]any{
			"first_touch_value": values.FirstTouchValue,
			"last_touch_value":  values.LastTouchValue,
			"linear_value":      values.LinearValue,
			"time_decay_value":  values.TimeDecayValue,
			"conversion_value":  values.ConversionValue,
			"lifetime_value":    values.LifetimeValue,
			"attributed_at":     values.AttributedAt,
			"updated_at":        values.AttributedAt,
		})
	if result.Error != nil {
		err = fmt.Errorf("failed to update attribution for user %s: %w", userID, result.Error)
		return err
	}
	if result.RowsAffected == 0 {
		err = ErrJourneyNotFound
		return err
	}

	return nil
}

// ByFilter retrieves journeys based on filter criteria
func (r *CustomerJourneyRepositoryImpl) ByFilter(ctx context.Context, filter models.CustomerJourneyFilter, orderBy string, limit, offset int) ([]*models.CustomerJourney, error) {
	db := r.getDB(ctx)

	var journeys []*models.CustomerJourney
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&journeys).Error; err != nil {
		return nil, fmt.Errorf("failed to find journeys by filter: %w", err)
	}

	return journeys, nil
}

// Stats aggregates the organization's journeys. Touchpoint averages cover every
// journey; time to conversion only covers rows with days_to_conversion set.
func (r *CustomerJourneyRepositoryImpl) Stats(ctx context.Context, organizationID string) (*models.JourneyStats, error) {
	type row struct {
		TotalJourneys       int64
		ConvertedJourneys   int64
		AvgTouchpoints      float64
		AvgTimeToConversion *float64
		FirstTouchRevenue   float64
		LastTouchRevenue    float64
		LinearRevenue       float64
		TimeDecayRevenue    float64
	}

	var out row
	db := r.getDB(ctx)
	err := db.Model(&models.CustomerJourney{}).
		Select(`COUNT(*) AS total_journeys,
			COUNT(*) FILTER (WHERE has_converted) AS converted_journeys,
			COALESCE(AVG(touchpoints_count), 0) AS avg_touchpoints,
			AVG(days_to_conversion) AS avg_time_to_conversion,
			COALESCE(SUM(first_touch_value) FILTER (WHERE has_converted), 0) AS first_touch_revenue,
			COALESCE(SUM(last_touch_value) FILTER (WHERE has_converted), 0) AS last_touch_revenue,
			COALESCE(SUM(linear_value) FILTER (WHERE has_converted), 0) AS linear_revenue,
			COALESCE(SUM(time_decay_value) FILTER (WHERE has_converted), 0) AS time_decay_revenue`).
		Where("organization_id = ?", organizationID).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate journeys: %w", err)
	}

	return &models.JourneyStats{
		TotalJourneys:       out.TotalJourneys,
		ConvertedJourneys:   out.ConvertedJourneys,
		AvgTouchpoints:      out.AvgTouchpoints,
		AvgTimeToConversion: out.AvgTimeToConversion,
		FirstTouchRevenue:   out.FirstTouchRevenue,
		LastTouchRevenue:    out.LastTouchRevenue,
		LinearRevenue:       out.LinearRevenue,
		TimeDecayRevenue:    out.TimeDecayRevenue,
	}, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CustomerJourneyRepositoryImpl) applyFilter(db *gorm.DB, filter models.CustomerJourneyFilter) *gorm.DB {
	if filter.OrganizationID != nil {
		db = db.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.HasConverted != nil {
		db = db.Where("has_converted = ?", *filter.HasConverted)
	}
	return db
}
