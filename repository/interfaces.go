// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// TransactionManager groups repository calls into one atomic unit.
// Repositories pick the transaction up from the context they receive.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}

// AttributionEventRepository defines operations for the append-only event log
type AttributionEventRepository interface {
	Repository[models.AttributionEvent, models.AttributionEventFilter]
	ByEventID(ctx context.Context, eventID uuid.UUID) (*models.AttributionEvent, error)
	// ByUserID returns the user's events in touch order
	ByUserID(ctx context.Context, organizationID, userID string) ([]*models.AttributionEvent, error)
	RevenueSummary(ctx context.Context, filter models.AttributionEventFilter) (*models.RevenueSummary, error)
}

// CustomerJourneyRepository defines operations for per-user journeys
type CustomerJourneyRepository interface {
	// ByUserID returns the user's journey inside an organization, nil when there is none
	ByUserID(ctx context.Context, organizationID, userID string) (*models.CustomerJourney, error)
	ByFilter(ctx context.Context, filter models.CustomerJourneyFilter, orderBy string, limit, offset int) ([]*models.CustomerJourney, error)
	// ApplyTouchpoint creates or advances the journey in one atomic statement
	ApplyTouchpoint(ctx context.Context, tp models.Touchpoint) (*models.CustomerJourney, error)
	UpdateAttribution(ctx context.Context, organizationID, userID string, values models.AttributionValues) error
	Stats(ctx context.Context, organizationID string) (*models.JourneyStats, error)
}

// CampaignRepository defines read operations on the external campaign store
type CampaignRepository interface {
	ByID(ctx context.Context, id uint) (*models.Campaign, error)
	ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error)
	Count(ctx context.Context, filter models.CampaignFilter) (int64, error)
}

// CampaignPerformanceRepository defines operations for performance snapshots
type CampaignPerformanceRepository interface {
	// Upsert writes the snapshot keyed by (organization, campaign, period start)
	Upsert(ctx context.Context, perf *models.CampaignPerformance) error
	ByFilter(ctx context.Context, filter models.CampaignPerformanceFilter, orderBy string, limit, offset int) ([]*models.CampaignPerformance, error)
}
