package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"gorm.io/datatypes"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// RandomOrganizationID returns an organization id unique enough for one test run
func RandomOrganizationID() string {
	return fmt.Sprintf("org-%09d", rand.Intn(900000000)+100000000)
}

// NewCampaign builds an unsaved campaign with the given raw budget document
func NewCampaign(organizationID, name, budget string, status models.CampaignStatus) *models.Campaign {
	c := &models.Campaign{
		OrganizationID: organizationID,
		Name:           name,
		Status:         status,
		CreatedAt:      utils.UTCNow(),
	}
	if budget != "" {
		c.Budget = datatypes.JSON(budget)
	}
	return c
}

// NewEvent builds an unsaved event. Empty source or campaign stay nil.
func NewEvent(organizationID, userID string, eventType models.EventType, source, campaign string, at time.Time) *models.AttributionEvent {
	e := &models.AttributionEvent{
		OrganizationID: organizationID,
		VisitorID:      "visitor-" + userID,
		EventType:      eventType,
		CreatedAt:      at.UTC().Truncate(time.Microsecond),
	}
	if userID != "" {
		e.UserID = utils.ToPtr(userID)
	}
	if source != "" {
		e.Source = utils.ToPtr(source)
	}
	if campaign != "" {
		e.Campaign = utils.ToPtr(campaign)
	}
	return e
}

// NewPurchase builds an unsaved purchase event carrying value
func NewPurchase(organizationID, userID, source, campaign string, value float64, at time.Time) *models.AttributionEvent {
	e := NewEvent(organizationID, userID, models.EventTypePurchase, source, campaign, at)
	e.EventValue = utils.ToPtr(value)
	return e
}

// CreateTestCampaign inserts a campaign
func (tf *TestFixtures) CreateTestCampaign(organizationID, name, budget string, status models.CampaignStatus) (*models.Campaign, error) {
	campaign := NewCampaign(organizationID, name, budget, status)
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign %s: %w", name, err)
	}
	return campaign, nil
}

// CreateTestEvent inserts an event without touching journeys
func (tf *TestFixtures) CreateTestEvent(event *models.AttributionEvent) error {
	if err := tf.DB.DB.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create test event: %w", err)
	}
	return nil
}
