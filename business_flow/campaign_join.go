package businessflow

import (
	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
)

// CampaignEventJoiner decides which events belong to a campaign.
// It is the only place that knows how events reference campaigns.
type CampaignEventJoiner interface {
	EventFilter(campaign *models.Campaign, timeRange *models.TimeRange) models.AttributionEventFilter
}

// CampaignNameJoiner matches events whose campaign field equals the campaign
// name, inside the campaign's organization
type CampaignNameJoiner struct{}

// NewCampaignNameJoiner creates the name based joiner
func NewCampaignNameJoiner() CampaignEventJoiner {
	return CampaignNameJoiner{}
}

// EventFilter implements CampaignEventJoiner
func (CampaignNameJoiner) EventFilter(campaign *models.Campaign, timeRange *models.TimeRange) models.AttributionEventFilter {
	org := campaign.OrganizationID
	name := campaign.Name

	filter := models.AttributionEventFilter{
		OrganizationID: &org,
		Campaign:       &name,
	}
	timeRange.Apply(&filter)
	return filter
}
