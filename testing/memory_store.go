package testing

import (
	"context"
	"sort"
	"sync"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/models"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/repository"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/utils"
	"github.com/google/uuid"
)

// MemoryStore is an in-process stand-in for the PostgreSQL repositories.
// WithTransaction restores the previous state when fn fails; it does not isolate
// concurrent transactions from each other.
type MemoryStore struct {
	mu sync.Mutex

	events       []*models.AttributionEvent
	journeys     map[string]*models.CustomerJourney
	campaigns    []*models.Campaign
	performances []*models.CampaignPerformance

	nextEventID   uint
	nextJourneyID uint
	nextPerfID    uint

	campaignErrors map[string]error
	journeyErr     error
	performanceErr error
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		journeys:       make(map[string]*models.CustomerJourney),
		campaignErrors: make(map[string]error),
	}
}

// Events returns the store as an AttributionEventRepository
func (s *MemoryStore) Events() repository.AttributionEventRepository {
	return &memoryEvents{s: s}
}

// Journeys returns the store as a CustomerJourneyRepository
func (s *MemoryStore) Journeys() repository.CustomerJourneyRepository {
	return &memoryJourneys{s: s}
}

// Campaigns returns the store as a CampaignRepository
func (s *MemoryStore) Campaigns() repository.CampaignRepository {
	return &memoryCampaigns{s: s}
}

// Performances returns the store as a CampaignPerformanceRepository
func (s *MemoryStore) Performances() repository.CampaignPerformanceRepository {
	return &memoryPerformances{s: s}
}

// AddCampaign seeds a campaign, assigning an id when it has none
func (s *MemoryStore) AddCampaign(c *models.Campaign) *models.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == 0 {
		c.ID = uint(len(s.campaigns) + 1)
	}
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	cp := *c
	s.campaigns = append(s.campaigns, &cp)
	return c
}

// FailCampaign makes event aggregation for the named campaign return err
func (s *MemoryStore) FailCampaign(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaignErrors[name] = err
}

// FailJourneyWrites makes ApplyTouchpoint and UpdateAttribution return err
func (s *MemoryStore) FailJourneyWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journeyErr = err
}

// FailPerformanceWrites makes Upsert return err
func (s *MemoryStore) FailPerformanceWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.performanceErr = err
}

// AllEvents returns a copy of every stored event in insertion order
func (s *MemoryStore) AllEvents() []models.AttributionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.AttributionEvent, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, *e)
	}
	return out
}

// JourneyCount returns the number of stored journeys
func (s *MemoryStore) JourneyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.journeys)
}

// AllPerformances returns a copy of every stored snapshot
func (s *MemoryStore) AllPerformances() []models.CampaignPerformance {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CampaignPerformance, 0, len(s.performances))
	for _, p := range s.performances {
		out = append(out, *p)
	}
	return out
}

// WithTransaction implements repository.TransactionManager
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	events        []*models.AttributionEvent
	journeys      map[string]*models.CustomerJourney
	performances  []*models.CampaignPerformance
	nextEventID   uint
	nextJourneyID uint
	nextPerfID    uint
}

func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memorySnapshot{
		events:        append([]*models.AttributionEvent(nil), s.events...),
		journeys:      make(map[string]*models.CustomerJourney, len(s.journeys)),
		nextEventID:   s.nextEventID,
		nextJourneyID: s.nextJourneyID,
		nextPerfID:    s.nextPerfID,
	}
	for k, j := range s.journeys {
		cp := *j
		snap.journeys[k] = &cp
	}
	for _, p := range s.performances {
		cp := *p
		snap.performances = append(snap.performances, &cp)
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = snap.events
	s.journeys = snap.journeys
	s.performances = snap.performances
	s.nextEventID = snap.nextEventID
	s.nextJourneyID = snap.nextJourneyID
	s.nextPerfID = snap.nextPerfID
}

type memoryEvents struct {
	s *MemoryStore
}

func (r *memoryEvents) ByID(ctx context.Context, id uint) (*models.AttributionEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.events {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryEvents) ByEventID(ctx context.Context, eventID uuid.UUID) (*models.AttributionEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.events {
		if e.EventID == eventID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryEvents) ByUserID(ctx context.Context, organizationID, userID string) ([]*models.AttributionEvent, error) {
	return r.ByFilter(ctx, models.AttributionEventFilter{
		OrganizationID: &organizationID,
		UserID:         &userID,
	}, "", 0, 0)
}

// ByFilter always returns events in touch order
func (r *memoryEvents) ByFilter(ctx context.Context, filter models.AttributionEventFilter, orderBy string, limit, offset int) ([]*models.AttributionEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if filter.Campaign != nil {
		if err := r.s.campaignErrors[*filter.Campaign]; err != nil {
			return nil, err
		}
	}

	var out []*models.AttributionEvent
	for _, e := range r.s.events {
		if matchEvent(filter, e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return paginate(out, limit, offset), nil
}

func (r *memoryEvents) Save(ctx context.Context, entity *models.AttributionEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := entity.BeforeCreate(nil); err != nil {
		return err
	}
	r.s.nextEventID++
	entity.ID = r.s.nextEventID
	cp := *entity
	r.s.events = append(r.s.events, &cp)
	return nil
}

func (r *memoryEvents) SaveBatch(ctx context.Context, entities []*models.AttributionEvent) error {
	for _, e := range entities {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryEvents) Count(ctx context.Context, filter models.AttributionEventFilter) (int64, error) {
	events, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(events)), nil
}

func (r *memoryEvents) Exists(ctx context.Context, filter models.AttributionEventFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *memoryEvents) RevenueSummary(ctx context.Context, filter models.AttributionEventFilter) (*models.RevenueSummary, error) {
	purchase := models.EventTypePurchase
	filter.EventType = &purchase

	events, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	summary := &models.RevenueSummary{}
	for _, e := range events {
		summary.Conversions++
		if e.EventValue != nil {
			summary.Revenue += *e.EventValue
		}
	}
	return summary, nil
}

func matchEvent(f models.AttributionEventFilter, e *models.AttributionEvent) bool {
	if f.OrganizationID != nil && e.OrganizationID != *f.OrganizationID {
		return false
	}
	if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
		return false
	}
	if f.VisitorID != nil && e.VisitorID != *f.VisitorID {
		return false
	}
	if f.Campaign != nil && (e.Campaign == nil || *e.Campaign != *f.Campaign) {
		return false
	}
	if f.EventType != nil && e.EventType != *f.EventType {
		return false
	}
	if f.CreatedAfter != nil && e.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && e.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	return true
}

type memoryJourneys struct {
	s *MemoryStore
}

func journeyKey(organizationID, userID string) string {
	return organizationID + "\x00" + userID
}

func (r *memoryJourneys) ByUserID(ctx context.Context, organizationID, userID string) (*models.CustomerJourney, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	j, ok := r.s.journeys[journeyKey(organizationID, userID)]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (r *memoryJourneys) ByFilter(ctx context.Context, filter models.CustomerJourneyFilter, orderBy string, limit, offset int) ([]*models.CustomerJourney, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.CustomerJourney
	for _, j := range r.s.journeys {
		if filter.OrganizationID != nil && j.OrganizationID != *filter.OrganizationID {
			continue
		}
		if filter.UserID != nil && j.UserID != *filter.UserID {
			continue
		}
		if filter.HasConverted != nil && j.HasConverted != *filter.HasConverted {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })

	return paginate(out, limit, offset), nil
}

func (r *memoryJourneys) ApplyTouchpoint(ctx context.Context, tp models.Touchpoint) (*models.CustomerJourney, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.journeyErr != nil {
		return nil, r.s.journeyErr
	}

	key := journeyKey(tp.OrganizationID, tp.UserID)
	j, ok := r.s.journeys[key]
	if !ok {
		r.s.nextJourneyID++
		j = models.NewCustomerJourney(tp)
		j.ID = r.s.nextJourneyID
		r.s.journeys[key] = j
	} else {
		j.ApplyTouchpoint(tp)
	}

	cp := *j
	return &cp, nil
}

func (r *memoryJourneys) UpdateAttribution(ctx context.Context, organizationID, userID string, values models.AttributionValues) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.journeyErr != nil {
		return r.s.journeyErr
	}

	j, ok := r.s.journeys[journeyKey(organizationID, userID)]
	if !ok {
		return repository.ErrJourneyNotFound
	}
	j.ApplyAttribution(values)
	return nil
}

func (r *memoryJourneys) Stats(ctx context.Context, organizationID string) (*models.JourneyStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stats := &models.JourneyStats{}
	var touchpoints, days, withDays int64
	for _, j := range r.s.journeys {
		if j.OrganizationID != organizationID {
			continue
		}
		stats.TotalJourneys++
		touchpoints += int64(j.TouchpointsCount)
		if j.DaysToConversion != nil {
			days += int64(*j.DaysToConversion)
			withDays++
		}
		if !j.HasConverted {
			continue
		}
		stats.ConvertedJourneys++
		stats.FirstTouchRevenue += valueOf(j.FirstTouchValue)
		stats.LastTouchRevenue += valueOf(j.LastTouchValue)
		stats.LinearRevenue += valueOf(j.LinearValue)
		stats.TimeDecayRevenue += valueOf(j.TimeDecayValue)
	}

	if stats.TotalJourneys > 0 {
		stats.AvgTouchpoints = float64(touchpoints) / float64(stats.TotalJourneys)
	}
	if withDays > 0 {
		stats.AvgTimeToConversion = utils.ToPtr(float64(days) / float64(withDays))
	}
	return stats, nil
}

type memoryCampaigns struct {
	s *MemoryStore
}

func (r *memoryCampaigns) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.campaigns {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryCampaigns) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.Campaign
	for _, c := range r.s.campaigns {
		if matchCampaign(filter, c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return paginate(out, limit, offset), nil
}

func (r *memoryCampaigns) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	campaigns, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(campaigns)), nil
}

func matchCampaign(f models.CampaignFilter, c *models.Campaign) bool {
	if f.ID != nil && c.ID != *f.ID {
		return false
	}
	if f.OrganizationID != nil && c.OrganizationID != *f.OrganizationID {
		return false
	}
	if f.Name != nil && c.Name != *f.Name {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if c.Status == st {
			return true
		}
	}
	return false
}

type memoryPerformances struct {
	s *MemoryStore
}

func (r *memoryPerformances) Upsert(ctx context.Context, perf *models.CampaignPerformance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.performanceErr != nil {
		return r.s.performanceErr
	}

	now := utils.UTCNow()
	perf.UpdatedAt = now
	for i, p := range r.s.performances {
		if p.OrganizationID == perf.OrganizationID &&
			p.CampaignID == perf.CampaignID &&
			p.PeriodStart.Equal(perf.PeriodStart) {
			perf.ID = p.ID
			perf.CreatedAt = p.CreatedAt
			cp := *perf
			r.s.performances[i] = &cp
			return nil
		}
	}

	r.s.nextPerfID++
	perf.ID = r.s.nextPerfID
	if perf.CreatedAt.IsZero() {
		perf.CreatedAt = now
	}
	cp := *perf
	r.s.performances = append(r.s.performances, &cp)
	return nil
}

// ByFilter returns snapshots newest period first, then by ROI descending
func (r *memoryPerformances) ByFilter(ctx context.Context, filter models.CampaignPerformanceFilter, orderBy string, limit, offset int) ([]*models.CampaignPerformance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.CampaignPerformance
	for _, p := range r.s.performances {
		if filter.OrganizationID != nil && p.OrganizationID != *filter.OrganizationID {
			continue
		}
		if filter.CampaignID != nil && p.CampaignID != *filter.CampaignID {
			continue
		}
		if filter.PeriodFrom != nil && p.PeriodStart.Before(*filter.PeriodFrom) {
			continue
		}
		if filter.PeriodTo != nil && p.PeriodStart.After(*filter.PeriodTo) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.After(out[j].PeriodStart)
		}
		return out[i].ROI > out[j].ROI
	})

	return paginate(out, limit, offset), nil
}

func valueOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
