package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseBudget(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKind  BudgetKind
		wantSpend string
	}{
		{name: "total", raw: `{"total": 1000}`, wantKind: BudgetKindTotal, wantSpend: "1000"},
		{name: "daily times thirty", raw: `{"daily": 50}`, wantKind: BudgetKindDaily, wantSpend: "1500"},
		{name: "total wins over daily", raw: `{"total": 800, "daily": 50}`, wantKind: BudgetKindTotal, wantSpend: "800"},
		{name: "zero total falls back to daily", raw: `{"total": 0, "daily": 10}`, wantKind: BudgetKindDaily, wantSpend: "300"},
		{name: "numeric strings", raw: `{"total": "1200.50"}`, wantKind: BudgetKindTotal, wantSpend: "1200.5"},
		{name: "empty object", raw: `{}`, wantKind: BudgetKindUnknown, wantSpend: "0"},
		{name: "null fields", raw: `{"total": null, "daily": null}`, wantKind: BudgetKindUnknown, wantSpend: "0"},
		{name: "negative total", raw: `{"total": -5}`, wantKind: BudgetKindUnknown, wantSpend: "0"},
		{name: "malformed", raw: `{"total":`, wantKind: BudgetKindUnknown, wantSpend: "0"},
		{name: "missing document", raw: ``, wantKind: BudgetKindUnknown, wantSpend: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ParseBudget([]byte(tt.raw))
			assert.Equal(t, tt.wantKind, b.Kind)
			assert.True(t, decimal.RequireFromString(tt.wantSpend).Equal(b.Spend()), "spend %s", b.Spend())
		})
	}
}

func TestCampaignResolvedBudget(t *testing.T) {
	c := &Campaign{Name: "Spring Sale", Budget: []byte(`{"daily": 50}`), Status: CampaignStatusActive}

	b := c.ResolvedBudget()

	assert.Equal(t, BudgetKindDaily, b.Kind)
	assert.Equal(t, "1500", b.Spend().String())
	assert.True(t, c.IsReportable())
}

func TestCampaignStatusScan(t *testing.T) {
	var s CampaignStatus
	assert.NoError(t, s.Scan("ACTIVE"))
	assert.Equal(t, CampaignStatusActive, s)

	assert.NoError(t, s.Scan([]byte("Paused")))
	assert.Equal(t, CampaignStatusPaused, s)

	assert.Error(t, s.Scan(42))

	_, err := CampaignStatus("bogus").Value()
	assert.Error(t, err)
}
