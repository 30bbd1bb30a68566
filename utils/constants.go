package utils

import (
	"time"
)

// Attribution defaults
const (
	// DefaultPerformanceWindow is how far back a performance snapshot starts when no range is given
	DefaultPerformanceWindow = 30 * 24 * time.Hour

	// DailyBudgetPeriodDays approximates total spend for campaigns that only declare a daily budget
	DailyBudgetPeriodDays = 30

	// DefaultTopCampaigns is the number of campaigns listed in an attribution report
	DefaultTopCampaigns = 5

	DefaultRequestTimeout = 10 * time.Second

	DirectSource  = "direct"
	NoneCampaign  = "none"
	CurrencyScale = 2
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
