package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCeilDays(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same instant", base, 0},
		{"one second later", base.Add(time.Second), 1},
		{"exactly one day", base.Add(24 * time.Hour), 1},
		{"one day and a minute", base.Add(24*time.Hour + time.Minute), 2},
		{"before start", base.Add(-time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CeilDays(base, tt.to))
		})
	}
}

func TestStartOfDayUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	in := time.Date(2026, 3, 2, 1, 30, 0, 0, loc)

	got := StartOfDayUTC(in)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Nil(t, FirstNonEmpty(nil, ToPtr("  ")))
	assert.Equal(t, "google", *FirstNonEmpty(nil, ToPtr(""), ToPtr(" google ")))
	assert.Equal(t, "direct", StringOr(nil, "direct"))
	assert.Equal(t, "x", StringOr(ToPtr("x"), "direct"))
}
