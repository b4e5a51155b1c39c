package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temmie0232/ShiftManager/internal/domain"
)

func TestNewClock_Invalid(t *testing.T) {
	_, err := NewClock("weekly", "Asia/Tokyo")
	assert.Error(t, err)

	_, err = NewClock(PeriodNext, "Mars/Olympus")
	assert.Error(t, err)
}

func TestClock_TargetPeriod(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	tests := []struct {
		name string
		mode PeriodMode
		now  time.Time
		want domain.Period
	}{
		{
			name: "next mode mid month",
			mode: PeriodNext,
			now:  time.Date(2025, 2, 10, 10, 0, 0, 0, tokyo),
			want: domain.Period{Year: 2025, Month: 3},
		},
		{
			name: "next mode crosses year",
			mode: PeriodNext,
			now:  time.Date(2024, 12, 31, 23, 59, 0, 0, tokyo),
			want: domain.Period{Year: 2025, Month: 1},
		},
		{
			name: "current mode",
			mode: PeriodCurrent,
			now:  time.Date(2025, 2, 10, 10, 0, 0, 0, tokyo),
			want: domain.Period{Year: 2025, Month: 2},
		},
		{
			// UTC 仍是 1 月 31 日，东京已是 2 月 1 日
			name: "evaluated in configured zone",
			mode: PeriodNext,
			now:  time.Date(2025, 1, 31, 16, 0, 0, 0, time.UTC),
			want: domain.Period{Year: 2025, Month: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock, err := NewClock(tt.mode, "Asia/Tokyo")
			require.NoError(t, err)
			assert.Equal(t, tt.want, clock.TargetPeriod(tt.now))
		})
	}
}

func TestClock_CycleStart(t *testing.T) {
	clock, err := NewClock(PeriodNext, "Asia/Tokyo")
	require.NoError(t, err)

	now := time.Date(2025, 1, 31, 16, 0, 0, 0, time.UTC)
	start := clock.CycleStart(now)

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, clock.Location()), start)
	assert.True(t, start.Before(now) || start.Equal(now))
}

func TestClock_WithNow(t *testing.T) {
	clock, err := NewClock(PeriodCurrent, "Asia/Tokyo")
	require.NoError(t, err)

	fixed := time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC)
	fixedClock := clock.WithNow(func() time.Time { return fixed })

	assert.Equal(t, domain.Period{Year: 2025, Month: 7}, fixedClock.CurrentPeriod())
	assert.True(t, fixedClock.IsCurrent(domain.Period{Year: 2025, Month: 7}, fixed))
	assert.False(t, fixedClock.IsCurrent(domain.Period{Year: 2025, Month: 8}, fixed))
}
