package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		in          string
		duration    time.Duration
		barsPerYear float64
		wantErr     bool
	}{
		{name: "daily", in: "1d", duration: 24 * time.Hour, barsPerYear: 252},
		{name: "hourly", in: "1h", duration: time.Hour, barsPerYear: 252 * 24},
		{name: "60 minutes equals hourly", in: "60m", duration: time.Hour, barsPerYear: 252 * 24},
		{name: "5 minutes", in: "5m", duration: 5 * time.Minute, barsPerYear: 252 * 24 * 12},
		{name: "weekly", in: "1wk", duration: 7 * 24 * time.Hour, barsPerYear: 52},
		{name: "monthly", in: "1mo", duration: 30 * 24 * time.Hour, barsPerYear: 12},
		{name: "unknown", in: "3h", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "twelve data spelling is not accepted", in: "1day", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			iv, err := ParseInterval(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, iv.Name)
			assert.Equal(t, tt.duration, iv.Duration)
			assert.InDelta(t, tt.barsPerYear, iv.BarsPerYear, 1e-9)
		})
	}
}

func TestPeriodDays(t *testing.T) {
	t.Parallel()

	d, err := PeriodDays("1mo")
	require.NoError(t, err)
	assert.Equal(t, 30, d)

	d, err = PeriodDays("max")
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = PeriodDays("7w")
	assert.Error(t, err)
}
