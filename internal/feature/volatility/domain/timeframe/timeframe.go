// Package timeframe describes the bar intervals and lookback periods accepted
// by the market-data providers.
package timeframe

import (
	"fmt"
	"time"
)

// tradingDaysPerYear is the usual annualization convention for daily bars.
const tradingDaysPerYear = 252

// Interval is one supported bar size.
type Interval struct {
	Name     string
	Duration time.Duration // Nominal calendar length of one bar
	// BarsPerYear is the annualization base: 252 daily bars, 252*24 hourly
	// bars (hourly bars are not restricted to trading hours), 52 weeks, 12 months.
	BarsPerYear float64
}

var intervals = map[string]Interval{
	"1m":  minutes("1m", 1),
	"2m":  minutes("2m", 2),
	"5m":  minutes("5m", 5),
	"15m": minutes("15m", 15),
	"30m": minutes("30m", 30),
	"60m": minutes("60m", 60),
	"90m": minutes("90m", 90),
	"1h":  {Name: "1h", Duration: time.Hour, BarsPerYear: tradingDaysPerYear * 24},
	"1d":  {Name: "1d", Duration: 24 * time.Hour, BarsPerYear: tradingDaysPerYear},
	"1wk": {Name: "1wk", Duration: 7 * 24 * time.Hour, BarsPerYear: 52},
	"1mo": {Name: "1mo", Duration: 30 * 24 * time.Hour, BarsPerYear: 12},
}

func minutes(name string, n int) Interval {
	return Interval{
		Name:        name,
		Duration:    time.Duration(n) * time.Minute,
		BarsPerYear: tradingDaysPerYear * 24 * 60 / float64(n),
	}
}

// ParseInterval looks up a supported interval by name.
func ParseInterval(name string) (Interval, error) {
	iv, ok := intervals[name]
	if !ok {
		return Interval{}, fmt.Errorf("unsupported interval %q", name)
	}
	return iv, nil
}

// periodDays maps each supported lookback to its approximate length in
// calendar days. "max" is unbounded and maps to 0.
var periodDays = map[string]int{
	"1d":  1,
	"5d":  5,
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
	"10y": 3650,
	"ytd": 365,
	"max": 0,
}

// PeriodDays returns the approximate length of period in calendar days.
// It returns 0 for "max".
func PeriodDays(period string) (int, error) {
	d, ok := periodDays[period]
	if !ok {
		return 0, fmt.Errorf("unsupported period %q", period)
	}
	return d, nil
}
