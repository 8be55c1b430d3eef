package entity

import (
	"time"

	assetentity "goldeye_backend/internal/feature/assets/domain/entity"
)

// PricePoint is one close observation.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// VolatilityPoint is a price row whose trailing return window is full.
type VolatilityPoint struct {
	Time       time.Time `json:"time"`
	Close      float64   `json:"close"`
	Return     float64   `json:"return"`     // close/prev_close - 1
	Volatility float64   `json:"volatility"` // annualized rolling sample standard deviation of returns
}

// PriceSeries is a cleaned close history plus its rolling volatility.
// Prices are strictly increasing by time. Points holds only the rows after
// the warm-up window, so len(Points) == len(Prices)-Window when there is
// enough data and zero otherwise.
type PriceSeries struct {
	Ticker   string            `json:"ticker"`
	Period   string            `json:"period"`
	Interval string            `json:"interval"`
	Window   int               `json:"window"`
	Prices   []PricePoint      `json:"prices"`
	Points   []VolatilityPoint `json:"points"`
}

// Empty reports whether the series has no volatility points.
func (s PriceSeries) Empty() bool {
	return len(s.Points) == 0
}

// Latest returns the most recent volatility point.
func (s PriceSeries) Latest() (VolatilityPoint, bool) {
	if len(s.Points) == 0 {
		return VolatilityPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// AssetVolatility pairs a tracked asset with its series.
// Latest is nil when no volatility could be computed ("no data").
type AssetVolatility struct {
	Asset  assetentity.Asset `json:"asset"`
	Series PriceSeries       `json:"series"`
	Latest *VolatilityPoint  `json:"latest"`
}
