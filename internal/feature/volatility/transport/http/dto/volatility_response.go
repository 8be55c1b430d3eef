// Package dto defines data transfer objects for the volatility HTTP API.
package dto

import "time"

// PriceSeriesResponse is the body of GET /volatility/:ticker.
type PriceSeriesResponse struct {
	Ticker   string                    `json:"ticker"`
	Period   string                    `json:"period"`
	Interval string                    `json:"interval"`
	Window   int                       `json:"window"`
	Prices   []PricePointResponse      `json:"prices"`
	Points   []VolatilityPointResponse `json:"points"`
}

// PricePointResponse is one close observation.
type PricePointResponse struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// VolatilityPointResponse is one annualized volatility observation.
type VolatilityPointResponse struct {
	Time       time.Time `json:"time"`
	Close      float64   `json:"close"`
	Return     float64   `json:"return"`
	Volatility float64   `json:"volatility"`
}

// AssetVolatilityResponse is one row of GET /volatility.
// Latest and AsOf are null when there is no data for the asset.
type AssetVolatilityResponse struct {
	Name     string     `json:"name"`
	Ticker   string     `json:"ticker"`
	Interval string     `json:"interval"`
	Latest   *float64   `json:"latest"`
	AsOf     *time.Time `json:"as_of"`
	Points   int        `json:"points"`
}
