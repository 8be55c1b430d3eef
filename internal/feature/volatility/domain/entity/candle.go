// Package entity defines the domain models for the volatility feature.
package entity

import "time"

// Candle represents one OHLCV bar returned by a market-data provider.
type Candle struct {
	Symbol   string    // Provider ticker (e.g., "GC=F", "^TNX")
	Interval string    // Bar size as requested (e.g., "1h", "1d")
	Time     time.Time // Bar start, UTC
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64 // Zero when the provider reports none (indices, yields)
}
