// Package entity defines the domain models for the assets feature.
package entity

// Asset is one tracked market instrument shown on the volatility board.
type Asset struct {
	Name    string `json:"name" yaml:"name" validate:"required"`     // Display name (e.g., "Gold")
	Ticker  string `json:"ticker" yaml:"ticker" validate:"required"` // Provider symbol (e.g., "GC=F")
	SortKey int    `json:"sort_key" yaml:"sort_key"`                 // Display order, ascending
}
