// Package dto defines data transfer objects for the assets HTTP API.
package dto

// AssetItem represents an asset in the API response.
type AssetItem struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}
