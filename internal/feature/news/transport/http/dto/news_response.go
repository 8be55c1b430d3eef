// Package dto defines data transfer objects for the news HTTP API.
package dto

import "time"

// NewsItemResponse はニュース1件のレスポンスDTOです。
type NewsItemResponse struct {
	SourceFeed  string    `json:"source_feed"`
	Title       string    `json:"title"` // HTMLタグ除去済み
	Body        string    `json:"body"`  // HTMLタグ除去済み
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	ImpactTags  []string  `json:"impact_tags"`
	Impact      string    `json:"impact"` // 例: "rates, jobs"
	Sentiment   string    `json:"sentiment"`
}

// HeatmapCellResponse は (インパクト, センチメント) ごとの件数です。
type HeatmapCellResponse struct {
	Impact    string `json:"impact"`
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

// FeedSourceResponse は設定済みフィードです。
type FeedSourceResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
