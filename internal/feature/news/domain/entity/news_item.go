// Package entity defines the domain models for the news feature.
package entity

import (
	"strings"
	"time"
)

// Sentiment is a coarse polarity label derived from keyword presence.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentMixed    Sentiment = "Mixed"
	SentimentNeutral  Sentiment = "Neutral"
)

// TagGeneral is assigned when no impact category matched.
const TagGeneral = "general"

// FeedSource is one named feed endpoint.
type FeedSource struct {
	Name string // Logical feed group (e.g., "Market News")
	URL  string
}

// NewsItem is a normalized headline from one feed.
type NewsItem struct {
	SourceFeed  string    `json:"source_feed"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        string    `json:"link"` // Canonical identifier, used as the dedup key
	PublishedAt time.Time `json:"published_at"`
	ImpactTags  []string  `json:"impact_tags"`
	Sentiment   Sentiment `json:"sentiment"`
}

// Impact joins the impact tags into a single label (e.g., "rates, jobs").
func (n NewsItem) Impact() string {
	if len(n.ImpactTags) == 0 {
		return TagGeneral
	}
	return strings.Join(n.ImpactTags, ", ")
}

// IsImportant reports whether the item matched an impact category or carries a non-neutral sentiment.
func (n NewsItem) IsImportant() bool {
	return n.Impact() != TagGeneral || n.Sentiment != SentimentNeutral
}

// HasTag reports whether tag is one of the item's impact tags.
func (n NewsItem) HasTag(tag string) bool {
	for _, t := range n.ImpactTags {
		if t == tag {
			return true
		}
	}
	return false
}

// HeatmapCell counts headlines sharing one (impact, sentiment) bucket.
type HeatmapCell struct {
	Impact    string    `json:"impact"`
	Sentiment Sentiment `json:"sentiment"`
	Count     int       `json:"count"`
}
