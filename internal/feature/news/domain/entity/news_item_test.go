package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewsItem_Impact(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "general", NewsItem{}.Impact())
	assert.Equal(t, "general", NewsItem{ImpactTags: []string{TagGeneral}}.Impact())
	assert.Equal(t, "rates, jobs", NewsItem{ImpactTags: []string{"rates", "jobs"}}.Impact())
}

func TestNewsItem_IsImportant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		item NewsItem
		want bool
	}{
		{"general and neutral", NewsItem{ImpactTags: []string{TagGeneral}, Sentiment: SentimentNeutral}, false},
		{"tagged and neutral", NewsItem{ImpactTags: []string{"gold"}, Sentiment: SentimentNeutral}, true},
		{"general and positive", NewsItem{ImpactTags: []string{TagGeneral}, Sentiment: SentimentPositive}, true},
		{"general and mixed", NewsItem{ImpactTags: []string{TagGeneral}, Sentiment: SentimentMixed}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.item.IsImportant())
		})
	}
}

func TestNewsItem_HasTag(t *testing.T) {
	t.Parallel()

	item := NewsItem{ImpactTags: []string{"rates", "usd"}}
	assert.True(t, item.HasTag("usd"))
	assert.False(t, item.HasTag("gold"))
}
