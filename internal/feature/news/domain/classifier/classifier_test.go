package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goldeye_backend/internal/feature/news/domain/entity"
)

func TestClassify_Scenarios(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig())

	tests := []struct {
		name          string
		title         string
		body          string
		wantTags      []string
		wantSentiment entity.Sentiment
	}{
		{
			name:          "fed rate hike with strong jobs growth",
			title:         "Fed hints at rate hike amid strong jobs growth",
			wantTags:      []string{"rates", "jobs"},
			wantSentiment: entity.SentimentPositive,
		},
		{
			name:          "gold and dollar in body",
			title:         "Precious metals update",
			body:          "Bullion slips as the greenback firms; traders eye decline",
			wantTags:      []string{"gold", "usd"},
			wantSentiment: entity.SentimentNegative,
		},
		{
			name:          "mixed sentiment",
			title:         "CPI rise offsets weak payroll data",
			wantTags:      []string{"inflation", "jobs"},
			wantSentiment: entity.SentimentMixed,
		},
		{
			name:          "no keywords",
			title:         "Company announces new headquarters",
			wantTags:      []string{"general"},
			wantSentiment: entity.SentimentNeutral,
		},
		{
			name:          "case insensitive",
			title:         "FEDERAL RESERVE HOLDS",
			wantTags:      []string{"rates"},
			wantSentiment: entity.SentimentNeutral,
		},
		{
			name:          "empty input",
			wantTags:      []string{"general"},
			wantSentiment: entity.SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tags, sentiment := c.Classify(tt.title, tt.body)
			assert.Equal(t, tt.wantTags, tags)
			assert.Equal(t, tt.wantSentiment, sentiment)
		})
	}
}

func TestClassify_RatesTagCompleteness(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig())
	texts := []string{
		"The Fed is watching",
		"interest rate decision looms",
		"Markets brace for new interest rate path",
		"fed",
	}
	for _, text := range texts {
		tags := c.Impact(text, "")
		assert.Contains(t, tags, "rates", "text %q", text)
	}
}

func TestClassify_SentimentPrecedence(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig())
	cfg := DefaultConfig()

	for _, p := range cfg.PositiveWords {
		for _, n := range cfg.NegativeWords {
			assert.Equal(t, entity.SentimentMixed, c.Sentiment(p, n), "pos=%q neg=%q", p, n)
		}
	}
	assert.Equal(t, entity.SentimentNeutral, c.Sentiment("quiet session", "nothing to see"))
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig())
	inputs := [][2]string{
		{"Gold rises", "dollar weak"},
		{"", ""},
		{"Payroll data", "Unemployment falls"},
	}
	for _, in := range inputs {
		tags1, s1 := c.Classify(in[0], in[1])
		tags2, s2 := c.Classify(in[0], in[1])
		assert.Equal(t, tags1, tags2)
		assert.Equal(t, s1, s2)
	}
}

func TestClassify_SubstringMatchesInsideWords(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig())

	// 部分一致のため "FedEx" でも rates が付与され、"strongly" も positive になる
	tags, sentiment := c.Classify("FedEx shares trade strongly", "")
	assert.Equal(t, []string{"rates"}, tags)
	assert.Equal(t, entity.SentimentPositive, sentiment)
}

func TestClassify_WordMode(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Mode = MatchWord
	c := New(cfg)

	tags, sentiment := c.Classify("FedEx shares trade strongly", "")
	assert.Equal(t, []string{"general"}, tags)
	assert.Equal(t, entity.SentimentNeutral, sentiment)

	tags, sentiment = c.Classify("Fed signals rate hike as growth stays strong", "")
	assert.Equal(t, []string{"rates"}, tags)
	assert.Equal(t, entity.SentimentPositive, sentiment)

	tags, _ = c.Classify("Precious metal demand", "")
	assert.Equal(t, []string{"gold"}, tags)
}

func TestNew_IgnoresEmptyKeywords(t *testing.T) {
	t.Parallel()

	c := New(Config{
		Categories:    []Category{{Name: "gold", Keywords: []string{"", "  ", "GOLD"}}},
		PositiveWords: []string{""},
	})

	tags, sentiment := c.Classify("gold price", "")
	assert.Equal(t, []string{"gold"}, tags)
	assert.Equal(t, entity.SentimentNeutral, sentiment)

	tags, _ = c.Classify("silver price", "")
	assert.Equal(t, []string{"general"}, tags)
}
