// Package classifier tags headlines with impact categories and a coarse
// sentiment label using fixed keyword tables.
package classifier

import (
	"regexp"
	"strings"

	"goldeye_backend/internal/feature/news/domain/entity"
)

// MatchMode selects how keywords are matched against text.
type MatchMode string

const (
	// MatchSubstring matches a keyword anywhere in the text, including inside
	// other words ("usd" matches "usdjpy", "fed" matches "federal" and "fedex").
	MatchSubstring MatchMode = "substring"
	// MatchWord only matches a keyword delimited by word boundaries.
	MatchWord MatchMode = "word"
)

// Category is one impact category and the keywords that select it.
type Category struct {
	Name     string   `yaml:"name" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"required,min=1,dive,required"`
}

// Config holds the keyword tables.
type Config struct {
	Categories    []Category
	PositiveWords []string
	NegativeWords []string
	Mode          MatchMode
}

// DefaultConfig returns the built-in keyword tables.
func DefaultConfig() Config {
	return Config{
		Categories: []Category{
			{Name: "gold", Keywords: []string{"gold", "bullion", "precious metal"}},
			{Name: "usd", Keywords: []string{"dollar", "usd", "greenback"}},
			{Name: "rates", Keywords: []string{"interest rate", "rate hike", "fed", "federal reserve"}},
			{Name: "inflation", Keywords: []string{"inflation", "cpi", "ppi"}},
			{Name: "jobs", Keywords: []string{"jobs", "employment", "unemployment", "payroll"}},
		},
		PositiveWords: []string{"rise", "growth", "bullish", "positive", "strong"},
		NegativeWords: []string{"fall", "decline", "bearish", "negative", "weak"},
		Mode:          MatchSubstring,
	}
}

type matcher interface {
	match(text string) bool
}

type substringMatcher []string

func (m substringMatcher) match(text string) bool {
	for _, w := range m {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

type wordMatcher struct{ re *regexp.Regexp }

func (m wordMatcher) match(text string) bool {
	return m.re != nil && m.re.MatchString(text)
}

type category struct {
	name string
	m    matcher
}

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	categories []category
	positive   matcher
	negative   matcher
}

// New builds a Classifier. Keywords are lowercased; empty keywords are ignored.
func New(cfg Config) *Classifier {
	c := &Classifier{
		positive: newMatcher(cfg.Mode, cfg.PositiveWords),
		negative: newMatcher(cfg.Mode, cfg.NegativeWords),
	}
	for _, cat := range cfg.Categories {
		c.categories = append(c.categories, category{name: cat.Name, m: newMatcher(cfg.Mode, cat.Keywords)})
	}
	return c
}

func newMatcher(mode MatchMode, words []string) matcher {
	clean := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			clean = append(clean, w)
		}
	}

	if mode != MatchWord {
		return substringMatcher(clean)
	}
	if len(clean) == 0 {
		return wordMatcher{}
	}
	quoted := make([]string, 0, len(clean))
	for _, w := range clean {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return wordMatcher{re: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)}
}

// Classify returns the impact tags and sentiment for a headline.
func (c *Classifier) Classify(title, body string) ([]string, entity.Sentiment) {
	text := normalize(title, body)
	return c.impact(text), c.sentiment(text)
}

// Impact returns the matched categories in table order, or ["general"].
func (c *Classifier) Impact(title, body string) []string {
	return c.impact(normalize(title, body))
}

// Sentiment returns the coarse sentiment label.
func (c *Classifier) Sentiment(title, body string) entity.Sentiment {
	return c.sentiment(normalize(title, body))
}

func (c *Classifier) impact(text string) []string {
	var tags []string
	for _, cat := range c.categories {
		if cat.m.match(text) {
			tags = append(tags, cat.name)
		}
	}
	if len(tags) == 0 {
		return []string{entity.TagGeneral}
	}
	return tags
}

func (c *Classifier) sentiment(text string) entity.Sentiment {
	pos := c.positive.match(text)
	neg := c.negative.match(text)
	switch {
	case pos && !neg:
		return entity.SentimentPositive
	case neg && !pos:
		return entity.SentimentNegative
	case pos && neg:
		return entity.SentimentMixed
	default:
		return entity.SentimentNeutral
	}
}

func normalize(title, body string) string {
	return strings.ToLower(title + " " + body)
}
