package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	assetentity "goldeye_backend/internal/feature/assets/domain/entity"
	newsentity "goldeye_backend/internal/feature/news/domain/entity"
	"goldeye_backend/internal/feature/news/domain/classifier"
)

// Tables holds the keyword, feed and asset tables. In YAML, feeds, keywords
// and assets are mappings whose key order is preserved.
type Tables struct {
	Feeds         FeedTable          `yaml:"feeds" validate:"required,min=1,dive"`
	Keywords      KeywordTable       `yaml:"keywords" validate:"required,min=1,dive"`
	PositiveWords []string           `yaml:"positive_words" validate:"required,min=1,dive,required"`
	NegativeWords []string           `yaml:"negative_words" validate:"required,min=1,dive,required"`
	MatchMode     string             `yaml:"match_mode" validate:"omitempty,oneof=substring word"`
	Assets        AssetTable         `yaml:"assets" validate:"required,min=1,dive"`
	Volatility    VolatilityDefaults `yaml:"volatility"`
}

// FeedGroup is one named group of feed URLs.
type FeedGroup struct {
	Name string   `validate:"required"`
	URLs []string `validate:"required,min=1,dive,url"`
}

// FeedTable is decoded from a mapping of group name to URL list.
type FeedTable []FeedGroup

// KeywordTable is decoded from a mapping of category name to keyword list.
type KeywordTable []classifier.Category

// AssetTable is decoded from a mapping of display name to ticker.
type AssetTable []assetentity.Asset

// VolatilityDefaults are applied to volatility queries that leave a field empty.
type VolatilityDefaults struct {
	Period   string `yaml:"period" validate:"required"`
	Interval string `yaml:"interval" validate:"required"`
	Window   int    `yaml:"window" validate:"gte=2"`
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	kw := classifier.DefaultConfig()
	return Tables{
		Feeds: FeedTable{
			{Name: "Market News", URLs: []string{
				"https://www.investing.com/rss/news.rss",
				"https://www.marketwatch.com/feeds/topstories",
			}},
			{Name: "Global News", URLs: []string{
				"https://www.reutersagency.com/feed/?best-topics=business-finance",
				"https://feeds.a.dj.com/rss/RSSMarketsMain.xml",
			}},
			{Name: "Jobs Data", URLs: []string{
				"https://www.bls.gov/feed/at-a-glance/Employment.xml",
			}},
			{Name: "Global Risk", URLs: []string{
				"https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/significant_week.geojson",
			}},
		},
		Keywords:      KeywordTable(kw.Categories),
		PositiveWords: kw.PositiveWords,
		NegativeWords: kw.NegativeWords,
		MatchMode:     string(classifier.MatchSubstring),
		Assets: AssetTable{
			{Name: "Gold Futures", Ticker: "GC=F", SortKey: 0},
			{Name: "US Dollar Index", Ticker: "DX-Y.NYB", SortKey: 1},
			{Name: "US 10Y Yield", Ticker: "^TNX", SortKey: 2},
			{Name: "S&P 500", Ticker: "^GSPC", SortKey: 3},
		},
		Volatility: VolatilityDefaults{Period: "1mo", Interval: "1h", Window: 24},
	}
}

// Sources flattens the table into one FeedSource per URL, in table order.
func (t FeedTable) Sources() []newsentity.FeedSource {
	var out []newsentity.FeedSource
	for _, g := range t {
		for _, u := range g.URLs {
			out = append(out, newsentity.FeedSource{Name: g.Name, URL: u})
		}
	}
	return out
}

// Classifier builds the classifier configuration from the keyword tables.
func (t Tables) Classifier() classifier.Config {
	mode := classifier.MatchMode(t.MatchMode)
	if mode == "" {
		mode = classifier.MatchSubstring
	}
	return classifier.Config{
		Categories:    append([]classifier.Category(nil), t.Keywords...),
		PositiveWords: append([]string(nil), t.PositiveWords...),
		NegativeWords: append([]string(nil), t.NegativeWords...),
		Mode:          mode,
	}
}

// UnmarshalYAML decodes `name: [url, ...]` pairs in document order.
func (t *FeedTable) UnmarshalYAML(n *yaml.Node) error {
	out := FeedTable{}
	err := eachPair(n, "feeds", func(key string, value *yaml.Node) error {
		var urls []string
		if err := value.Decode(&urls); err != nil {
			return err
		}
		out = append(out, FeedGroup{Name: key, URLs: urls})
		return nil
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

// UnmarshalYAML decodes `category: [keyword, ...]` pairs in document order.
func (t *KeywordTable) UnmarshalYAML(n *yaml.Node) error {
	out := KeywordTable{}
	err := eachPair(n, "keywords", func(key string, value *yaml.Node) error {
		var words []string
		if err := value.Decode(&words); err != nil {
			return err
		}
		out = append(out, classifier.Category{Name: key, Keywords: words})
		return nil
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

// UnmarshalYAML decodes `name: ticker` pairs in document order.
func (t *AssetTable) UnmarshalYAML(n *yaml.Node) error {
	out := AssetTable{}
	err := eachPair(n, "assets", func(key string, value *yaml.Node) error {
		var ticker string
		if err := value.Decode(&ticker); err != nil {
			return err
		}
		out = append(out, assetentity.Asset{Name: key, Ticker: ticker, SortKey: len(out)})
		return nil
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

func eachPair(n *yaml.Node, field string, fn func(key string, value *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: line %d: expected a mapping", field, n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if err := fn(k.Value, v); err != nil {
			return fmt.Errorf("%s.%s: line %d: %w", field, k.Value, v.Line, err)
		}
	}
	return nil
}
