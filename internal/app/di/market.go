// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"goldeye_backend/internal/app/config"
	"goldeye_backend/internal/feature/volatility/adapters/twelvedata"
	"goldeye_backend/internal/feature/volatility/adapters/yahoo"
	"goldeye_backend/internal/feature/volatility/usecase"
	infrahttp "goldeye_backend/internal/platform/http"
)

// marketTimeout is the per-request timeout for market-data providers.
const marketTimeout = 10 * time.Second

// NewMarket creates the MarketRepository selected by cfg.Provider.
func NewMarket(cfg config.MarketConfig) usecase.MarketRepository {
	switch cfg.Provider {
	case config.ProviderTwelveData:
		tdCfg := twelvedata.Config{
			TwelveDataAPIKey: cfg.TwelveDataAPIKey,
			BaseURL:          cfg.TwelveDataBaseURL,
			Timeout:          marketTimeout,
		}
		return twelvedata.NewTwelveDataMarket(tdCfg, infrahttp.NewHTTPClient(tdCfg.Timeout, ""))
	default:
		yCfg := yahoo.Config{BaseURL: cfg.YahooBaseURL, Timeout: marketTimeout}
		// Yahoo rejects requests without a browser-like User-Agent
		return yahoo.NewYahooMarket(yCfg, infrahttp.NewHTTPClient(yCfg.Timeout, infrahttp.BrowserUserAgent))
	}
}
