// Package router はHTTPルーティングを定義します。
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	assethandler "goldeye_backend/internal/feature/assets/transport/handler"
	newshandler "goldeye_backend/internal/feature/news/transport/handler"
	volhandler "goldeye_backend/internal/feature/volatility/transport/handler"
	"goldeye_backend/internal/platform/http/handler"
)

// Handlers はルーターに登録するフィーチャーごとのハンドラーです。
type Handlers struct {
	News       *newshandler.NewsHandler
	Assets     *assethandler.AssetHandler
	Volatility *volhandler.VolatilityHandler
	// CacheBackend は /healthz に表示するキャッシュの種類です。
	CacheBackend string
}

// NewRouter はダッシュボード向けの読み取り専用APIを持つルーターを生成します。
// allowedOrigins が空の場合はすべてのオリジンを許可します。
func NewRouter(h Handlers, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	// ブラウザのダッシュボードから呼び出すためCORSを許可
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// 導通確認用
	health := handler.Health(h.CacheBackend)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	news := r.Group("/news")
	{
		news.GET("", h.News.List)
		news.GET("/important", h.News.Important)
		news.GET("/heatmap", h.News.Heatmap)
		news.GET("/feeds", h.News.Feeds)
	}

	r.GET("/assets", h.Assets.List)

	r.GET("/volatility", h.Volatility.Overview)
	r.GET("/volatility/:ticker", h.Volatility.GetSeries)

	return r
}
