// Package handler はvolatilityフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"goldeye_backend/internal/feature/volatility/domain/entity"
	"goldeye_backend/internal/feature/volatility/transport/http/dto"
	"goldeye_backend/internal/feature/volatility/usecase"
)

// VolatilityUsecase はボラティリティ系列構築のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type VolatilityUsecase interface {
	Build(ctx context.Context, q usecase.Query) (entity.PriceSeries, error)
	BuildAll(ctx context.Context) ([]entity.AssetVolatility, error)
}

// VolatilityHandler はボラティリティのHTTPリクエストを処理します。
type VolatilityHandler struct {
	uc VolatilityUsecase
}

// NewVolatilityHandler は指定されたusecaseでVolatilityHandlerの新しいインスタンスを生成します。
func NewVolatilityHandler(uc VolatilityUsecase) *VolatilityHandler {
	return &VolatilityHandler{uc: uc}
}

// GetSeries はティッカーのローリング年率ボラティリティ系列をJSONで返します。
// データがない場合は points が空の系列を返します。クエリが不正な場合は400を返します。
//
// エンドポイント例:
// GET /volatility/GC=F?period=1mo&interval=1h&window=24
func (h *VolatilityHandler) GetSeries(c *gin.Context) {
	q := usecase.Query{
		Ticker:   c.Param("ticker"),
		Period:   c.Query("period"),
		Interval: c.Query("interval"),
	}
	// 未指定の場合はusecase側のデフォルト値を使用
	if raw := c.Query("window"); raw != "" {
		w, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("window must be an integer: %q", raw)})
			return
		}
		q.Window = w
	}

	s, err := h.uc.Build(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	// データをフォーマット
	out := dto.PriceSeriesResponse{
		Ticker:   s.Ticker,
		Period:   s.Period,
		Interval: s.Interval,
		Window:   s.Window,
		Prices:   make([]dto.PricePointResponse, 0, len(s.Prices)),
		Points:   make([]dto.VolatilityPointResponse, 0, len(s.Points)),
	}
	for _, p := range s.Prices {
		out.Prices = append(out.Prices, dto.PricePointResponse{Time: p.Time.UTC(), Close: p.Close})
	}
	for _, p := range s.Points {
		out.Points = append(out.Points, dto.VolatilityPointResponse{
			Time:       p.Time.UTC(),
			Close:      p.Close,
			Return:     p.Return,
			Volatility: p.Volatility,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Overview は追跡銘柄ごとの最新ボラティリティを返します。
//
// エンドポイント例:
// GET /volatility
func (h *VolatilityHandler) Overview(c *gin.Context) {
	rows, err := h.uc.BuildAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.AssetVolatilityResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.AssetVolatilityResponse{
			Name:     r.Asset.Name,
			Ticker:   r.Asset.Ticker,
			Interval: r.Series.Interval,
			Points:   len(r.Series.Points),
		}
		if r.Latest != nil {
			v := r.Latest.Volatility
			at := r.Latest.Time.UTC()
			item.Latest = &v
			item.AsOf = &at
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}
