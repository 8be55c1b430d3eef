// Package handler はnewsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"goldeye_backend/internal/feature/news/domain/entity"
	"goldeye_backend/internal/feature/news/transport/http/dto"
	"goldeye_backend/internal/shared/htmltext"
)

// NewsUsecase はニュース集約のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type NewsUsecase interface {
	Headlines(ctx context.Context) ([]entity.NewsItem, error)
	Important(ctx context.Context, limit int) ([]entity.NewsItem, error)
	Heatmap(ctx context.Context) ([]entity.HeatmapCell, error)
	Feeds() []entity.FeedSource
}

// NewsHandler はニュースのHTTPリクエストを処理します。
type NewsHandler struct {
	uc NewsUsecase
}

// NewNewsHandler は指定されたusecaseでNewsHandlerの新しいインスタンスを生成します。
func NewNewsHandler(uc NewsUsecase) *NewsHandler {
	return &NewsHandler{uc: uc}
}

// List は重複排除済みのニュースを新しい順に返します。
//
// エンドポイント例:
// GET /news?limit=50
func (h *NewsHandler) List(c *gin.Context) {
	// 文字列を整数に変換（不正な値や0以下は全件）
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	items, err := h.uc.Headlines(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	c.JSON(http.StatusOK, toResponses(items))
}

// Important はインパクトまたはセンチメントが付与されたニュースを返します。
//
// エンドポイント例:
// GET /news/important?limit=10
func (h *NewsHandler) Important(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, err := h.uc.Important(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toResponses(items))
}

// Heatmap は (インパクト, センチメント) ごとの件数を返します。
func (h *NewsHandler) Heatmap(c *gin.Context) {
	cells, err := h.uc.Heatmap(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.HeatmapCellResponse, 0, len(cells))
	for _, cell := range cells {
		out = append(out, dto.HeatmapCellResponse{
			Impact:    cell.Impact,
			Sentiment: string(cell.Sentiment),
			Count:     cell.Count,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Feeds は設定済みのフィード一覧を返します。
func (h *NewsHandler) Feeds(c *gin.Context) {
	feeds := h.uc.Feeds()
	out := make([]dto.FeedSourceResponse, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, dto.FeedSourceResponse{Name: f.Name, URL: f.URL})
	}
	c.JSON(http.StatusOK, out)
}

func toResponses(items []entity.NewsItem) []dto.NewsItemResponse {
	out := make([]dto.NewsItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.NewsItemResponse{
			SourceFeed:  it.SourceFeed,
			Title:       htmltext.Strip(it.Title),
			Body:        htmltext.Strip(it.Body),
			Link:        it.Link,
			PublishedAt: it.PublishedAt.UTC(),
			ImpactTags:  it.ImpactTags,
			Impact:      it.Impact(),
			Sentiment:   string(it.Sentiment),
		})
	}
	return out
}
