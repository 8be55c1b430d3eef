package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"goldeye_backend/internal/feature/assets/domain/entity"
	"goldeye_backend/internal/feature/assets/transport/http/dto"
)

// AssetUsecase は追跡銘柄に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type AssetUsecase interface {
	ListAssets(ctx context.Context) ([]entity.Asset, error)
}

// AssetHandler は追跡銘柄に関するHTTPリクエストを処理します。
type AssetHandler struct {
	uc AssetUsecase
}

// NewAssetHandler は新しい AssetHandler を作成します。
func NewAssetHandler(uc AssetUsecase) *AssetHandler {
	return &AssetHandler{uc: uc}
}

// List は追跡銘柄の一覧を表示順で返します。
// Usecaseでエラーが発生した場合は500 Internal Server Errorを返します。
func (h *AssetHandler) List(c *gin.Context) {
	assets, err := h.uc.ListAssets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.AssetItem, 0, len(assets))
	for _, a := range assets {
		out = append(out, dto.AssetItem{Name: a.Name, Ticker: a.Ticker})
	}
	c.JSON(http.StatusOK, out)
}
