package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"customerdb/internal/model"
	"customerdb/internal/store"
)

// respondError エラー種別に応じたステータスで返す
func (h *Handler) respondError(c *gin.Context, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "fields": ve.Fields})
	case model.IsClientError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "見つかりません"})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "内部エラーが発生しました"})
	}
}
