package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"customerdb/internal/model"
)

// StatusResponse システム状態
type StatusResponse struct {
	Initialized    bool             `json:"initialized"` // データがあるか
	CompanyCount   int              `json:"companyCount"`
	PersonCount    int              `json:"personCount"`
	LastImport     *model.ImportLog `json:"lastImport"`
	LastImportTime string           `json:"lastImportTime"`
}

// GetStatus システム状態を取得する
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	companies, err := h.store.Count(ctx, model.EntityCompany)
	if err != nil {
		h.respondError(c, err)
		return
	}
	people, err := h.store.Count(ctx, model.EntityPerson)
	if err != nil {
		h.respondError(c, err)
		return
	}

	last, err := h.store.LastImportLog(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := StatusResponse{
		Initialized:  companies+people > 0,
		CompanyCount: companies,
		PersonCount:  people,
		LastImport:   last,
	}
	if last != nil {
		resp.LastImportTime = last.CreatedAt.Format("2006-01-02 15:04:05")
	}
	c.JSON(http.StatusOK, resp)
}
