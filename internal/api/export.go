package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"customerdb/internal/exporter"
	"customerdb/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// parseExportTarget companies / people（company / person も可）
func parseExportTarget(target string) (model.EntityKind, bool) {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "", "companies", "company":
		return model.EntityCompany, true
	case "people", "person":
		return model.EntityPerson, true
	}
	return "", false
}

func buildExportContentDisposition(kind model.EntityKind) string {
	name := exporter.Filename(kind)
	local := exporter.SheetName(kind) + ".xlsx"
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", name, url.PathEscape(local))
}

// Export 顧客データを xlsx でダウンロードする
// GET /api/export?target=companies|people
func (h *Handler) Export(c *gin.Context) {
	kind, ok := parseExportTarget(c.Query("target"))
	if !ok {
		h.respondError(c, &model.ValidationError{Fields: map[string]string{"target": "oneof=companies people"}})
		return
	}

	f, err := h.exporter.Export(c.Request.Context(), kind, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.respondError(c, fmt.Errorf("failed to write workbook: %w", err))
		return
	}

	c.Header("Content-Disposition", buildExportContentDisposition(kind))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
