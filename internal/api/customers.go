package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"customerdb/internal/model"
)

// parseTarget :src と :id を解釈する
func parseTarget(c *gin.Context) (model.EntityKind, int64, error) {
	kind, err := model.ParseEntityKind(c.Param("src"))
	if err != nil {
		return "", 0, &model.ValidationError{Fields: map[string]string{"src": "oneof=company person"}}
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, &model.ValidationError{Fields: map[string]string{"id": "numeric"}}
	}
	return kind, id, nil
}

// SearchCustomers 法人・個人をまとめて検索する
// GET /api/customers?q=
func (h *Handler) SearchCustomers(c *gin.Context) {
	items, err := h.store.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

// GetCustomer 詳細を取得する
// GET /api/customers/:src/:id
func (h *Handler) GetCustomer(c *gin.Context) {
	kind, id, err := parseTarget(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var record interface{}
	switch kind {
	case model.EntityCompany:
		record, err = h.store.GetCompany(c.Request.Context(), id)
	case model.EntityPerson:
		record, err = h.store.GetPerson(c.Request.Context(), id)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"src":    kind,
		"record": record,
	})
}

// UpdateCustomer メモ欄を更新する
// PATCH /api/customers/:src/:id
func (h *Handler) UpdateCustomer(c *gin.Context) {
	kind, id, err := parseTarget(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var patch model.NotePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.respondError(c, &model.ValidationError{Fields: map[string]string{"body": "json"}})
		return
	}
	if err := h.validateStruct(patch); err != nil {
		h.respondError(c, err)
		return
	}
	if kind == model.EntityCompany && patch.PersonalAuditor != nil {
		h.respondError(c, &model.ValidationError{Fields: map[string]string{"personalAuditor": "unsupported"}})
		return
	}

	if err := h.store.UpdateNotes(c.Request.Context(), kind, id, patch); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"src": kind,
		"id":  id,
	}).Info("customer notes updated")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteCustomer 削除する
// DELETE /api/customers/:src/:id
func (h *Handler) DeleteCustomer(c *gin.Context) {
	kind, id, err := parseTarget(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.Delete(c.Request.Context(), kind, id); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.WithField("target", fmt.Sprintf("%s/%d", kind, id)).Info("customer deleted")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
