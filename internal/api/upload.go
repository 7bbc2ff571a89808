package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"customerdb/internal/importer"
)

// multipartOverhead 境界行やパートヘッダの分として本文上限に上乗せする
const multipartOverhead = 1 << 20

// readUpload multipart の file 欄を読み込む
func (h *Handler) readUpload(c *gin.Context) (importer.Upload, int, error) {
	bodyLimit := h.maxUpload + multipartOverhead
	if c.Request.ContentLength > bodyLimit {
		return importer.Upload{}, http.StatusRequestEntityTooLarge, h.tooLarge()
	}
	// Content-Length が無い場合もパース前に本文を打ち切る
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return importer.Upload{}, http.StatusRequestEntityTooLarge, h.tooLarge()
		}
		return importer.Upload{}, http.StatusBadRequest, fmt.Errorf("ファイルが見つかりません")
	}
	if fh.Size > h.maxUpload {
		return importer.Upload{}, http.StatusRequestEntityTooLarge, h.tooLarge()
	}

	f, err := fh.Open()
	if err != nil {
		return importer.Upload{}, http.StatusInternalServerError, fmt.Errorf("ファイルを開けません")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		return importer.Upload{}, http.StatusInternalServerError, fmt.Errorf("ファイルを読み込めません")
	}
	if int64(len(data)) > h.maxUpload {
		return importer.Upload{}, http.StatusRequestEntityTooLarge, h.tooLarge()
	}

	return importer.Upload{Filename: fh.Filename, Data: data}, http.StatusOK, nil
}

func (h *Handler) tooLarge() error {
	return fmt.Errorf("ファイルが大きすぎます（上限 %d MB）", h.maxUpload>>20)
}

// Upload スプレッドシートを取り込む
// POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	up, status, err := h.readUpload(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error(), "committed": 0})
		return
	}

	outcome := h.coordinator.Ingest(c.Request.Context(), up)
	c.JSON(importer.StatusCode(outcome), importer.Response(outcome))
}

// UploadStream 取込の進捗を SSE で返す
// POST /api/upload/stream
func (h *Handler) UploadStream(c *gin.Context) {
	up, status, err := h.readUpload(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error(), "committed": 0})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ストリーム応答に対応していません"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progressChan := h.coordinator.Import(c.Request.Context(), up)
	// 接続が切れても取込は最後まで走らせる
	defer func() {
		go func() {
			for range progressChan {
			}
		}()
	}()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-progressChan:
			if !ok {
				return
			}
			eventData, err := json.Marshal(event)
			if err != nil {
				continue
			}
			// SSE 形式: data: {json}\n\n
			fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
			flusher.Flush()
		}
	}
}
