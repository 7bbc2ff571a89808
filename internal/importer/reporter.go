package importer

import (
	"errors"
	"net/http"

	"customerdb/internal/model"
)

// StatusCode 結果に対応する HTTP ステータス
// 入力起因の失敗は 400、書込み失敗などは 500
func StatusCode(o model.IngestionOutcome) int {
	if !o.Failed() {
		return http.StatusOK
	}
	if model.IsClientError(o.Err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Response 呼び出し側に返す本文
// 成功: {inserted, target} / 失敗: {error, committed}
func Response(o model.IngestionOutcome) map[string]interface{} {
	if o.Failed() {
		return map[string]interface{}{
			"error":     o.Error,
			"committed": o.Committed,
		}
	}
	return map[string]interface{}{
		"inserted": o.Inserted,
		"target":   o.Target,
	}
}

// succeeded 成功結果を組み立てる
func succeeded(uploadID string, kind model.EntityKind, inserted int) model.IngestionOutcome {
	return model.IngestionOutcome{
		UploadID:  uploadID,
		Inserted:  inserted,
		Target:    kind.Table(),
		Kind:      kind,
		Committed: inserted,
	}
}

// failed 失敗結果を組み立てる
// PersistError なら確定済み件数を引き継ぐ
func failed(uploadID string, kind model.EntityKind, err error) model.IngestionOutcome {
	o := model.IngestionOutcome{
		UploadID: uploadID,
		Kind:     kind,
		Error:    err.Error(),
		Err:      err,
	}
	if kind != "" {
		o.Target = kind.Table()
	}
	var pe *model.PersistError
	if errors.As(err, &pe) {
		o.Committed = pe.Committed
	}
	return o
}
