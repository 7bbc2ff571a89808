package model

import "time"

// UploadState 取込パイプラインの状態
type UploadState string

const (
	StateReceived   UploadState = "received"
	StateParsed     UploadState = "parsed"
	StateClassified UploadState = "classified"
	StateMapped     UploadState = "mapped"
	StateUpserting  UploadState = "upserting"
	StateCompleted  UploadState = "completed"
	StateFailed     UploadState = "failed"
)

// IngestionOutcome 1 回のアップロードの結果
// 成功時は Inserted と Target、失敗時は Error と Committed（失敗前に確定した件数）
type IngestionOutcome struct {
	UploadID  string        `json:"uploadId,omitempty"`
	Inserted  int           `json:"inserted"`
	Target    string        `json:"target,omitempty"`
	Kind      EntityKind    `json:"-"`
	Committed int           `json:"committed"`
	Error     string        `json:"error,omitempty"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"-"`
}

// Failed 失敗した結果かどうか
func (o IngestionOutcome) Failed() bool {
	return o.Err != nil
}

// ImportLog import_logs テーブルの 1 行
type ImportLog struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	FileSize    int64      `json:"fileSize"`
	FileHash    string     `json:"fileHash"`
	Target      string     `json:"target"`
	Status      string     `json:"status"`
	Committed   int        `json:"committed"`
	ErrorMsg    string     `json:"errorMessage,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
