package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"customerdb/internal/logging"
	"customerdb/internal/metrics"
	"customerdb/internal/model"
	"customerdb/internal/parser"
)

// Store 取込に必要なストア操作
type Store interface {
	BatchStore
	CreateImportLog(ctx context.Context, log model.ImportLog) error
	CompleteImportLog(ctx context.Context, id, status, target string, committed int, errorMessage string) error
}

// Coordinator 取込パイプラインの協調役
// 受信 → 読取 → 種別判定 → 写像 → チャンク書込み の順に進める
type Coordinator struct {
	store      Store
	upserter   *Upserter
	recognizer *parser.SchemaRecognizer
	mapper     *parser.FieldMapper
	logger     *logrus.Logger
}

// Options 協調役の設定
type Options struct {
	ChunkSize int
	Logger    *logrus.Logger
}

// NewCoordinator 協調役を作成する
func NewCoordinator(st Store, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coordinator{
		store:      st,
		upserter:   NewUpserter(st, opts.ChunkSize),
		recognizer: parser.NewSchemaRecognizer(),
		mapper:     parser.NewFieldMapper(),
		logger:     logger,
	}
}

// Upload アップロードされたファイル
type Upload struct {
	Filename string
	Data     []byte
}

// ProgressEvent 進捗イベント
type ProgressEvent struct {
	Type      model.UploadState `json:"type"`
	Message   string            `json:"message"`
	Data      interface{}       `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Ingest 同期的に取込を行い結果を返す
func (c *Coordinator) Ingest(ctx context.Context, up Upload) model.IngestionOutcome {
	return c.run(ctx, up, func(ProgressEvent) {})
}

// Import 非同期に取込を行い、進捗チャネルを返す
// 最後のイベントは completed か failed で、Data に Response の本文が入る
func (c *Coordinator) Import(ctx context.Context, up Upload) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		outcome := c.run(ctx, up, func(evt ProgressEvent) {
			sendProgress(progressChan, evt)
		})

		final := ProgressEvent{
			Type:      model.StateCompleted,
			Message:   fmt.Sprintf("%d 件を登録しました", outcome.Inserted),
			Data:      Response(outcome),
			Timestamp: time.Now(),
		}
		if outcome.Failed() {
			final.Type = model.StateFailed
			final.Message = outcome.Error
		}
		// 終了イベントは落とさない
		progressChan <- final
	}()

	return progressChan
}

// run パイプライン本体
// 途中でキャンセルされないよう呼び出し元の context から切り離す
func (c *Coordinator) run(ctx context.Context, up Upload, emit func(ProgressEvent)) model.IngestionOutcome {
	ctx = context.WithoutCancel(ctx)
	startTime := time.Now()
	uploadID := uuid.NewString()
	filename := filepath.Base(up.Filename)

	log := c.logger.WithFields(logrus.Fields{
		"upload_id": uploadID,
		"filename":  filename,
	})

	sum := sha256.Sum256(up.Data)
	if err := c.store.CreateImportLog(ctx, model.ImportLog{
		ID:       uploadID,
		Filename: filename,
		FileSize: int64(len(up.Data)),
		FileHash: hex.EncodeToString(sum[:]),
	}); err != nil {
		log.WithError(err).Warn("failed to create import log")
	}

	emit(event(model.StateReceived, "ファイルを受け付けました", map[string]interface{}{
		"uploadId": uploadID,
		"filename": filename,
		"size":     len(up.Data),
	}))
	log.Info("upload received")

	var kind model.EntityKind
	finish := func(outcome model.IngestionOutcome) model.IngestionOutcome {
		outcome.Duration = time.Since(startTime)
		status := string(model.StateCompleted)
		if outcome.Failed() {
			status = string(model.StateFailed)
		}
		if err := c.store.CompleteImportLog(ctx, uploadID, status, outcome.Target, outcome.Committed, outcome.Error); err != nil {
			log.WithError(err).Warn("failed to complete import log")
		}
		metrics.RecordUpload(outcome.Target, outcome.Err)
		metrics.RecordCommitted(outcome.Target, outcome.Committed)

		entry := log.WithFields(logrus.Fields{
			"target":    outcome.Target,
			"committed": outcome.Committed,
			"duration":  outcome.Duration.String(),
		})
		if outcome.Failed() {
			entry.WithError(outcome.Err).Error("upload failed")
		} else {
			entry.Info("upload completed")
		}
		return outcome
	}

	sheet, err := parser.ReadWorkbook(up.Data)
	if err != nil {
		return finish(failed(uploadID, kind, err))
	}
	emit(event(model.StateParsed, fmt.Sprintf("%d 行を読み込みました", len(sheet.Rows)), map[string]interface{}{
		"sheet":   sheet.Name,
		"headers": sheet.Headers,
		"rows":    len(sheet.Rows),
	}))
	log.WithField("rows", len(sheet.Rows)).Debug("sheet parsed")

	recognition, err := c.recognizer.Recognize(sheet.Headers)
	if err != nil {
		return finish(failed(uploadID, kind, err))
	}
	kind = recognition.Kind
	if recognition.Ambiguous() {
		log.WithFields(logrus.Fields{
			"company_markers": recognition.CompanyMarkers,
			"person_markers":  recognition.PersonMarkers,
		}).Warn("sheet has both company and person headers, treating as company")
	}
	emit(event(model.StateClassified, fmt.Sprintf("%s として取り込みます", kind.Table()), recognition))

	records := c.mapper.MapRows(sheet.Rows, kind)
	emit(event(model.StateMapped, fmt.Sprintf("%d 件に変換しました", len(records)), map[string]interface{}{
		"target":  kind.Table(),
		"records": len(records),
	}))

	committed, err := c.upserter.Upsert(ctx, records, func(p ChunkProgress) {
		emit(event(model.StateUpserting, fmt.Sprintf("登録中 (%d/%d)", p.Index, p.Total), p))
		log.WithFields(logrus.Fields{
			"target":    kind.Table(),
			"chunk":     p.Index,
			"committed": p.Committed,
		}).Debug("writing chunk")
	})
	if err != nil {
		return finish(failed(uploadID, kind, err))
	}

	return finish(succeeded(uploadID, kind, committed))
}

func event(state model.UploadState, message string, data interface{}) ProgressEvent {
	return ProgressEvent{
		Type:      state,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// sendProgress 進捗イベントを送る（チャネルが満杯なら捨てる）
func sendProgress(ch chan ProgressEvent, evt ProgressEvent) {
	select {
	case ch <- evt:
	default:
	}
}
