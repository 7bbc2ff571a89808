package importer

import (
	"context"
	"fmt"
	"time"

	"customerdb/internal/metrics"
	"customerdb/internal/model"
	"customerdb/internal/store"
)

// DefaultChunkSize 1 トランザクションあたりの件数
const DefaultChunkSize = 50

// BatchStore 一括書込みに必要なストア操作
type BatchStore interface {
	BindUpsert(rec model.Record) (store.BoundStatement, error)
	Batch(ctx context.Context, stmts []store.BoundStatement) error
}

// ChunkProgress チャンク書込み開始時の進捗
type ChunkProgress struct {
	Index     int `json:"chunk"` // 1 始まり
	Total     int `json:"total"`
	Start     int `json:"start"` // 含む
	End       int `json:"end"`   // 含まない
	Committed int `json:"committed"`
}

// Upserter レコードをチャンクに分けて順番に書き込む
type Upserter struct {
	store     BatchStore
	chunkSize int
}

// NewUpserter chunkSize が 0 以下なら DefaultChunkSize
func NewUpserter(st BatchStore, chunkSize int) *Upserter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Upserter{store: st, chunkSize: chunkSize}
}

// ChunkSize 実際のチャンクサイズ
func (u *Upserter) ChunkSize() int {
	return u.chunkSize
}

// ChunkRanges n 件を size 件ずつに分けた [start, end) の一覧
func ChunkRanges(n, size int) [][2]int {
	if n <= 0 || size <= 0 {
		return nil
	}
	ranges := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

// Upsert 全レコードを書き込み、確定した件数を返す
// 最初に失敗したチャンクで中断し PersistError を返す（それ以前のチャンクは確定済み）
func (u *Upserter) Upsert(ctx context.Context, records []model.Record, onChunk func(ChunkProgress)) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	target := records[0].Kind().Table()
	ranges := ChunkRanges(len(records), u.chunkSize)
	committed := 0

	for i, r := range ranges {
		progress := ChunkProgress{
			Index:     i + 1,
			Total:     len(ranges),
			Start:     r[0],
			End:       r[1],
			Committed: committed,
		}
		if onChunk != nil {
			onChunk(progress)
		}

		stmts := make([]store.BoundStatement, 0, r[1]-r[0])
		for j, rec := range records[r[0]:r[1]] {
			stmt, err := u.store.BindUpsert(rec)
			if err != nil {
				return committed, &model.PersistError{
					Chunk:     progress.Index,
					Committed: committed,
					Err:       fmt.Errorf("row %d: %w", r[0]+j+1, err),
				}
			}
			stmts = append(stmts, stmt)
		}

		started := time.Now()
		err := u.store.Batch(ctx, stmts)
		metrics.ObserveChunk(target, time.Since(started), err)
		if err != nil {
			return committed, &model.PersistError{
				Chunk:     progress.Index,
				Committed: committed,
				Err:       err,
			}
		}
		committed += len(stmts)
	}

	return committed, nil
}
