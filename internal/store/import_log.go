package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"customerdb/internal/model"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// CreateImportLog 取込開始時にログを作成する
func (s *Store) CreateImportLog(ctx context.Context, log model.ImportLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (id, filename, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, log.ID, log.Filename, log.FileSize, log.FileHash)
	if err != nil {
		return fmt.Errorf("failed to create import log: %w", err)
	}
	return nil
}

// CompleteImportLog 取込終了時にログを更新する
func (s *Store) CompleteImportLog(ctx context.Context, id, status, target string, committed int, errorMessage string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			status = ?,
			target = ?,
			committed = ?,
			error_message = ?,
			completed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ?
	`, status, target, committed, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return expectAffected(res)
}

// LastImportLog 最新の取込ログ（無ければ nil）
func (s *Store) LastImportLog(ctx context.Context) (*model.ImportLog, error) {
	var (
		log         model.ImportLog
		createdAt   string
		completedAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, filename, file_size, file_hash, target, status, committed, error_message, created_at, completed_at
		FROM import_logs
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`).Scan(&log.ID, &log.Filename, &log.FileSize, &log.FileHash, &log.Target, &log.Status,
		&log.Committed, &log.ErrorMsg, &createdAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last import log: %w", err)
	}

	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		log.CreatedAt = t
	}
	if completedAt.Valid {
		if t, err := time.Parse(timeLayout, completedAt.String); err == nil {
			log.CompletedAt = &t
		}
	}
	return &log, nil
}
