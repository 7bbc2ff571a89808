package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptySheet 見出し行のみ、または空のシート
const ErrEmptySheet = "シートが空です"

// ParseError アップロードされたファイルを表として読めない
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnclassifiableSchemaError 見出しから法人・個人のどちらとも判定できない
type UnclassifiableSchemaError struct {
	Headers []string
}

func (e *UnclassifiableSchemaError) Error() string {
	return "シートの種類を判別できません（法人・個人の見出しが見つかりません）"
}

// PersistError ストアが書き込みを拒否した
// Committed は失敗したチャンクより前に確定済みの件数
type PersistError struct {
	Chunk     int
	Committed int
	Err       error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("登録に失敗しました（チャンク %d）: %v", e.Chunk, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// ValidationError 項目単位の入力チェックエラー
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "入力内容が正しくありません"
	}
	msg := "入力内容が正しくありません:"
	for _, name := range sortedKeys(e.Fields) {
		msg += fmt.Sprintf(" %s=%s", name, e.Fields[name])
	}
	return msg
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsClientError 呼び出し側の入力に起因するエラーかどうか
func IsClientError(err error) bool {
	var pe *ParseError
	var ue *UnclassifiableSchemaError
	var ve *ValidationError
	return errors.As(err, &pe) || errors.As(err, &ue) || errors.As(err, &ve)
}
