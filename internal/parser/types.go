package parser

import "customerdb/internal/model"

// RawRow 1 データ行（正規化済み見出し → セル値）
// 見出し行にある列は空セルでも "" として必ず入る
type RawRow map[string]string

// Sheet ワークブック先頭シートの読取結果
type Sheet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"` // 正規化済み、列順
	Rows    []RawRow `json:"-"`
}

// SchemaRecognition 見出しからの種別判定結果
type SchemaRecognition struct {
	Kind           model.EntityKind `json:"kind"`
	CompanyMarkers []string         `json:"companyMarkers,omitempty"` // 一致した法人マーカー
	PersonMarkers  []string         `json:"personMarkers,omitempty"`  // 一致した個人マーカー
}

// Ambiguous 法人・個人の両方のマーカーを含む（法人として扱われる）
func (r SchemaRecognition) Ambiguous() bool {
	return len(r.CompanyMarkers) > 0 && len(r.PersonMarkers) > 0
}
