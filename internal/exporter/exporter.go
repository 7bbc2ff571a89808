package exporter

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"customerdb/internal/model"
	"customerdb/internal/parser"
)

// Source エクスポート元
type Source interface {
	ListCompanies(ctx context.Context) ([]model.StoredCompany, error)
	ListPeople(ctx context.Context) ([]model.StoredPerson, error)
}

// Exporter 顧客データを xlsx に書き出す
//
// 見出しは各項目の代表見出しを使うので、出力したファイルはそのまま再取込できる。
type Exporter struct {
	source Source
	mapper *parser.FieldMapper
}

// NewExporter エクスポーターを作成する
func NewExporter(source Source) *Exporter {
	return &Exporter{
		source: source,
		mapper: parser.NewFieldMapper(),
	}
}

// SheetName 種別ごとのシート名
func SheetName(kind model.EntityKind) string {
	if kind == model.EntityPerson {
		return "個人"
	}
	return "法人"
}

// Filename 種別ごとの既定ファイル名
func Filename(kind model.EntityKind) string {
	return kind.Table() + ".xlsx"
}

// Export 1 種別分を 1 シートのワークブックにする
func (e *Exporter) Export(ctx context.Context, kind model.EntityKind, progress func(ProgressEvent)) (*excelize.File, error) {
	reportProgress(progress, 0, "loading")

	records, err := e.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	reportProgress(progress, 30, "writing")

	f := excelize.NewFile()
	sheet := SheetName(kind)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := e.writeHeader(f, sheet, kind); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		values := toCells(e.mapper.Values(rec))
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
		if len(records) > 0 && (i+1)%100 == 0 {
			reportProgress(progress, 30+60*(i+1)/len(records), "writing")
		}
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "done")
	return f, nil
}

func (e *Exporter) load(ctx context.Context, kind model.EntityKind) ([]model.Record, error) {
	switch kind {
	case model.EntityCompany:
		list, err := e.source.ListCompanies(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]model.Record, len(list))
		for i := range list {
			records[i] = list[i].Company
		}
		return records, nil
	case model.EntityPerson:
		list, err := e.source.ListPeople(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]model.Record, len(list))
		for i := range list {
			records[i] = list[i].Person
		}
		return records, nil
	}
	return nil, fmt.Errorf("unknown entity kind: %q", kind)
}

func (e *Exporter) writeHeader(f *excelize.File, sheet string, kind model.EntityKind) error {
	headers := toCells(e.mapper.Headers(kind))
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

// toCells 文字列のまま書き込む（先頭ゼロの郵便番号などを保つ）
func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
