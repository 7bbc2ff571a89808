package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"customerdb/internal/model"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeOLE  = "application/x-ole-storage"
	mimeZip  = "application/zip"

	// MaxXLSRows .xls の読取行数上限（BIFF8 の行数上限）
	MaxXLSRows = 65536
)

// ReadWorkbook アップロードされたワークブックの先頭シートを読み込む
// 形式は内容から判定する（.xlsx: excelize / .xls: extrame/xls）
func ReadWorkbook(data []byte) (*Sheet, error) {
	if len(data) == 0 {
		return nil, &model.ParseError{Message: model.ErrEmptySheet}
	}

	mtype := mimetype.Detect(data)

	var (
		name string
		rows [][]string
		err  error
	)
	switch {
	case mtype.Is(mimeXLSX), mtype.Is(mimeZip):
		name, rows, err = readXLSX(data)
	case mtype.Is(mimeXLS), mtype.Is(mimeOLE):
		name, rows, err = readXLS(data)
	default:
		return nil, &model.ParseError{
			Message: "Excel ファイル（.xlsx / .xls）を選択してください",
			Err:     fmt.Errorf("unsupported content type: %s", mtype.String()),
		}
	}
	if err != nil {
		return nil, &model.ParseError{Message: "Excel ファイルを読み込めません", Err: err}
	}

	return buildSheet(name, rows)
}

func readXLSX(data []byte) (string, [][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("no worksheet found")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return "", nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return sheets[0], rows, nil
}

func readXLS(data []byte) (name string, rows [][]string, err error) {
	// extrame/xls は壊れた BIFF で panic することがある
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("broken xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", nil, fmt.Errorf("failed to open xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return "", nil, fmt.Errorf("no worksheet found")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return "", nil, fmt.Errorf("no worksheet found")
	}

	maxRow := xlsLastRow(int(sheet.MaxRow))
	rows = make([][]string, 0, maxRow+1)
	for i := 0; i <= maxRow; i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return sheet.Name, rows, nil
}

// xlsLastRow 読み取る最終行の添字（MaxXLSRows 行で打ち切る）
func xlsLastRow(maxRow int) int {
	if maxRow >= MaxXLSRows {
		return MaxXLSRows - 1
	}
	return maxRow
}

// buildSheet 1 行目を見出しとして RawRow を組み立てる
func buildSheet(name string, rows [][]string) (*Sheet, error) {
	if len(rows) == 0 {
		return nil, &model.ParseError{Message: model.ErrEmptySheet}
	}

	headers := normalizeAll(rows[0])

	// 空の見出しは無視、重複した見出しは先の列を採用
	type column struct {
		index int
		key   string
	}
	columns := make([]column, 0, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		columns = append(columns, column{index: i, key: h})
	}
	if len(columns) == 0 {
		return nil, &model.ParseError{Message: model.ErrEmptySheet}
	}

	sheet := &Sheet{
		Name:    name,
		Headers: make([]string, 0, len(columns)),
	}
	for _, col := range columns {
		sheet.Headers = append(sheet.Headers, col.key)
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		raw := make(RawRow, len(columns))
		for _, col := range columns {
			raw[col.key] = cellValue(row, col.index)
		}
		sheet.Rows = append(sheet.Rows, raw)
	}

	if len(sheet.Rows) == 0 {
		return nil, &model.ParseError{Message: model.ErrEmptySheet}
	}
	return sheet, nil
}
