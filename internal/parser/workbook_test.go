package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"customerdb/internal/model"
)

func TestReadWorkbook_FirstSheetRowsInOrder(t *testing.T) {
	t.Parallel()

	data := buildXLSX(t,
		[]string{"事務所コード", "関与先コード", "商号", " 住所１ "},
		[]any{1, 100, "山田商事株式会社", "東京都千代田区"},
		[]any{1, 101, "鈴木工業", nil},
		[]any{nil, nil, nil, nil},
		[]any{2, 102, "佐藤建設"},
	)

	sheet, err := ReadWorkbook(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"事務所コード", "関与先コード", "商号", "住所1"}, sheet.Headers)
	require.Len(t, sheet.Rows, 3, "blank row is skipped")

	assert.Equal(t, RawRow{"事務所コード": "1", "関与先コード": "100", "商号": "山田商事株式会社", "住所1": "東京都千代田区"}, sheet.Rows[0])
	// 空セルは欠落させず "" で返す
	assert.Equal(t, "", sheet.Rows[1]["住所1"])
	assert.Contains(t, sheet.Rows[2], "住所1")
	assert.Equal(t, "102", sheet.Rows[2]["関与先コード"])
}

func TestReadWorkbook_OnlyFirstSheet(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	first := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(first, "A1", &[]any{"氏名", "個人コード"}))
	require.NoError(t, f.SetSheetRow(first, "A2", &[]any{"山田太郎", 7}))
	_, err := f.NewSheet("法人")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("法人", "A1", &[]any{"商号"}))
	require.NoError(t, f.SetSheetRow("法人", "A2", &[]any{"無視される"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	sheet, err := ReadWorkbook(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, first, sheet.Name)
	assert.Equal(t, []string{"氏名", "個人コード"}, sheet.Headers)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "7", sheet.Rows[0]["個人コード"])
}

func TestReadWorkbook_HeaderOnlyIsEmptySheet(t *testing.T) {
	t.Parallel()

	data := buildXLSX(t, []string{"商号", "関与先コード"})
	_, err := ReadWorkbook(data)

	var pe *model.ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, "シートが空です", pe.Error())
}

func TestReadWorkbook_RejectsNonSpreadsheet(t *testing.T) {
	t.Parallel()

	cases := map[string][]byte{
		"empty": nil,
		"text":  []byte("office,client\n1,2\n"),
		"png":   {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0},
		"zip":   {'P', 'K', 0x03, 0x04, 0, 0, 0, 0, 0, 0},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadWorkbook(data)
			var pe *model.ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
		})
	}
}

func TestReadWorkbook_DuplicateAndEmptyHeaders(t *testing.T) {
	t.Parallel()

	data := buildXLSX(t,
		[]string{"電話番号", "", "電話番号"},
		[]any{"03-1111-1111", "x", "03-2222-2222"},
	)
	sheet, err := ReadWorkbook(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"電話番号"}, sheet.Headers)
	assert.Equal(t, RawRow{"電話番号": "03-1111-1111"}, sheet.Rows[0])
}
