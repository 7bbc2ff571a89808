package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"customerdb/internal/model"
	"customerdb/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "customerdb.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func buildXLSX(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestIngest_CompanySheet(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	coord := NewCoordinator(st, Options{})
	ctx := context.Background()

	data := buildXLSX(t,
		[]any{"商号", "関与先コード", "事務所コード"},
		[]any{"株式会社A", 100, 1},
		[]any{"株式会社B", 101, 1},
	)

	outcome := coord.Ingest(ctx, Upload{Filename: "companies.xlsx", Data: data})
	require.False(t, outcome.Failed(), outcome.Error)
	assert.Equal(t, 2, outcome.Inserted)
	assert.Equal(t, "companies", outcome.Target)
	assert.NotEmpty(t, outcome.UploadID)

	list, err := st.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "株式会社A", list[0].NameKanji)
	assert.Equal(t, "100", list[0].ClientCode)
	assert.Equal(t, "", list[0].Phone)

	// 同じファイルを再取込しても件数は変わらない
	again := coord.Ingest(ctx, Upload{Filename: "companies.xlsx", Data: data})
	require.False(t, again.Failed(), again.Error)
	n, err := st.Count(ctx, model.EntityCompany)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	last, err := st.LastImportLog(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, again.UploadID, last.ID)
	assert.Equal(t, "completed", last.Status)
	assert.Equal(t, 2, last.Committed)
	assert.Len(t, last.FileHash, 64)
}

func TestIngest_UnclassifiableCommitsNothing(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	data := buildXLSX(t,
		[]any{"関与先コード", "備考"},
		[]any{1, "x"},
	)
	outcome := NewCoordinator(st, Options{}).Ingest(ctx, Upload{Filename: "x.xlsx", Data: data})
	require.True(t, outcome.Failed())
	assert.Zero(t, outcome.Committed)

	var ue *model.UnclassifiableSchemaError
	assert.ErrorAs(t, outcome.Err, &ue)

	for _, kind := range []model.EntityKind{model.EntityCompany, model.EntityPerson} {
		n, err := st.Count(ctx, kind)
		require.NoError(t, err)
		assert.Zero(t, n)
	}

	last, err := st.LastImportLog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "failed", last.Status)
}

func TestIngest_HeaderOnlySheet(t *testing.T) {
	t.Parallel()

	data := buildXLSX(t, []any{"氏名", "個人コード"})
	outcome := NewCoordinator(newTestStore(t), Options{}).Ingest(context.Background(), Upload{Filename: "p.xlsx", Data: data})
	require.True(t, outcome.Failed())
	assert.Equal(t, "シートが空です", outcome.Error)
	assert.Equal(t, 400, StatusCode(outcome))
}

func TestIngest_NonNumericKeyFailsAtChunk(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	rows := [][]any{{"氏名", "関与先コード", "個人コード"}}
	for i := 1; i <= 5; i++ {
		rows = append(rows, []any{"山田", 1, i})
	}
	rows = append(rows, []any{"不正", "abc", 6})

	outcome := NewCoordinator(st, Options{ChunkSize: 2}).Ingest(ctx, Upload{Filename: "p.xlsx", Data: buildXLSX(t, rows...)})
	require.True(t, outcome.Failed())
	assert.Equal(t, 4, outcome.Committed)
	assert.Equal(t, "people", outcome.Target)
	assert.Equal(t, 500, StatusCode(outcome))

	n, err := st.Count(ctx, model.EntityPerson)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestImport_EmitsStatesInOrder(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	rows := [][]any{{"氏名", "関与先コード", "個人コード"}}
	for i := 1; i <= 120; i++ {
		rows = append(rows, []any{"個人", 1, i})
	}

	ch := NewCoordinator(st, Options{ChunkSize: 50}).Import(context.Background(), Upload{Filename: "p.xlsx", Data: buildXLSX(t, rows...)})

	var states []model.UploadState
	var last ProgressEvent
	for evt := range ch {
		states = append(states, evt.Type)
		last = evt
	}

	assert.Equal(t, []model.UploadState{
		model.StateReceived,
		model.StateParsed,
		model.StateClassified,
		model.StateMapped,
		model.StateUpserting,
		model.StateUpserting,
		model.StateUpserting,
		model.StateCompleted,
	}, states)
	assert.Equal(t, map[string]interface{}{"inserted": 120, "target": "people"}, last.Data)
}

func TestIngest_IgnoresCallerCancellation(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := buildXLSX(t, []any{"商号", "関与先コード"}, []any{"A", 1})
	outcome := NewCoordinator(st, Options{}).Ingest(ctx, Upload{Filename: "c.xlsx", Data: data})
	require.False(t, outcome.Failed(), outcome.Error)
	assert.Equal(t, 1, outcome.Inserted)
}
