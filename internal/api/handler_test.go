package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"customerdb/internal/model"
	"customerdb/internal/parser"
	"customerdb/internal/store"
)

type testEnv struct {
	store  *store.Store
	router *gin.Engine
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), "customerdb.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	r := gin.New()
	NewHandler(st, opts).RegisterRoutes(r.Group("/api"))
	return &testEnv{store: st, router: r}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
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

func uploadRequest(t *testing.T, path, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestUpload_Companies(t *testing.T) {
	env := newTestEnv(t, Options{})

	data := buildXLSX(t,
		[]any{"商号", "関与先コード", "事務所コード"},
		[]any{"株式会社A", 100, 1},
	)
	w := env.do(t, uploadRequest(t, "/api/upload", "a.xlsx", data))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, float64(1), body["inserted"])
	assert.Equal(t, "companies", body["target"])
}

func TestUpload_Failures(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, uploadRequest(t, "/api/upload", "x.xlsx", buildXLSX(t, []any{"商号"})))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"error": "シートが空です", "committed": float64(0)}, decode(t, w))

	w = env.do(t, uploadRequest(t, "/api/upload", "x.xlsx", buildXLSX(t, []any{"備考"}, []any{"x"})))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, uploadRequest(t, "/api/upload", "x.txt", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_PersistFailureReportsCommitted(t *testing.T) {
	env := newTestEnv(t, Options{ChunkSize: 1})

	data := buildXLSX(t,
		[]any{"氏名", "関与先コード", "個人コード"},
		[]any{"A", 1, 1},
		[]any{"B", "x", 2},
	)
	w := env.do(t, uploadRequest(t, "/api/upload", "p.xlsx", data))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["committed"])
	assert.NotEmpty(t, body["error"])
}

func TestUpload_TooLarge(t *testing.T) {
	env := newTestEnv(t, Options{MaxUploadBytes: 10})

	w := env.do(t, uploadRequest(t, "/api/upload", "a.xlsx", bytes.Repeat([]byte("a"), 11)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUpload_OversizedBodyRejectedBeforeParsing(t *testing.T) {
	env := newTestEnv(t, Options{MaxUploadBytes: 1 << 10})
	data := bytes.Repeat([]byte("a"), multipartOverhead+2<<10)

	w := env.do(t, uploadRequest(t, "/api/upload", "a.xlsx", data))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// 長さ不明（chunked）の本文も読み込み途中で打ち切る
	req := uploadRequest(t, "/api/upload", "a.xlsx", data)
	req.ContentLength = -1
	w = env.do(t, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	n, err := env.store.Count(context.Background(), model.EntityCompany)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUploadStream_EmitsEvents(t *testing.T) {
	env := newTestEnv(t, Options{})

	data := buildXLSX(t, []any{"氏名", "個人コード"}, []any{"山田", 1})
	w := env.do(t, uploadRequest(t, "/api/upload/stream", "p.xlsx", data))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var types []string
	for _, line := range strings.Split(w.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var evt struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt))
		types = append(types, evt.Type)
	}
	assert.Equal(t, []string{"received", "parsed", "classified", "mapped", "upserting", "completed"}, types)
}

func seed(t *testing.T, st *store.Store, recs ...model.Record) {
	t.Helper()
	stmts := make([]store.BoundStatement, 0, len(recs))
	for _, rec := range recs {
		stmt, err := st.BindUpsert(rec)
		require.NoError(t, err)
		stmts = append(stmts, stmt)
	}
	require.NoError(t, st.Batch(context.Background(), stmts))
}

func TestCustomers_SearchGetPatchDelete(t *testing.T) {
	env := newTestEnv(t, Options{})
	seed(t, env.store,
		model.Company{OfficeCode: "1", ClientCode: "10", NameKanji: "田中商事"},
		model.Person{OfficeCode: "1", ClientCode: "10", PersonCode: "1", NameKanji: "田中一郎"},
	)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/customers?q="+"%E7%94%B0%E4%B8%AD", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["total"])

	people, err := env.store.ListPeople(context.Background())
	require.NoError(t, err)
	id := strconv.FormatInt(people[0].ID, 10)

	patch := `{"customNote":"来月訪問","personalAuditor":"佐藤"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/customers/person/"+id, strings.NewReader(patch))
	req.Header.Set("Content-Type", "application/json")
	w = env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/customers/person/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	record := decode(t, w)["record"].(map[string]any)
	assert.Equal(t, "来月訪問", record["customNote"])
	assert.Equal(t, "佐藤", record["personalAuditor"])
	assert.Equal(t, "田中一郎", record["nameKanji"])

	w = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/customers/person/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/customers/person/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomers_Validation(t *testing.T) {
	env := newTestEnv(t, Options{})
	seed(t, env.store, model.Company{OfficeCode: "1", ClientCode: "10", NameKanji: "A"})
	companies, err := env.store.ListCompanies(context.Background())
	require.NoError(t, err)
	id := strconv.FormatInt(companies[0].ID, 10)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		field  string
	}{
		{"bad src", "/api/customers/alien/1", `{}`, http.StatusBadRequest, "src"},
		{"bad id", "/api/customers/company/abc", `{}`, http.StatusBadRequest, "id"},
		{"note too long", "/api/customers/company/" + id, `{"customNote":"` + strings.Repeat("あ", 2001) + `"}`, http.StatusBadRequest, "customNote"},
		{"auditor on company", "/api/customers/company/" + id, `{"personalAuditor":"x"}`, http.StatusBadRequest, "personalAuditor"},
		{"missing", "/api/customers/company/9999", `{"customNote":"x"}`, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := env.do(t, req)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.field != "" {
				fields := decode(t, w)["fields"].(map[string]any)
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, Options{})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["initialized"])
	assert.Nil(t, body["lastImport"])

	data := buildXLSX(t, []any{"商号", "関与先コード"}, []any{"A", 1})
	require.Equal(t, http.StatusOK, env.do(t, uploadRequest(t, "/api/upload", "a.xlsx", data)).Code)

	body = decode(t, env.do(t, httptest.NewRequest(http.MethodGet, "/api/status", nil)))
	assert.Equal(t, true, body["initialized"])
	assert.Equal(t, float64(1), body["companyCount"])
	last := body["lastImport"].(map[string]any)
	assert.Equal(t, "a.xlsx", last["filename"])
	assert.Equal(t, "completed", last["status"])
}

func TestExport_RoundTrip(t *testing.T) {
	env := newTestEnv(t, Options{})
	seed(t, env.store, model.Person{OfficeCode: "2", ClientCode: "20", PersonCode: "3", NameKanji: "山田"})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/export?target=people", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="people.xlsx"`)

	sheet, err := parser.ReadWorkbook(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "山田", sheet.Rows[0]["氏名"])
	assert.Equal(t, "20", sheet.Rows[0]["関与先コード"])

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/export?target=nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
