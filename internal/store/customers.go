package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"customerdb/internal/model"
)

// SearchLimit 検索結果の上限
const SearchLimit = 100

// BindUpsert レコードを種別に応じた UPSERT 文に束縛する
func (s *Store) BindUpsert(rec model.Record) (BoundStatement, error) {
	switch r := rec.(type) {
	case model.Company:
		return s.bindCompany(r), nil
	case *model.Company:
		return s.bindCompany(*r), nil
	case model.Person:
		return s.bindPerson(r), nil
	case *model.Person:
		return s.bindPerson(*r), nil
	default:
		return BoundStatement{}, fmt.Errorf("unsupported record type %T", rec)
	}
}

// UpdateNotes raw_json のメモ欄を更新する
// 法人には personal_auditor を持たせない
func (s *Store) UpdateNotes(ctx context.Context, kind model.EntityKind, id int64, patch model.NotePatch) error {
	paths := make([]string, 0, 2)
	args := make([]interface{}, 0, 5)
	if patch.CustomNote != nil {
		paths = append(paths, "'$.custom_note', ?")
		args = append(args, *patch.CustomNote)
	}
	if kind == model.EntityPerson && patch.PersonalAuditor != nil {
		paths = append(paths, "'$.personal_auditor', ?")
		args = append(args, *patch.PersonalAuditor)
	}

	table := kind.Table()
	var query string
	if len(paths) == 0 {
		query = fmt.Sprintf(`UPDATE %s SET updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now') WHERE id = ?`, table)
	} else {
		query = fmt.Sprintf(`UPDATE %s SET
			raw_json = json_set(COALESCE(raw_json, '{}'), %s),
			updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now')
			WHERE id = ?`, table, strings.Join(paths, ", "))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update notes of %s %d: %w", kind, id, err)
	}
	return expectAffected(res)
}

// Delete 1 件削除する
func (s *Store) Delete(ctx context.Context, kind model.EntityKind, id int64) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, kind.Table()), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", kind, id, err)
	}
	return expectAffected(res)
}

// Count 種別ごとの件数
func (s *Store) Count(ctx context.Context, kind model.EntityKind) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, kind.Table())).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind.Table(), err)
	}
	return n, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const searchSQL = `
SELECT 'company', id, client_code, NULL, name_kanji, NULLIF(phone, ''), NULLIF(auditor_name, '')
FROM companies
WHERE name_kanji LIKE ?1 ESCAPE '\' OR name_furigana LIKE ?1 ESCAPE '\'
   OR name_alias LIKE ?1 ESCAPE '\' OR phone LIKE ?1 ESCAPE '\'
   OR CAST(client_code AS TEXT) LIKE ?1 ESCAPE '\'
UNION ALL
SELECT 'person', id, client_code, person_code, name_kanji,
       COALESCE(NULLIF(phone_home, ''), NULLIF(phone_mobile, '')),
       NULLIF(json_extract(raw_json, '$.personal_auditor'), '')
FROM people
WHERE name_kanji LIKE ?1 ESCAPE '\' OR name_furigana LIKE ?1 ESCAPE '\'
   OR phone_home LIKE ?1 ESCAPE '\' OR phone_mobile LIKE ?1 ESCAPE '\'
   OR CAST(client_code AS TEXT) LIKE ?1 ESCAPE '\' OR CAST(person_code AS TEXT) LIKE ?1 ESCAPE '\'
ORDER BY 3, 1, 2
LIMIT ?2
`

const listCompaniesSQL = `
SELECT 'company', id, client_code, NULL, name_kanji, NULLIF(phone, ''), NULLIF(auditor_name, '')
FROM companies
ORDER BY client_code, id
LIMIT ?
`

// Search 法人・個人をまとめて検索する
// q が空なら法人を関与先コード順に返す
func (s *Store) Search(ctx context.Context, q string) ([]model.CustomerSummary, error) {
	q = strings.TrimSpace(q)

	var (
		rows *sql.Rows
		err  error
	)
	if q == "" {
		rows, err = s.db.QueryContext(ctx, listCompaniesSQL, SearchLimit)
	} else {
		rows, err = s.db.QueryContext(ctx, searchSQL, "%"+escapeLike(q)+"%", SearchLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	defer rows.Close()

	result := make([]model.CustomerSummary, 0)
	for rows.Next() {
		var (
			c          model.CustomerSummary
			src        string
			personCode sql.NullString
			phone      sql.NullString
			auditor    sql.NullString
		)
		if err := rows.Scan(&src, &c.ID, &c.ClientCode, &personCode, &c.Name, &phone, &auditor); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		c.Src = model.EntityKind(src)
		c.PersonCode = nullable(personCode)
		c.Phone = nullable(phone)
		c.Auditor = nullable(auditor)
		result = append(result, c)
	}
	return result, rows.Err()
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// escapeLike LIKE のワイルドカードを無効化する
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
