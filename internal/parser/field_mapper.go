package parser

import (
	"customerdb/internal/model"
)

// 数値キー列が無いときの値
const defaultCode = "0"

// fieldSpec 正規フィールド 1 つ分の定義
// Aliases は優先順。先頭がエクスポート時の見出しになる
type fieldSpec[T any] struct {
	Field    string
	Aliases  []string
	Default  string
	Optional bool // 列が無ければ値を設定しない（NULL）
	set      func(*T, string)
	get      func(*T) string
}

var companyFields = []fieldSpec[model.Company]{
	{Field: "office_code", Aliases: []string{"事務所コード"}, Default: defaultCode,
		set: func(c *model.Company, v string) { c.OfficeCode = v }, get: func(c *model.Company) string { return c.OfficeCode }},
	{Field: "client_code", Aliases: []string{"関与先コード"}, Default: defaultCode,
		set: func(c *model.Company, v string) { c.ClientCode = v }, get: func(c *model.Company) string { return c.ClientCode }},
	{Field: "name_kanji", Aliases: []string{"商号", "会社名"},
		set: func(c *model.Company, v string) { c.NameKanji = v }, get: func(c *model.Company) string { return c.NameKanji }},
	{Field: "name_furigana", Aliases: []string{"商号フリガナ", "会社名フリガナ", "フリガナ"},
		set: func(c *model.Company, v string) { c.NameFurigana = v }, get: func(c *model.Company) string { return c.NameFurigana }},
	{Field: "name_alias", Aliases: []string{"略称", "通称"},
		set: func(c *model.Company, v string) { c.NameAlias = v }, get: func(c *model.Company) string { return c.NameAlias }},
	{Field: "representative", Aliases: []string{"代表者名", "代表者"},
		set: func(c *model.Company, v string) { c.Representative = v }, get: func(c *model.Company) string { return c.Representative }},
	{Field: "industry_code", Aliases: []string{"業種コード", "業種"},
		set: func(c *model.Company, v string) { c.IndustryCode = v }, get: func(c *model.Company) string { return c.IndustryCode }},
	{Field: "postal_code", Aliases: []string{"本店郵便番号", "郵便番号"},
		set: func(c *model.Company, v string) { c.PostalCode = v }, get: func(c *model.Company) string { return c.PostalCode }},
	{Field: "address1", Aliases: []string{"住所１", "本店住所１", "住所"},
		set: func(c *model.Company, v string) { c.Address1 = v }, get: func(c *model.Company) string { return c.Address1 }},
	{Field: "address2", Aliases: []string{"住所２", "本店住所２"},
		set: func(c *model.Company, v string) { c.Address2 = v }, get: func(c *model.Company) string { return c.Address2 }},
	{Field: "phone", Aliases: []string{"本店電話番号", "電話番号"},
		set: func(c *model.Company, v string) { c.Phone = v }, get: func(c *model.Company) string { return c.Phone }},
	{Field: "fax", Aliases: []string{"ＦＡＸ番号", "FAX"},
		set: func(c *model.Company, v string) { c.Fax = v }, get: func(c *model.Company) string { return c.Fax }},
	{Field: "email", Aliases: []string{"メールアドレス", "Eメール"},
		set: func(c *model.Company, v string) { c.Email = v }, get: func(c *model.Company) string { return c.Email }},
	{Field: "auditor_name", Aliases: []string{"監査担当者", "監査担当者名"},
		set: func(c *model.Company, v string) { c.AuditorName = v }, get: func(c *model.Company) string { return c.AuditorName }},
}

var personFields = []fieldSpec[model.Person]{
	{Field: "office_code", Aliases: []string{"事務所コード"}, Default: defaultCode,
		set: func(p *model.Person, v string) { p.OfficeCode = v }, get: func(p *model.Person) string { return p.OfficeCode }},
	{Field: "client_code", Aliases: []string{"関与先コード"}, Default: defaultCode,
		set: func(p *model.Person, v string) { p.ClientCode = v }, get: func(p *model.Person) string { return p.ClientCode }},
	{Field: "person_code", Aliases: []string{"個人コード"}, Default: defaultCode,
		set: func(p *model.Person, v string) { p.PersonCode = v }, get: func(p *model.Person) string { return p.PersonCode }},
	{Field: "company_id", Aliases: []string{"法人ID", "会社ID"}, Optional: true,
		set: func(p *model.Person, v string) { p.CompanyID = &v },
		get: func(p *model.Person) string {
			if p.CompanyID == nil {
				return ""
			}
			return *p.CompanyID
		}},
	{Field: "name_kanji", Aliases: []string{"氏名"},
		set: func(p *model.Person, v string) { p.NameKanji = v }, get: func(p *model.Person) string { return p.NameKanji }},
	{Field: "name_furigana", Aliases: []string{"氏名フリガナ", "フリガナ"},
		set: func(p *model.Person, v string) { p.NameFurigana = v }, get: func(p *model.Person) string { return p.NameFurigana }},
	{Field: "gender", Aliases: []string{"性別"},
		set: func(p *model.Person, v string) { p.Gender = v }, get: func(p *model.Person) string { return p.Gender }},
	{Field: "birth_date", Aliases: []string{"生年月日"},
		set: func(p *model.Person, v string) { p.BirthDate = v }, get: func(p *model.Person) string { return p.BirthDate }},
	{Field: "phone_home", Aliases: []string{"自宅電話番号", "電話番号"},
		set: func(p *model.Person, v string) { p.PhoneHome = v }, get: func(p *model.Person) string { return p.PhoneHome }},
	{Field: "phone_mobile", Aliases: []string{"携帯電話番号", "携帯番号"},
		set: func(p *model.Person, v string) { p.PhoneMobile = v }, get: func(p *model.Person) string { return p.PhoneMobile }},
	{Field: "fax", Aliases: []string{"ＦＡＸ番号", "FAX"},
		set: func(p *model.Person, v string) { p.Fax = v }, get: func(p *model.Person) string { return p.Fax }},
	{Field: "email", Aliases: []string{"メールアドレス", "Eメール"},
		set: func(p *model.Person, v string) { p.Email = v }, get: func(p *model.Person) string { return p.Email }},
	{Field: "postal_code", Aliases: []string{"自宅郵便番号", "郵便番号"},
		set: func(p *model.Person, v string) { p.PostalCode = v }, get: func(p *model.Person) string { return p.PostalCode }},
	{Field: "address1", Aliases: []string{"住所１", "自宅住所１", "住所"},
		set: func(p *model.Person, v string) { p.Address1 = v }, get: func(p *model.Person) string { return p.Address1 }},
	{Field: "address2", Aliases: []string{"住所２", "自宅住所２"},
		set: func(p *model.Person, v string) { p.Address2 = v }, get: func(p *model.Person) string { return p.Address2 }},
}

// FieldMapper 見出しの揺れを吸収して正規レコードに写像する
type FieldMapper struct {
	company []fieldSpec[model.Company]
	person  []fieldSpec[model.Person]
}

// NewFieldMapper 別名を正規化した写像器を作成する
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{
		company: normalizeSpecs(companyFields),
		person:  normalizeSpecs(personFields),
	}
}

func normalizeSpecs[T any](specs []fieldSpec[T]) []fieldSpec[T] {
	out := make([]fieldSpec[T], len(specs))
	for i, s := range specs {
		s.Aliases = normalizeAll(s.Aliases)
		out[i] = s
	}
	return out
}

// MapRow 1 行を正規レコードにする
func (m *FieldMapper) MapRow(row RawRow, kind model.EntityKind) model.Record {
	switch kind {
	case model.EntityPerson:
		var p model.Person
		apply(m.person, row, &p)
		return p
	default:
		var c model.Company
		apply(m.company, row, &c)
		return c
	}
}

// MapRows 全行を同じ種別で写像する（順序維持）
func (m *FieldMapper) MapRows(rows []RawRow, kind model.EntityKind) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, m.MapRow(row, kind))
	}
	return records
}

func apply[T any](specs []fieldSpec[T], row RawRow, dst *T) {
	for _, s := range specs {
		v, ok := lookup(row, s.Aliases)
		if !ok {
			if s.Optional {
				continue
			}
			v = s.Default
		}
		s.set(dst, v)
	}
}

// lookup 行に存在する最初の別名の値を返す
func lookup(row RawRow, aliases []string) (string, bool) {
	for _, a := range aliases {
		if v, ok := row[a]; ok {
			return v, true
		}
	}
	return "", false
}

// Fields 種別ごとの正規フィールド名（定義順）
func (m *FieldMapper) Fields(kind model.EntityKind) []string {
	if kind == model.EntityPerson {
		return fieldNames(personFields)
	}
	return fieldNames(companyFields)
}

// Headers 種別ごとの代表見出し（別名の先頭、定義順）
func (m *FieldMapper) Headers(kind model.EntityKind) []string {
	if kind == model.EntityPerson {
		return primaryHeaders(personFields)
	}
	return primaryHeaders(companyFields)
}

// Values レコードの値を Headers と同じ順で返す
func (m *FieldMapper) Values(rec model.Record) []string {
	switch r := rec.(type) {
	case model.Person:
		return values(m.person, &r)
	case model.Company:
		return values(m.company, &r)
	}
	return nil
}

func fieldNames[T any](specs []fieldSpec[T]) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Field
	}
	return out
}

func primaryHeaders[T any](specs []fieldSpec[T]) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Aliases[0]
	}
	return out
}

func values[T any](specs []fieldSpec[T], rec *T) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.get(rec)
	}
	return out
}
