package model

import "fmt"

// EntityKind 取込対象の種別（法人 / 個人）
type EntityKind string

const (
	EntityCompany EntityKind = "company"
	EntityPerson  EntityKind = "person"
)

// Table 対象テーブル名
func (k EntityKind) Table() string {
	switch k {
	case EntityCompany:
		return "companies"
	case EntityPerson:
		return "people"
	}
	return ""
}

// ParseEntityKind "company" / "person" を EntityKind に変換する
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case EntityCompany, EntityPerson:
		return EntityKind(s), nil
	}
	return "", fmt.Errorf("unknown entity kind: %q", s)
}

// NaturalKey 自然キー（事務所コード + 関与先コード [+ 個人コード]）
type NaturalKey struct {
	OfficeCode string `json:"officeCode"`
	ClientCode string `json:"clientCode"`
	PersonCode string `json:"personCode,omitempty"`
}

func (k NaturalKey) String() string {
	if k.PersonCode == "" {
		return k.OfficeCode + "/" + k.ClientCode
	}
	return k.OfficeCode + "/" + k.ClientCode + "/" + k.PersonCode
}

// Record 正規化済みレコード（Company または Person）
type Record interface {
	Kind() EntityKind
	NaturalKey() NaturalKey
}

// Company 法人レコード
type Company struct {
	OfficeCode     string `json:"officeCode"`
	ClientCode     string `json:"clientCode"`
	NameKanji      string `json:"nameKanji"`
	NameFurigana   string `json:"nameFurigana"`
	NameAlias      string `json:"nameAlias"`
	Representative string `json:"representative"`
	IndustryCode   string `json:"industryCode"`
	PostalCode     string `json:"postalCode"`
	Address1       string `json:"address1"`
	Address2       string `json:"address2"`
	Phone          string `json:"phone"`
	Fax            string `json:"fax"`
	Email          string `json:"email"`
	AuditorName    string `json:"auditorName"`
}

func (c Company) Kind() EntityKind { return EntityCompany }

func (c Company) NaturalKey() NaturalKey {
	return NaturalKey{OfficeCode: c.OfficeCode, ClientCode: c.ClientCode}
}

// Person 個人レコード
type Person struct {
	OfficeCode   string  `json:"officeCode"`
	ClientCode   string  `json:"clientCode"`
	PersonCode   string  `json:"personCode"`
	CompanyID    *string `json:"companyId,omitempty"` // 任意。列が無ければ NULL
	NameKanji    string  `json:"nameKanji"`
	NameFurigana string  `json:"nameFurigana"`
	Gender       string  `json:"gender"`
	BirthDate    string  `json:"birthDate"`
	PhoneHome    string  `json:"phoneHome"`
	PhoneMobile  string  `json:"phoneMobile"`
	Fax          string  `json:"fax"`
	Email        string  `json:"email"`
	PostalCode   string  `json:"postalCode"`
	Address1     string  `json:"address1"`
	Address2     string  `json:"address2"`
}

func (p Person) Kind() EntityKind { return EntityPerson }

func (p Person) NaturalKey() NaturalKey {
	return NaturalKey{OfficeCode: p.OfficeCode, ClientCode: p.ClientCode, PersonCode: p.PersonCode}
}
