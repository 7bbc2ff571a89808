package parser

import (
	"customerdb/internal/model"
)

var (
	// 法人シートの目印（先に判定する）
	companyMarkers = []string{"商号", "代表者名", "代表者"}
	// 個人シートの目印
	personMarkers = []string{"氏名", "個人コード", "フリガナ", "氏名フリガナ"}
)

// SchemaRecognizer 見出しからシート種別（法人 / 個人）を判定する
type SchemaRecognizer struct {
	companyMarkers []string
	personMarkers  []string
}

// NewSchemaRecognizer 判定器を作成する
func NewSchemaRecognizer() *SchemaRecognizer {
	return &SchemaRecognizer{
		companyMarkers: normalizeAll(companyMarkers),
		personMarkers:  normalizeAll(personMarkers),
	}
}

// Recognize 見出し集合だけで種別を決める
// 法人マーカーを先に見るため、両方を含むシートは法人になる
func (r *SchemaRecognizer) Recognize(headers []string) (SchemaRecognition, error) {
	set := headerSet(normalizeAll(headers))

	result := SchemaRecognition{
		CompanyMarkers: ContainsAny(set, r.companyMarkers),
		PersonMarkers:  ContainsAny(set, r.personMarkers),
	}

	switch {
	case len(result.CompanyMarkers) > 0:
		result.Kind = model.EntityCompany
	case len(result.PersonMarkers) > 0:
		result.Kind = model.EntityPerson
	default:
		return result, &model.UnclassifiableSchemaError{Headers: headers}
	}
	return result, nil
}
