package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"customerdb/internal/model"
)

const personUpsertSQL = `
INSERT INTO people (
	office_code, client_code, person_code, company_id, name_kanji, name_furigana, gender,
	birth_date, phone_home, phone_mobile, fax, email, postal_code, address1, address2
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(office_code, client_code, person_code) DO UPDATE SET
	company_id    = excluded.company_id,
	name_kanji    = excluded.name_kanji,
	name_furigana = excluded.name_furigana,
	gender        = excluded.gender,
	birth_date    = excluded.birth_date,
	phone_home    = excluded.phone_home,
	phone_mobile  = excluded.phone_mobile,
	fax           = excluded.fax,
	email         = excluded.email,
	postal_code   = excluded.postal_code,
	address1      = excluded.address1,
	address2      = excluded.address2,
	updated_at    = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
`

const personColumns = `
	id, office_code, client_code, person_code, company_id, name_kanji, name_furigana, gender,
	birth_date, phone_home, phone_mobile, fax, email, postal_code, address1, address2,
	COALESCE(json_extract(raw_json, '$.custom_note'), ''),
	COALESCE(json_extract(raw_json, '$.personal_auditor'), ''),
	created_at, updated_at
`

func (s *Store) bindPerson(p model.Person) BoundStatement {
	// 空の company_id は NULL
	var companyID interface{}
	if p.CompanyID != nil && *p.CompanyID != "" {
		companyID = *p.CompanyID
	}
	return s.Prepare(personUpsertSQL).Bind(
		p.OfficeCode, p.ClientCode, p.PersonCode, companyID, p.NameKanji, p.NameFurigana, p.Gender,
		p.BirthDate, p.PhoneHome, p.PhoneMobile, p.Fax, p.Email, p.PostalCode, p.Address1, p.Address2,
	)
}

func scanPerson(row interface{ Scan(...interface{}) error }) (*model.StoredPerson, error) {
	var (
		p         model.StoredPerson
		companyID sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.OfficeCode, &p.ClientCode, &p.PersonCode, &companyID, &p.NameKanji, &p.NameFurigana, &p.Gender,
		&p.BirthDate, &p.PhoneHome, &p.PhoneMobile, &p.Fax, &p.Email, &p.PostalCode, &p.Address1, &p.Address2,
		&p.CustomNote, &p.PersonalAuditor, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if companyID.Valid {
		p.CompanyID = &companyID.String
	}
	return &p, nil
}

// GetPerson ID で個人を取得する
func (s *Store) GetPerson(ctx context.Context, id int64) (*model.StoredPerson, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person %d: %w", id, err)
	}
	return p, nil
}

// ListPeople 全個人をキー順に返す
func (s *Store) ListPeople(ctx context.Context) ([]model.StoredPerson, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+personColumns+` FROM people ORDER BY office_code, client_code, person_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var result []model.StoredPerson
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}
