package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"customerdb/internal/model"
)

const companyUpsertSQL = `
INSERT INTO companies (
	office_code, client_code, name_kanji, name_furigana, name_alias, representative,
	industry_code, postal_code, address1, address2, phone, fax, email, auditor_name
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(office_code, client_code) DO UPDATE SET
	name_kanji     = excluded.name_kanji,
	name_furigana  = excluded.name_furigana,
	name_alias     = excluded.name_alias,
	representative = excluded.representative,
	industry_code  = excluded.industry_code,
	postal_code    = excluded.postal_code,
	address1       = excluded.address1,
	address2       = excluded.address2,
	phone          = excluded.phone,
	fax            = excluded.fax,
	email          = excluded.email,
	auditor_name   = excluded.auditor_name,
	updated_at     = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
`

const companyColumns = `
	id, office_code, client_code, name_kanji, name_furigana, name_alias, representative,
	industry_code, postal_code, address1, address2, phone, fax, email, auditor_name,
	COALESCE(json_extract(raw_json, '$.custom_note'), ''), created_at, updated_at
`

func (s *Store) bindCompany(c model.Company) BoundStatement {
	return s.Prepare(companyUpsertSQL).Bind(
		c.OfficeCode, c.ClientCode, c.NameKanji, c.NameFurigana, c.NameAlias, c.Representative,
		c.IndustryCode, c.PostalCode, c.Address1, c.Address2, c.Phone, c.Fax, c.Email, c.AuditorName,
	)
}

func scanCompany(row interface{ Scan(...interface{}) error }) (*model.StoredCompany, error) {
	var c model.StoredCompany
	err := row.Scan(
		&c.ID, &c.OfficeCode, &c.ClientCode, &c.NameKanji, &c.NameFurigana, &c.NameAlias, &c.Representative,
		&c.IndustryCode, &c.PostalCode, &c.Address1, &c.Address2, &c.Phone, &c.Fax, &c.Email, &c.AuditorName,
		&c.CustomNote, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCompany ID で法人を取得する
func (s *Store) GetCompany(ctx context.Context, id int64) (*model.StoredCompany, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %d: %w", id, err)
	}
	return c, nil
}

// ListCompanies 全法人をキー順に返す
func (s *Store) ListCompanies(ctx context.Context) ([]model.StoredCompany, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY office_code, client_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var result []model.StoredCompany
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}
