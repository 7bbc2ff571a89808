package model

// CustomerSummary 顧客一覧の 1 行（法人・個人を混在させる）
type CustomerSummary struct {
	Src        EntityKind `json:"src"`
	ID         int64      `json:"id"`
	ClientCode string     `json:"clientCode"`
	PersonCode *string    `json:"personCode"`
	Name       string     `json:"name"`
	Phone      *string    `json:"phone"`
	Auditor    *string    `json:"auditor"`
}

// StoredCompany companies テーブルの 1 行
type StoredCompany struct {
	ID int64 `json:"id"`
	Company
	CustomNote string `json:"customNote"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// StoredPerson people テーブルの 1 行
type StoredPerson struct {
	ID int64 `json:"id"`
	Person
	CustomNote      string `json:"customNote"`
	PersonalAuditor string `json:"personalAuditor"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// NotePatch 詳細画面からのメモ更新
type NotePatch struct {
	CustomNote      *string `json:"customNote" validate:"omitempty,max=2000"`
	PersonalAuditor *string `json:"personalAuditor" validate:"omitempty,max=100"`
}
