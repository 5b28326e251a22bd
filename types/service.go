package types

import "time"

// Service is an offering in the catalog. Optional text fields are nil when
// unset so they serialize as null.
type Service struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Price      *string         `json:"price"`
	Duration   *string         `json:"duration"`
	Features   []string        `json:"features"`
	Popular    bool            `json:"popular"`
	Icon       *string         `json:"icon"`
	ButtonText *string         `json:"button_text"`
	Horario    *string         `json:"horario"`
	FormID     *string         `json:"form_id"`
	Formulario *FormDefinition `json:"formulario,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type ServiceCreate struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Price      *string  `json:"price"`
	Duration   *string  `json:"duration"`
	Features   []string `json:"features"`
	Popular    bool     `json:"popular"`
	Icon       *string  `json:"icon"`
	ButtonText *string  `json:"button_text"`
	Horario    *string  `json:"horario"`
	FormID     *string  `json:"form_id"`
}

// ServiceUpdate carries a partial field set; nil fields are left untouched.
type ServiceUpdate struct {
	Title      *string   `json:"title,omitempty"`
	Price      *string   `json:"price,omitempty"`
	Duration   *string   `json:"duration,omitempty"`
	Features   *[]string `json:"features,omitempty"`
	Popular    *bool     `json:"popular,omitempty"`
	Icon       *string   `json:"icon,omitempty"`
	ButtonText *string   `json:"button_text,omitempty"`
	Horario    *string   `json:"horario,omitempty"`
	FormID     *string   `json:"form_id,omitempty"`
}

// TableDiagnostic describes a sample of a table for troubleshooting.
type TableDiagnostic struct {
	Success    bool                   `json:"success"`
	RowCount   int                    `json:"row_count"`
	SampleData map[string]interface{} `json:"sample_data"`
	Structure  []string               `json:"structure"`
}
