package types

import "time"

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	// FieldTypeInfo renders read-only text and never collects an answer.
	FieldTypeInfo FieldType = "info"
)

func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypeTel, FieldTypeTextarea, FieldTypeSelect, FieldTypeInfo:
		return true
	}
	return false
}

// FieldDescriptor describes one input of an intake form.
type FieldDescriptor struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	Value       string    `json:"value,omitempty"`
}

// FormDefinition is an ordered list of fields rendered for a service.
type FormDefinition struct {
	ID         string            `json:"id"`
	Nombre     string            `json:"nombre"`
	Campos     []FieldDescriptor `json:"campos"`
	ButtonText *string           `json:"button_text"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type FormDefinitionInput struct {
	ID         string            `json:"id"`
	Nombre     string            `json:"nombre"`
	Campos     []FieldDescriptor `json:"campos"`
	ButtonText *string           `json:"button_text"`
}
