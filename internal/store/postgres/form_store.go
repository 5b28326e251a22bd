package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/jackc/pgx/v5"
)

// FormStore implements store.FormStore.
type FormStore struct {
	db DBTX
}

func NewFormStore(db DBTX) *FormStore {
	return &FormStore{db: db}
}

const formColumns = `id, nombre, campos, COALESCE(button_text, ''), created_at, updated_at`

func scanForm(row pgx.Row) (*types.FormDefinition, error) {
	var (
		form       types.FormDefinition
		campos     []byte
		buttonText string
	)
	if err := row.Scan(&form.ID, &form.Nombre, &campos, &buttonText, &form.CreatedAt, &form.UpdatedAt); err != nil {
		return nil, err
	}
	form.ButtonText = optional(buttonText)
	form.Campos = []types.FieldDescriptor{}
	if len(campos) > 0 {
		if err := json.Unmarshal(campos, &form.Campos); err != nil {
			return nil, fmt.Errorf("decode campos: %w", err)
		}
	}
	return &form, nil
}

func (s *FormStore) List(ctx context.Context) ([]*types.FormDefinition, error) {
	rows, err := s.db.Query(ctx, `SELECT `+formColumns+` FROM formularios ORDER BY nombre ASC`)
	if err != nil {
		return nil, mapError(err, "list forms")
	}
	defer rows.Close()

	forms := make([]*types.FormDefinition, 0)
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, mapError(err, "scan form")
		}
		forms = append(forms, form)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list forms")
	}
	return forms, nil
}

func (s *FormStore) Get(ctx context.Context, id string) (*types.FormDefinition, error) {
	form, err := scanForm(s.db.QueryRow(ctx, `SELECT `+formColumns+` FROM formularios WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "get form")
	}
	return form, nil
}

func encodeCampos(campos []types.FieldDescriptor) ([]byte, error) {
	if campos == nil {
		campos = []types.FieldDescriptor{}
	}
	return json.Marshal(campos)
}

func (s *FormStore) Create(ctx context.Context, form *types.FormDefinition) error {
	campos, err := encodeCampos(form.Campos)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO formularios (id, nombre, campos, button_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		form.ID, form.Nombre, campos, nullIfEmpty(form.ButtonText), form.CreatedAt, form.UpdatedAt)
	return mapError(err, "create form")
}

func (s *FormStore) Update(ctx context.Context, form *types.FormDefinition) error {
	campos, err := encodeCampos(form.Campos)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE formularios
		SET nombre = $1, campos = $2, button_text = $3, updated_at = $4
		WHERE id = $5`,
		form.Nombre, campos, nullIfEmpty(form.ButtonText), form.UpdatedAt, form.ID)
	if err != nil {
		return mapError(err, "update form")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a form. Services linked to it keep their rows and lose the
// link through ON DELETE SET NULL.
func (s *FormStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM formularios WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete form")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.FormStore = (*FormStore)(nil)
