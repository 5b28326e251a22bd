package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/jackc/pgx/v5"
)

// ServiceStore implements store.ServiceStore. Reads left-join the linked form.
type ServiceStore struct {
	db DBTX
}

func NewServiceStore(db DBTX) *ServiceStore {
	return &ServiceStore{db: db}
}

const serviceSelect = `
	SELECT s.id, s.title, COALESCE(s.price, ''), COALESCE(s.duration, ''), s.features,
		s.popular, COALESCE(s.icon, ''), COALESCE(s.button_text, ''), COALESCE(s.horario, ''),
		COALESCE(s.form_id, ''), s.created_at, s.updated_at,
		COALESCE(f.id, ''), COALESCE(f.nombre, ''), COALESCE(f.campos, '[]'::jsonb),
		COALESCE(f.button_text, ''), COALESCE(f.created_at, to_timestamp(0)), COALESCE(f.updated_at, to_timestamp(0))
	FROM servicios s
	LEFT JOIN formularios f ON f.id = s.form_id`

func scanService(row pgx.Row) (*types.Service, error) {
	var (
		svc                               types.Service
		form                              types.FormDefinition
		price, duration, icon, buttonText string
		horario, formID, formButtonText   string
		features, campos                  []byte
	)
	err := row.Scan(
		&svc.ID, &svc.Title, &price, &duration, &features,
		&svc.Popular, &icon, &buttonText, &horario,
		&formID, &svc.CreatedAt, &svc.UpdatedAt,
		&form.ID, &form.Nombre, &campos,
		&formButtonText, &form.CreatedAt, &form.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	svc.Price = optional(price)
	svc.Duration = optional(duration)
	svc.Icon = optional(icon)
	svc.ButtonText = optional(buttonText)
	svc.Horario = optional(horario)
	svc.FormID = optional(formID)

	svc.Features = []string{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &svc.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
	}

	if form.ID != "" {
		form.ButtonText = optional(formButtonText)
		if err := json.Unmarshal(campos, &form.Campos); err != nil {
			return nil, fmt.Errorf("decode campos: %w", err)
		}
		svc.Formulario = &form
	}
	return &svc, nil
}

func (s *ServiceStore) List(ctx context.Context) ([]*types.Service, error) {
	rows, err := s.db.Query(ctx, serviceSelect+`
		ORDER BY s.popular DESC, s.title ASC`)
	if err != nil {
		return nil, mapError(err, "list services")
	}
	defer rows.Close()

	services := make([]*types.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, mapError(err, "scan service")
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list services")
	}
	return services, nil
}

func (s *ServiceStore) Get(ctx context.Context, id string) (*types.Service, error) {
	svc, err := scanService(s.db.QueryRow(ctx, serviceSelect+`
		WHERE s.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "get service")
	}
	return svc, nil
}

func (s *ServiceStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM servicios WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, mapError(err, "check service")
	}
	return exists, nil
}

func encodeFeatures(features []string) ([]byte, error) {
	if features == nil {
		features = []string{}
	}
	return json.Marshal(features)
}

func (s *ServiceStore) Create(ctx context.Context, svc *types.Service) error {
	features, err := encodeFeatures(svc.Features)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO servicios (id, title, price, duration, features, popular, icon,
			button_text, horario, form_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		svc.ID, svc.Title, nullIfEmpty(svc.Price), nullIfEmpty(svc.Duration), features, svc.Popular,
		nullIfEmpty(svc.Icon), nullIfEmpty(svc.ButtonText), nullIfEmpty(svc.Horario), nullIfEmpty(svc.FormID),
		svc.CreatedAt, svc.UpdatedAt)
	return mapError(err, "create service")
}

// Update writes every mutable column of svc.
func (s *ServiceStore) Update(ctx context.Context, svc *types.Service) error {
	features, err := encodeFeatures(svc.Features)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE servicios
		SET title = $1, price = $2, duration = $3, features = $4, popular = $5, icon = $6,
			button_text = $7, horario = $8, form_id = $9, updated_at = $10
		WHERE id = $11`,
		svc.Title, nullIfEmpty(svc.Price), nullIfEmpty(svc.Duration), features, svc.Popular,
		nullIfEmpty(svc.Icon), nullIfEmpty(svc.ButtonText), nullIfEmpty(svc.Horario), nullIfEmpty(svc.FormID),
		svc.UpdatedAt, svc.ID)
	if err != nil {
		return mapError(err, "update service")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ServiceStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM servicios WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete service")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ServiceStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM servicios`).Scan(&n); err != nil {
		return 0, mapError(err, "count services")
	}
	return n, nil
}

// Diagnose samples one row and reports its column names.
func (s *ServiceStore) Diagnose(ctx context.Context) (*types.TableDiagnostic, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `SELECT * FROM servicios LIMIT 1`)
	if err != nil {
		return nil, mapError(err, "sample services")
	}
	defer rows.Close()

	diag := &types.TableDiagnostic{Success: true, RowCount: count, Structure: []string{}}
	fields := rows.FieldDescriptions()
	for _, fd := range fields {
		diag.Structure = append(diag.Structure, fd.Name)
	}

	if rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, mapError(err, "sample services")
		}
		diag.SampleData = make(map[string]interface{}, len(values))
		for i, v := range values {
			if i < len(fields) {
				diag.SampleData[fields[i].Name] = v
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "sample services")
	}
	return diag, nil
}

var _ store.ServiceStore = (*ServiceStore)(nil)
