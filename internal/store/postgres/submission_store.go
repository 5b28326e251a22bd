package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/jackc/pgx/v5"
)

// SubmissionStore implements store.SubmissionStore over respuestas_formularios.
type SubmissionStore struct {
	db DBTX
}

func NewSubmissionStore(db DBTX) *SubmissionStore {
	return &SubmissionStore{db: db}
}

const submissionSelect = `
	SELECT r.id, COALESCE(r.servicio_id, ''), COALESCE(r.formulario_id, ''), r.respuestas, r.created_at,
		COALESCE(s.id, ''), COALESCE(s.title, ''), COALESCE(s.icon, ''), COALESCE(f.nombre, '')
	FROM respuestas_formularios r
	LEFT JOIN servicios s ON s.id = r.servicio_id
	LEFT JOIN formularios f ON f.id = r.formulario_id`

// decodeAnswers reads a respuestas document. Older rows may hold non-string
// values; those are rendered with their JSON text.
func decodeAnswers(raw []byte) (map[string]string, error) {
	answers := make(map[string]string)
	if len(raw) == 0 {
		return answers, nil
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode respuestas: %w", err)
	}
	for k, v := range generic {
		switch val := v.(type) {
		case string:
			answers[k] = val
		case nil:
			answers[k] = ""
		default:
			b, _ := json.Marshal(val)
			answers[k] = string(b)
		}
	}
	return answers, nil
}

func scanSubmission(row pgx.Row) (*types.FormSubmission, error) {
	var (
		sub                           types.FormSubmission
		raw                           []byte
		svcID, svcTitle, svcIcon, fNm string
	)
	err := row.Scan(&sub.ID, &sub.ServicioID, &sub.FormularioID, &raw, &sub.CreatedAt,
		&svcID, &svcTitle, &svcIcon, &fNm)
	if err != nil {
		return nil, err
	}
	if sub.Respuestas, err = decodeAnswers(raw); err != nil {
		return nil, err
	}
	if svcID != "" {
		sub.Servicio = &types.SubmissionService{ID: svcID, Title: svcTitle, Icon: optional(svcIcon)}
	}
	if fNm != "" {
		sub.Formulario = &types.SubmissionForm{Nombre: fNm}
	}
	return &sub, nil
}

func collectSubmissions(rows pgx.Rows) ([]*types.FormSubmission, error) {
	defer rows.Close()
	subs := make([]*types.FormSubmission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SubmissionStore) Create(ctx context.Context, sub *types.FormSubmission) error {
	answers, err := json.Marshal(sub.Respuestas)
	if err != nil {
		return fmt.Errorf("encode respuestas: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO respuestas_formularios (id, servicio_id, formulario_id, respuestas, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		sub.ID, sub.ServicioID, sub.FormularioID, answers, sub.CreatedAt)
	return mapError(err, "create submission")
}

func (s *SubmissionStore) List(ctx context.Context, servicioID string, since time.Time) ([]*types.FormSubmission, error) {
	var sinceArg *time.Time
	if !since.IsZero() {
		sinceArg = &since
	}
	rows, err := s.db.Query(ctx, submissionSelect+`
		WHERE ($1 = '' OR r.servicio_id = $1)
			AND ($2::timestamptz IS NULL OR r.created_at >= $2)
		ORDER BY r.created_at DESC`, servicioID, sinceArg)
	if err != nil {
		return nil, mapError(err, "list submissions")
	}
	subs, err := collectSubmissions(rows)
	if err != nil {
		return nil, mapError(err, "list submissions")
	}
	return subs, nil
}

func (s *SubmissionStore) Recent(ctx context.Context, limit int) ([]*types.FormSubmission, error) {
	rows, err := s.db.Query(ctx, submissionSelect+`
		ORDER BY r.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, mapError(err, "recent submissions")
	}
	subs, err := collectSubmissions(rows)
	if err != nil {
		return nil, mapError(err, "recent submissions")
	}
	return subs, nil
}

func (s *SubmissionStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM respuestas_formularios WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete submission")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SubmissionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM respuestas_formularios`).Scan(&n); err != nil {
		return 0, mapError(err, "count submissions")
	}
	return n, nil
}

var _ store.SubmissionStore = (*SubmissionStore)(nil)
