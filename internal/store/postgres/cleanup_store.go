package postgres

import (
	"context"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/google/uuid"
)

// CleanupStore implements store.CleanupStore over limpieza_archivos.
type CleanupStore struct {
	db DBTX
}

func NewCleanupStore(db DBTX) *CleanupStore {
	return &CleanupStore{db: db}
}

// Enqueue records a failed deletion. Re-enqueueing a known URL bumps its
// attempt counter instead of adding a duplicate.
func (s *CleanupStore) Enqueue(ctx context.Context, url, lastError string) error {
	ts := now()
	_, err := s.db.Exec(ctx, `
		INSERT INTO limpieza_archivos (id, url, intentos, ultimo_error, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $4, $4)
		ON CONFLICT (url) DO UPDATE
		SET intentos = limpieza_archivos.intentos + 1,
			ultimo_error = EXCLUDED.ultimo_error,
			updated_at = EXCLUDED.updated_at`,
		uuid.NewString(), url, lastError, ts)
	return mapError(err, "enqueue cleanup")
}

func (s *CleanupStore) ListPending(ctx context.Context, maxAttempts, limit int) ([]*types.CleanupRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, url, intentos, ultimo_error, created_at, updated_at
		FROM limpieza_archivos
		WHERE intentos < $1
		ORDER BY updated_at ASC
		LIMIT $2`, maxAttempts, limit)
	if err != nil {
		return nil, mapError(err, "list cleanup")
	}
	defer rows.Close()

	records := make([]*types.CleanupRecord, 0)
	for rows.Next() {
		rec := &types.CleanupRecord{}
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.Intentos, &rec.UltimoError, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, mapError(err, "scan cleanup")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list cleanup")
	}
	return records, nil
}

func (s *CleanupStore) MarkFailed(ctx context.Context, id, lastError string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE limpieza_archivos
		SET intentos = intentos + 1, ultimo_error = $1, updated_at = $2
		WHERE id = $3`, lastError, now(), id)
	if err != nil {
		return mapError(err, "mark cleanup failed")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *CleanupStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM limpieza_archivos WHERE id = $1`, id)
	return mapError(err, "delete cleanup")
}

var _ store.CleanupStore = (*CleanupStore)(nil)
