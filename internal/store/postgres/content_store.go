package postgres

import (
	"context"
	"time"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/jackc/pgx/v5"
)

// ContentStore implements store.ContentStore.
type ContentStore struct {
	db DBTX
}

func NewContentStore(db DBTX) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, seccion, tipo, contenido, orden, created_at, updated_at`

func scanContent(row pgx.Row) (*types.ContentItem, error) {
	item := &types.ContentItem{}
	err := row.Scan(
		&item.ID,
		&item.Seccion,
		&item.Tipo,
		&item.Contenido,
		&item.Orden,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ContentStore) List(ctx context.Context, seccion string) ([]*types.ContentItem, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if seccion == "" {
		rows, err = s.db.Query(ctx, `
			SELECT `+contentColumns+`
			FROM contenido
			ORDER BY seccion ASC, orden ASC`)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT `+contentColumns+`
			FROM contenido
			WHERE seccion = $1
			ORDER BY orden ASC`, seccion)
	}
	if err != nil {
		return nil, mapError(err, "list content")
	}
	defer rows.Close()

	items := make([]*types.ContentItem, 0)
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, mapError(err, "scan content")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list content")
	}
	return items, nil
}

func (s *ContentStore) Get(ctx context.Context, id string) (*types.ContentItem, error) {
	item, err := scanContent(s.db.QueryRow(ctx, `
		SELECT `+contentColumns+`
		FROM contenido
		WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "get content")
	}
	return item, nil
}

func (s *ContentStore) Create(ctx context.Context, item *types.ContentItem) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO contenido (id, seccion, tipo, contenido, orden, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.Seccion, item.Tipo, item.Contenido, item.Orden, item.CreatedAt, item.UpdatedAt)
	return mapError(err, "create content")
}

// UpdateContenido replaces only the text of an item.
func (s *ContentStore) UpdateContenido(ctx context.Context, id, contenido string, updatedAt time.Time) (*types.ContentItem, error) {
	item, err := scanContent(s.db.QueryRow(ctx, `
		UPDATE contenido
		SET contenido = $1, updated_at = $2
		WHERE id = $3
		RETURNING `+contentColumns, contenido, updatedAt, id))
	if err != nil {
		return nil, mapError(err, "update content")
	}
	return item, nil
}

// Delete is unconditional; deleting a missing id is not an error.
func (s *ContentStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM contenido WHERE id = $1`, id)
	return mapError(err, "delete content")
}

func (s *ContentStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM contenido`).Scan(&n); err != nil {
		return 0, mapError(err, "count content")
	}
	return n, nil
}

func (s *ContentStore) SeedIfEmpty(ctx context.Context, items []*types.ContentItem) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, mapError(err, "begin seed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serialize concurrent seeders so two instances starting together do not
	// both see an empty table.
	if _, err := tx.Exec(ctx, `LOCK TABLE contenido IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return false, mapError(err, "lock content")
	}

	var n int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM contenido`).Scan(&n); err != nil {
		return false, mapError(err, "count content")
	}
	if n > 0 {
		return false, nil
	}

	for _, item := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO contenido (id, seccion, tipo, contenido, orden, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.Seccion, item.Tipo, item.Contenido, item.Orden, item.CreatedAt, item.UpdatedAt); err != nil {
			return false, mapError(err, "seed content")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, mapError(err, "commit seed")
	}
	return true, nil
}

var _ store.ContentStore = (*ContentStore)(nil)
