package postgres

import (
	"context"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/jackc/pgx/v5"
)

// ResourceStore implements store.ResourceStore over recursos and items_recursos.
type ResourceStore struct {
	db DBTX
}

func NewResourceStore(db DBTX) *ResourceStore {
	return &ResourceStore{db: db}
}

const (
	resourceColumns = `id, title, COALESCE(description, ''), COALESCE(icon, ''), COALESCE(color, ''), orden, created_at, updated_at`
	itemColumns     = `id, recurso_id, name, COALESCE(description, ''), link, type, orden, created_at, updated_at`
)

func scanResource(row pgx.Row) (*types.Resource, error) {
	var (
		r                        types.Resource
		description, icon, color string
	)
	if err := row.Scan(&r.ID, &r.Title, &description, &icon, &color, &r.Orden, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Description = optional(description)
	r.Icon = optional(icon)
	r.Color = optional(color)
	r.Items = []types.ResourceItem{}
	return &r, nil
}

func scanItem(row pgx.Row) (*types.ResourceItem, error) {
	var (
		item        types.ResourceItem
		description string
	)
	err := row.Scan(&item.ID, &item.RecursoID, &item.Name, &description, &item.Link,
		&item.Type, &item.Orden, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = optional(description)
	return &item, nil
}

func collectItems(rows pgx.Rows) ([]types.ResourceItem, error) {
	defer rows.Close()
	items := make([]types.ResourceItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListWithItems returns resources by orden, each with its items by orden.
func (s *ResourceStore) ListWithItems(ctx context.Context) ([]*types.Resource, error) {
	rows, err := s.db.Query(ctx, `SELECT `+resourceColumns+` FROM recursos ORDER BY orden ASC, id ASC`)
	if err != nil {
		return nil, mapError(err, "list resources")
	}

	resources := make([]*types.Resource, 0)
	byID := make(map[string]*types.Resource)
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			rows.Close()
			return nil, mapError(err, "scan resource")
		}
		resources = append(resources, r)
		byID[r.ID] = r
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list resources")
	}
	if len(resources) == 0 {
		return resources, nil
	}

	itemRows, err := s.db.Query(ctx, `SELECT `+itemColumns+` FROM items_recursos ORDER BY orden ASC, created_at ASC`)
	if err != nil {
		return nil, mapError(err, "list resource items")
	}
	items, err := collectItems(itemRows)
	if err != nil {
		return nil, mapError(err, "list resource items")
	}
	for _, item := range items {
		if r, ok := byID[item.RecursoID]; ok {
			r.Items = append(r.Items, item)
		}
	}
	return resources, nil
}

func (s *ResourceStore) Get(ctx context.Context, id string) (*types.Resource, error) {
	r, err := scanResource(s.db.QueryRow(ctx, `SELECT `+resourceColumns+` FROM recursos WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "get resource")
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items_recursos
		WHERE recurso_id = $1
		ORDER BY orden ASC, created_at ASC`, id)
	if err != nil {
		return nil, mapError(err, "list resource items")
	}
	if r.Items, err = collectItems(rows); err != nil {
		return nil, mapError(err, "list resource items")
	}
	return r, nil
}

func (s *ResourceStore) Create(ctx context.Context, r *types.Resource) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO recursos (id, title, description, icon, color, orden, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.Title, nullIfEmpty(r.Description), nullIfEmpty(r.Icon), nullIfEmpty(r.Color),
		r.Orden, r.CreatedAt, r.UpdatedAt)
	return mapError(err, "create resource")
}

func (s *ResourceStore) Update(ctx context.Context, r *types.Resource) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE recursos
		SET title = $1, description = $2, icon = $3, color = $4, orden = $5, updated_at = $6
		WHERE id = $7`,
		r.Title, nullIfEmpty(r.Description), nullIfEmpty(r.Icon), nullIfEmpty(r.Color),
		r.Orden, r.UpdatedAt, r.ID)
	if err != nil {
		return mapError(err, "update resource")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes the resource row in a transaction, returning the items the
// cascade removed with it.
func (s *ResourceStore) Delete(ctx context.Context, id string) ([]types.ResourceItem, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, mapError(err, "begin delete resource")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items_recursos
		WHERE recurso_id = $1
		FOR UPDATE`, id)
	if err != nil {
		return nil, mapError(err, "lock resource items")
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, mapError(err, "lock resource items")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM recursos WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "delete resource")
	}
	if tag.RowsAffected() == 0 {
		return nil, store.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapError(err, "commit delete resource")
	}
	return items, nil
}

func (s *ResourceStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM recursos`).Scan(&n); err != nil {
		return 0, mapError(err, "count resources")
	}
	return n, nil
}

func (s *ResourceStore) GetItem(ctx context.Context, id string) (*types.ResourceItem, error) {
	item, err := scanItem(s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items_recursos WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "get resource item")
	}
	return item, nil
}

func (s *ResourceStore) CreateItem(ctx context.Context, item *types.ResourceItem) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO items_recursos (id, recurso_id, name, description, link, type, orden, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.RecursoID, item.Name, nullIfEmpty(item.Description), item.Link,
		item.Type, item.Orden, item.CreatedAt, item.UpdatedAt)
	return mapError(err, "create resource item")
}

func (s *ResourceStore) UpdateItem(ctx context.Context, item *types.ResourceItem) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE items_recursos
		SET name = $1, description = $2, link = $3, type = $4, orden = $5, updated_at = $6
		WHERE id = $7`,
		item.Name, nullIfEmpty(item.Description), item.Link, item.Type, item.Orden, item.UpdatedAt, item.ID)
	if err != nil {
		return mapError(err, "update resource item")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ResourceStore) DeleteItem(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM items_recursos WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "delete resource item")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ResourceStore) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM items_recursos`).Scan(&n); err != nil {
		return 0, mapError(err, "count resource items")
	}
	return n, nil
}

var _ store.ResourceStore = (*ResourceStore)(nil)
