package postgres

import (
	"context"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
)

// OperatorStore implements store.OperatorStore.
type OperatorStore struct {
	db DBTX
}

func NewOperatorStore(db DBTX) *OperatorStore {
	return &OperatorStore{db: db}
}

func (s *OperatorStore) List(ctx context.Context) ([]*types.Operator, error) {
	rows, err := s.db.Query(ctx, `SELECT username, password_hash, created_at FROM operadores ORDER BY username ASC`)
	if err != nil {
		return nil, mapError(err, "list operators")
	}
	defer rows.Close()

	ops := make([]*types.Operator, 0)
	for rows.Next() {
		op := &types.Operator{}
		if err := rows.Scan(&op.Username, &op.PasswordHash, &op.CreatedAt); err != nil {
			return nil, mapError(err, "scan operator")
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list operators")
	}
	return ops, nil
}

func (s *OperatorStore) Get(ctx context.Context, username string) (*types.Operator, error) {
	op := &types.Operator{}
	err := s.db.QueryRow(ctx, `
		SELECT username, password_hash, created_at
		FROM operadores
		WHERE username = $1`, username).Scan(&op.Username, &op.PasswordHash, &op.CreatedAt)
	if err != nil {
		return nil, mapError(err, "get operator")
	}
	return op, nil
}

func (s *OperatorStore) Create(ctx context.Context, op *types.Operator) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO operadores (username, password_hash, created_at)
		VALUES ($1, $2, $3)`, op.Username, op.PasswordHash, op.CreatedAt)
	return mapError(err, "create operator")
}

func (s *OperatorStore) Delete(ctx context.Context, username string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM operadores WHERE username = $1`, username)
	if err != nil {
		return mapError(err, "delete operator")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.OperatorStore = (*OperatorStore)(nil)
