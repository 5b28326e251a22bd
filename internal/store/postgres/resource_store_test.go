package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	resourceCols = []string{"id", "title", "description", "icon", "color", "orden", "created_at", "updated_at"}
	itemCols     = []string{"id", "recurso_id", "name", "description", "link", "type", "orden", "created_at", "updated_at"}
)

func TestResourceStore_ListWithItemsGroupsAndOrders(t *testing.T) {
	mock := newMockPool(t)
	s := NewResourceStore(mock)
	ts := time.Now()

	mock.ExpectQuery(`FROM recursos ORDER BY orden ASC`).
		WillReturnRows(pgxmock.NewRows(resourceCols).
			AddRow("guias", "Guías", "Material de lectura", "book", "blue", 1, ts, ts).
			AddRow("audios", "Audios", "", "", "", 2, ts, ts))
	mock.ExpectQuery(`FROM items_recursos ORDER BY orden ASC`).
		WillReturnRows(pgxmock.NewRows(itemCols).
			AddRow("i1", "guias", "Ansiedad", "", "https://x/pdfs/a.pdf", types.ItemTypePDF, 1, ts, ts).
			AddRow("i2", "guias", "Sueño", "", "https://x/pdfs/b.pdf", types.ItemTypePDF, 2, ts, ts).
			AddRow("i3", "audios", "Respiración", "", "https://youtu.be/x", types.ItemTypeURL, 1, ts, ts))

	resources, err := s.ListWithItems(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 2)

	assert.Equal(t, "guias", resources[0].ID)
	require.Len(t, resources[0].Items, 2)
	assert.Equal(t, "Ansiedad", resources[0].Items[0].Name)
	assert.Equal(t, "Sueño", resources[0].Items[1].Name)
	require.Len(t, resources[1].Items, 1)
	assert.Nil(t, resources[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceStore_ListWithItemsEmpty(t *testing.T) {
	mock := newMockPool(t)
	s := NewResourceStore(mock)

	mock.ExpectQuery(`FROM recursos`).WillReturnRows(pgxmock.NewRows(resourceCols))

	resources, err := s.ListWithItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, resources)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceStore_DeleteReturnsCascadedItems(t *testing.T) {
	ts := time.Now()

	t.Run("success", func(t *testing.T) {
		mock := newMockPool(t)
		s := NewResourceStore(mock)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM items_recursos\s+WHERE recurso_id = \$1\s+FOR UPDATE`).
			WithArgs("guias").
			WillReturnRows(pgxmock.NewRows(itemCols).
				AddRow("i1", "guias", "Ansiedad", "", "https://x/pdfs/a.pdf", types.ItemTypePDF, 1, ts, ts))
		mock.ExpectExec(`DELETE FROM recursos WHERE id = \$1`).
			WithArgs("guias").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		items, err := s.Delete(context.Background(), "guias")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "https://x/pdfs/a.pdf", items[0].Link)
	})

	t.Run("missing resource", func(t *testing.T) {
		mock := newMockPool(t)
		s := NewResourceStore(mock)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM items_recursos`).WithArgs("nope").WillReturnRows(pgxmock.NewRows(itemCols))
		mock.ExpectExec(`DELETE FROM recursos`).WithArgs("nope").WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectRollback()

		_, err := s.Delete(context.Background(), "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete failure", func(t *testing.T) {
		mock := newMockPool(t)
		s := NewResourceStore(mock)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM items_recursos`).WithArgs("guias").WillReturnRows(pgxmock.NewRows(itemCols))
		mock.ExpectExec(`DELETE FROM recursos`).WithArgs("guias").WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := s.Delete(context.Background(), "guias")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestResourceStore_DeleteItemMissing(t *testing.T) {
	mock := newMockPool(t)
	s := NewResourceStore(mock)

	mock.ExpectExec(`DELETE FROM items_recursos WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, s.DeleteItem(context.Background(), "ghost"), store.ErrNotFound)
}
