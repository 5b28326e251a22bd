package services

import (
	"context"
	"testing"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("cleans optional fields", func(t *testing.T) {
		st := new(MockServiceStore)
		inv := &recordingInvalidator{}
		st.On("Exists", ctx, "terapia-individual").Return(false, nil)
		st.On("Create", ctx, mock.AnythingOfType("*types.Service")).Return(nil)

		svc, err := NewCatalogService(st, nil, 0, inv).Create(ctx, types.ServiceCreate{
			ID:       "terapia-individual",
			Title:    " Terapia individual ",
			Price:    strPtr("  "),
			Features: []string{"Online", " ", " Presencial "},
			FormID:   strPtr("form-1"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Terapia individual", svc.Title)
		assert.Nil(t, svc.Price)
		assert.Equal(t, []string{"Online", "Presencial"}, svc.Features)
		assert.Equal(t, "form-1", *svc.FormID)
		assert.Equal(t, []string{"servicios:terapia-individual"}, inv.calls)
	})

	t.Run("existing id conflicts", func(t *testing.T) {
		st := new(MockServiceStore)
		st.On("Exists", ctx, "dup").Return(true, nil)
		_, err := NewCatalogService(st, nil, 0, nil).Create(ctx, types.ServiceCreate{ID: "dup", Title: "x"})
		requireAppError(t, err, apperrors.ConflictError)
		st.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := NewCatalogService(new(MockServiceStore), nil, 0, nil).Create(ctx, types.ServiceCreate{ID: "x"})
		requireAppError(t, err, apperrors.ValidationError)
	})
}

func TestCatalogService_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	st := new(MockServiceStore)
	existing := &types.Service{ID: "s1", Title: "Viejo", Price: strPtr("$100"), Features: []string{"a"}}
	st.On("Get", ctx, "s1").Return(existing, nil)
	st.On("Update", ctx, mock.AnythingOfType("*types.Service")).Return(nil)

	popular := true
	updated, err := NewCatalogService(st, nil, 0, nil).Update(ctx, "s1", types.ServiceUpdate{Popular: &popular, Price: strPtr("")})
	require.NoError(t, err)
	assert.True(t, updated.Popular)
	assert.Equal(t, "Viejo", updated.Title)
	assert.Nil(t, updated.Price)
	assert.Equal(t, []string{"a"}, updated.Features)
}

func TestCatalogService_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	st := new(MockServiceStore)
	st.On("Get", ctx, "ghost").Return(nil, store.ErrNotFound)

	_, err := NewCatalogService(st, nil, 0, nil).Update(ctx, "ghost", types.ServiceUpdate{})
	requireAppError(t, err, apperrors.NotFoundError)
}

func TestFormService_CreateValidatesFields(t *testing.T) {
	ctx := context.Background()

	t.Run("generates id and clears info required", func(t *testing.T) {
		st := new(MockFormStore)
		inv := &recordingInvalidator{}
		st.On("Create", ctx, mock.AnythingOfType("*types.FormDefinition")).Return(nil)

		form, err := NewFormService(st, nil, 0, inv).Create(ctx, types.FormDefinitionInput{
			Nombre: "Consulta",
			Campos: []types.FieldDescriptor{
				{Name: "nombre", Type: types.FieldTypeText, Required: true},
				{Name: "aviso", Type: types.FieldTypeInfo, Required: true, Value: "Las sesiones duran 50 minutos"},
			},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, form.ID)
		assert.False(t, form.Campos[1].Required)
		require.Len(t, inv.calls, 1)
	})

	tests := map[string]types.FormDefinitionInput{
		"no nombre":      {Campos: []types.FieldDescriptor{{Name: "a", Type: types.FieldTypeText}}},
		"unnamed field":  {Nombre: "f", Campos: []types.FieldDescriptor{{Type: types.FieldTypeText}}},
		"duplicate name": {Nombre: "f", Campos: []types.FieldDescriptor{{Name: "a", Type: types.FieldTypeText}, {Name: "a", Type: types.FieldTypeEmail}}},
		"unknown type":   {Nombre: "f", Campos: []types.FieldDescriptor{{Name: "a", Type: "date"}}},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			st := new(MockFormStore)
			_, err := NewFormService(st, nil, 0, nil).Create(ctx, in)
			requireAppError(t, err, apperrors.ValidationError)
			st.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}
