package movement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forestech/internal/core/apperror"
	"forestech/internal/core/id"
	"forestech/internal/core/types"
)

func strPtr(s string) *string { return &s }

func TestNewEntrada(t *testing.T) {
	m := NewEntrada("FUEL-DIESEL", strPtr("FAC-001"), types.MustMoney("100"), types.MustMoney("3.50"), "initial load")

	assert.Equal(t, TypeEntrada, m.Type)
	assert.False(t, id.IsNil(m.ID))
	require.NotNil(t, m.RemainingQuantity)
	assert.True(t, m.RemainingQuantity.Equal(types.MustMoney("100")))
	assert.True(t, m.Subtotal.Equal(types.MustMoney("350.00")))
	assert.True(t, m.RealCost.Equal(m.Subtotal))
	assert.True(t, m.RealUnitPrice.Equal(types.MustMoney("3.50")))
	assert.True(t, m.IsLot())
}

func TestNewSalida(t *testing.T) {
	m := NewSalida("FUEL-DIESEL", strPtr("VEH-042"), types.MustMoney("40"), types.MustMoney("3.50"), "")

	assert.Equal(t, TypeSalida, m.Type)
	assert.Nil(t, m.RemainingQuantity)
	assert.True(t, m.Subtotal.Equal(types.MustMoney("140.00")))
	assert.True(t, m.RealCost.IsZero())
	assert.False(t, m.IsLot())
	assert.True(t, m.Remaining().IsZero())
}

func TestMovement_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Movement)
		wantErr bool
	}{
		{
			name:   "valid entrada",
			mutate: func(m *Movement) {},
		},
		{
			name:    "missing product",
			mutate:  func(m *Movement) { m.ProductID = "" },
			wantErr: true,
		},
		{
			name:    "unknown type",
			mutate:  func(m *Movement) { m.Type = "TRANSFER" },
			wantErr: true,
		},
		{
			name:    "zero quantity",
			mutate:  func(m *Movement) { m.Quantity = types.Zero() },
			wantErr: true,
		},
		{
			name:    "negative quantity",
			mutate:  func(m *Movement) { m.Quantity = types.MustMoney("-5") },
			wantErr: true,
		},
		{
			name:    "negative price",
			mutate:  func(m *Movement) { m.UnitPrice = types.MustMoney("-1") },
			wantErr: true,
		},
		{
			name:    "entrada with vehicle",
			mutate:  func(m *Movement) { m.VehicleID = strPtr("VEH-042") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewEntrada("FUEL-DIESEL", nil, types.MustMoney("10"), types.MustMoney("3.50"), "")
			tt.mutate(m)

			err := m.Validate()
			if tt.wantErr {
				require.Error(t, err)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeValidation, appErr.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMovement_Validate_SalidaWithInvoice(t *testing.T) {
	m := NewSalida("FUEL-DIESEL", nil, types.MustMoney("10"), types.MustMoney("3.50"), "")
	m.InvoiceID = strPtr("FAC-001")

	err := m.Validate()
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestParseType(t *testing.T) {
	got, err := ParseType("ENTRADA")
	require.NoError(t, err)
	assert.Equal(t, TypeEntrada, got)

	got, err = ParseType("SALIDA")
	require.NoError(t, err)
	assert.Equal(t, TypeSalida, got)

	_, err = ParseType("entrada")
	assert.Error(t, err)

	_, err = ParseType("")
	assert.Error(t, err)
}
