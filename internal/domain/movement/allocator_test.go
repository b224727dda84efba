package movement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forestech/internal/core/apperror"
	"forestech/internal/core/types"
)

func lot(t *testing.T, remaining, price string, createdAt time.Time) Movement {
	t.Helper()
	rem := types.MustMoney(remaining)
	m := *NewEntrada("FUEL-DIESEL", nil, rem, types.MustMoney(price), "")
	m.CreatedAt = createdAt
	m.RemainingQuantity = &rem
	return m
}

func TestAllocateLots_OldestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lots := []Movement{
		lot(t, "5", "10.00", base),
		lot(t, "5", "12.00", base.Add(time.Hour)),
		lot(t, "5", "14.00", base.Add(2*time.Hour)),
	}

	plan, err := AllocateLots("FUEL-DIESEL", lots, types.MustMoney("7"))
	require.NoError(t, err)

	require.Len(t, plan.Draws, 2)
	assert.Equal(t, lots[0].ID, plan.Draws[0].LotID)
	assert.True(t, plan.Draws[0].Quantity.Equal(types.MustMoney("5")))
	assert.Equal(t, lots[1].ID, plan.Draws[1].LotID)
	assert.True(t, plan.Draws[1].Quantity.Equal(types.MustMoney("2")))

	// 5*10.00 + 2*12.00
	assert.True(t, plan.RealCost.Equal(types.MustMoney("74.00")), "real cost = %s", plan.RealCost)
}

func TestAllocateLots_ExactFit(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lots := []Movement{
		lot(t, "3", "10.00", base),
		lot(t, "4", "11.00", base.Add(time.Hour)),
	}

	plan, err := AllocateLots("FUEL-DIESEL", lots, types.MustMoney("7"))
	require.NoError(t, err)

	require.Len(t, plan.Draws, 2)
	assert.True(t, plan.Draws[0].Quantity.Equal(types.MustMoney("3")))
	assert.True(t, plan.Draws[1].Quantity.Equal(types.MustMoney("4")))
}

func TestAllocateLots_LaterLotsUntouched(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lots := []Movement{
		lot(t, "10", "10.00", base),
		lot(t, "10", "20.00", base.Add(time.Hour)),
	}

	plan, err := AllocateLots("FUEL-DIESEL", lots, types.MustMoney("4"))
	require.NoError(t, err)

	require.Len(t, plan.Draws, 1)
	assert.Equal(t, lots[0].ID, plan.Draws[0].LotID)
	assert.True(t, plan.RealCost.Equal(types.MustMoney("40.00")))
}

func TestAllocateLots_InsufficientStock(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lots := []Movement{
		lot(t, "5", "10.00", base),
		lot(t, "5", "12.00", base.Add(time.Hour)),
	}

	plan, err := AllocateLots("FUEL-DIESEL", lots, types.MustMoney("15"))
	require.Error(t, err)
	assert.Empty(t, plan.Draws)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "15", appErr.Details["requested"])
	assert.Equal(t, "10", appErr.Details["available"])
}

func TestAllocateLots_NoLots(t *testing.T) {
	_, err := AllocateLots("FUEL-DIESEL", nil, types.MustMoney("1"))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestAllocateLots_PriceFallback(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := lot(t, "5", "10.00", base)
	l.RealUnitPrice = types.Zero()

	plan, err := AllocateLots("FUEL-DIESEL", []Movement{l}, types.MustMoney("2"))
	require.NoError(t, err)
	assert.True(t, plan.RealCost.Equal(types.MustMoney("20.00")))
}

func TestPlan_RealUnitPrice(t *testing.T) {
	plan := Plan{RealCost: types.MustMoney("74.00")}
	got := plan.RealUnitPrice(types.MustMoney("7"))

	// 74 / 7 rounded to 4 decimal places
	assert.True(t, got.Equal(types.MustMoney("10.5714")), "got %s", got)
}

func TestPlan_RealUnitPrice_ZeroQuantity(t *testing.T) {
	plan := Plan{RealCost: types.MustMoney("74.00")}
	assert.True(t, plan.RealUnitPrice(types.Zero()).IsZero())
}
