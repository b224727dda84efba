package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forestech/internal/core/types"
	"forestech/internal/domain/movement"
)

// fakeRepo implements only the reads the stock service performs.
type fakeRepo struct {
	movement.Repository

	entradas  types.Money
	salidas   types.Money
	remaining types.Money
	weighted  types.Money
}

func (r *fakeRepo) SumQuantityByType(_ context.Context, _ string, t movement.Type) (types.Money, error) {
	if t == movement.TypeEntrada {
		return r.entradas, nil
	}
	return r.salidas, nil
}

func (r *fakeRepo) SumRemainingByProduct(_ context.Context, _ string) (types.Money, error) {
	return r.remaining, nil
}

func (r *fakeRepo) SumWeightedRemainingValue(_ context.Context, _ string) (types.Money, error) {
	return r.weighted, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestCurrentStock(t *testing.T) {
	repo := &fakeRepo{
		entradas: types.MustMoney("150"),
		salidas:  types.MustMoney("40"),
	}
	svc := NewService(repo, passthroughTx{})

	got, err := svc.CurrentStock(context.Background(), "FUEL-DIESEL")
	require.NoError(t, err)
	assert.True(t, got.Equal(types.MustMoney("110")), "stock = %s", got)
}

func TestCurrentStock_NoMovements(t *testing.T) {
	svc := NewService(&fakeRepo{entradas: types.Zero(), salidas: types.Zero()}, passthroughTx{})

	got, err := svc.CurrentStock(context.Background(), "FUEL-DIESEL")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestWeightedAveragePrice(t *testing.T) {
	// Two open lots: 60 @ 3.00 and 40 @ 4.50.
	repo := &fakeRepo{
		remaining: types.MustMoney("100"),
		weighted:  types.MustMoney("360.00"),
	}
	svc := NewService(repo, passthroughTx{})

	got, err := svc.WeightedAveragePrice(context.Background(), "FUEL-DIESEL")
	require.NoError(t, err)

	// 360 / 100 rounded to 2 decimal places
	assert.True(t, got.Equal(types.MustMoney("3.60")), "avg = %s", got)
}

func TestWeightedAveragePrice_RoundsHalfUp(t *testing.T) {
	repo := &fakeRepo{
		remaining: types.MustMoney("3"),
		weighted:  types.MustMoney("10.00"),
	}
	svc := NewService(repo, passthroughTx{})

	got, err := svc.WeightedAveragePrice(context.Background(), "FUEL-DIESEL")
	require.NoError(t, err)
	assert.True(t, got.Equal(types.MustMoney("3.33")), "avg = %s", got)
}

func TestWeightedAveragePrice_NoOpenLots(t *testing.T) {
	repo := &fakeRepo{remaining: types.Zero(), weighted: types.Zero()}
	svc := NewService(repo, passthroughTx{})

	got, err := svc.WeightedAveragePrice(context.Background(), "FUEL-DIESEL")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestGetStockValued(t *testing.T) {
	repo := &fakeRepo{
		entradas:  types.MustMoney("100"),
		salidas:   types.MustMoney("30"),
		remaining: types.MustMoney("70"),
		weighted:  types.MustMoney("245.00"),
	}
	svc := NewService(repo, passthroughTx{})

	got, err := svc.GetStockValued(context.Background(), "FUEL-DIESEL")
	require.NoError(t, err)
	assert.Equal(t, "FUEL-DIESEL", got.ProductID)
	assert.True(t, got.Stock.Equal(types.MustMoney("70")))
	assert.True(t, got.WeightedAveragePrice.Equal(types.MustMoney("3.50")))
}
