package movement

import (
	"forestech/internal/core/apperror"
	"forestech/internal/core/id"
	"forestech/internal/core/types"
)

// LotDraw is one slice of a FIFO allocation: quantity taken from a
// specific lot at that lot's real unit price.
type LotDraw struct {
	LotID     id.ID
	Quantity  types.Money
	UnitPrice types.Money
}

// Plan is a complete FIFO allocation for one exit: the ordered draws
// and their total real cost.
type Plan struct {
	Draws    []LotDraw
	RealCost types.Money
}

// RealUnitPrice derives the exit's per-unit cost from the plan.
func (p Plan) RealUnitPrice(quantity types.Money) types.Money {
	if !quantity.IsPositive() {
		return types.Zero()
	}
	return p.RealCost.DivRound(quantity, types.PriceScale)
}

// AllocateLots greedily consumes the given lots, oldest first, until
// the requested quantity is satisfied. Lots must already be ordered by
// (created_at, id) ascending; LockOpenLots guarantees that.
//
// Later lots are left untouched once the request is satisfied. If the
// lots cannot cover the request the whole attempt fails with
// INSUFFICIENT_STOCK and nothing is drawn.
func AllocateLots(productID string, lots []Movement, requested types.Money) (Plan, error) {
	plan := Plan{RealCost: types.Zero()}

	available := types.Zero()
	for _, lot := range lots {
		available = available.Add(lot.Remaining())
	}

	if available.LessThan(requested) {
		return plan, apperror.NewInsufficientStock(productID, requested, available)
	}

	still := requested
	for _, lot := range lots {
		if !still.IsPositive() {
			break
		}

		draw := lot.Remaining()
		if draw.GreaterThan(still) {
			draw = still
		}
		if !draw.IsPositive() {
			continue
		}

		// The lot's real price funds the exit's cost; falls back to the
		// declared price for lots recorded before valuation existed.
		price := lot.RealUnitPrice
		if price.IsZero() {
			price = lot.UnitPrice
		}

		plan.Draws = append(plan.Draws, LotDraw{
			LotID:     lot.ID,
			Quantity:  draw,
			UnitPrice: price,
		})
		plan.RealCost = plan.RealCost.Add(draw.Mul(price))
		still = still.Sub(draw)
	}

	return plan, nil
}
