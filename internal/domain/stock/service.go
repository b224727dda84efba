// Package stock derives stock views from the movement ledger.
package stock

import (
	"context"
	"fmt"

	"forestech/internal/core/tx"
	"forestech/internal/core/types"
	"forestech/internal/domain/movement"
)

// Service computes stock and valuation figures. Pure reads; exits are
// validated against their own transactional snapshot in the ledger
// service, so these queries take no locks.
type Service struct {
	repo      movement.Repository
	txManager tx.ReadOnlyManager
}

// NewService creates a new stock calculator service.
func NewService(repo movement.Repository, txManager tx.ReadOnlyManager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// CurrentStock returns sum(ENTRADA) - sum(SALIDA) for a product.
func (s *Service) CurrentStock(ctx context.Context, productID string) (types.Money, error) {
	var stock types.Money
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		entradas, err := s.repo.SumQuantityByType(ctx, productID, movement.TypeEntrada)
		if err != nil {
			return fmt.Errorf("sum entradas: %w", err)
		}
		salidas, err := s.repo.SumQuantityByType(ctx, productID, movement.TypeSalida)
		if err != nil {
			return fmt.Errorf("sum salidas: %w", err)
		}
		stock = entradas.Sub(salidas)
		return nil
	})
	return stock, err
}

// RemainingStock returns the total unconsumed quantity over open lots.
// Equals CurrentStock whenever the ledger invariants hold.
func (s *Service) RemainingStock(ctx context.Context, productID string) (types.Money, error) {
	var remaining types.Money
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		remaining, err = s.repo.SumRemainingByProduct(ctx, productID)
		return err
	})
	return remaining, err
}

// WeightedAveragePrice returns the remaining-quantity-weighted average
// purchase price over open lots, rounded to two decimals. Zero when no
// stock is left.
func (s *Service) WeightedAveragePrice(ctx context.Context, productID string) (types.Money, error) {
	var avg types.Money
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		remaining, err := s.repo.SumRemainingByProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("sum remaining: %w", err)
		}
		if !remaining.IsPositive() {
			avg = types.Zero()
			return nil
		}

		weighted, err := s.repo.SumWeightedRemainingValue(ctx, productID)
		if err != nil {
			return fmt.Errorf("sum weighted value: %w", err)
		}

		avg = weighted.DivRound(remaining, types.AverageScale)
		return nil
	})
	return avg, err
}

// StockWithPrice is the valued stock view for a product.
type StockWithPrice struct {
	ProductID            string
	Stock                types.Money
	WeightedAveragePrice types.Money
}

// GetStockValued returns remaining stock with its weighted average
// price, both from one consistent snapshot.
func (s *Service) GetStockValued(ctx context.Context, productID string) (StockWithPrice, error) {
	result := StockWithPrice{ProductID: productID}

	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		remaining, err := s.repo.SumRemainingByProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("sum remaining: %w", err)
		}
		result.Stock = remaining
		result.WeightedAveragePrice = types.Zero()

		if !remaining.IsPositive() {
			return nil
		}

		weighted, err := s.repo.SumWeightedRemainingValue(ctx, productID)
		if err != nil {
			return fmt.Errorf("sum weighted value: %w", err)
		}

		result.WeightedAveragePrice = weighted.DivRound(remaining, types.AverageScale)
		return nil
	})

	return result, err
}
