package movement

import (
	"context"
	"fmt"
	"time"

	"forestech/internal/core/apperror"
	"forestech/internal/core/id"
	"forestech/internal/core/tx"
	"forestech/internal/core/types"
	"forestech/pkg/logger"
)

// ServiceConfig tunes the ledger service.
type ServiceConfig struct {
	// AllocationRetries bounds how often a SALIDA is retried after a lot
	// decrement raced with a concurrent exit.
	AllocationRetries int
}

// DefaultServiceConfig returns production defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		AllocationRetries: 3,
	}
}

// Service is the movement ledger: the only mutating entry point for
// movements and allocations. It validates input, confirms external
// references, and commits each movement together with its allocations
// and lot decrements as one transaction.
type Service struct {
	repo      Repository
	txManager tx.Manager
	products  ProductResolver
	vehicles  VehicleResolver
	invoices  InvoiceResolver
	cfg       ServiceConfig
}

// NewService creates a new movement ledger service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	products ProductResolver,
	vehicles VehicleResolver,
	invoices InvoiceResolver,
	cfg ServiceConfig,
) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		products:  products,
		vehicles:  vehicles,
		invoices:  invoices,
		cfg:       cfg,
	}
}

// EntradaInput is a request to record an inbound lot.
type EntradaInput struct {
	ProductID   string
	InvoiceID   *string
	Quantity    types.Money
	UnitPrice   *types.Money // nil: use the catalog price
	Description string
}

// SalidaInput is a request to record an outbound movement.
type SalidaInput struct {
	ProductID   string
	VehicleID   *string
	Quantity    types.Money
	UnitPrice   *types.Money // nil: use the catalog price
	Description string
}

// CreateEntrada records an inbound lot. No allocation happens; the full
// quantity becomes available stock.
func (s *Service) CreateEntrada(ctx context.Context, in EntradaInput) (*Movement, error) {
	if err := validateInput(in.ProductID, in.Quantity, in.UnitPrice); err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	if in.InvoiceID != nil {
		exists, err := s.invoices.InvoiceExists(ctx, *in.InvoiceID)
		if err != nil {
			return nil, fmt.Errorf("check invoice: %w", err)
		}
		if !exists {
			return nil, apperror.NewNotFound("invoice", *in.InvoiceID)
		}
	}

	price := product.UnitPrice
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	}

	m := NewEntrada(in.ProductID, in.InvoiceID, in.Quantity, price, in.Description)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "entrada recorded",
		"movement_id", m.ID,
		"product_id", m.ProductID,
		"quantity", m.Quantity.String(),
	)

	return m, nil
}

// CreateSalida records an outbound movement: the stock check, the FIFO
// allocation, and all persistence happen inside one transaction with
// the product's open lots locked. A raced lot decrement rolls the
// attempt back and retries a bounded number of times.
func (s *Service) CreateSalida(ctx context.Context, in SalidaInput) (*Movement, error) {
	if err := validateInput(in.ProductID, in.Quantity, in.UnitPrice); err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	if in.VehicleID != nil {
		exists, err := s.vehicles.VehicleExists(ctx, *in.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("check vehicle: %w", err)
		}
		if !exists {
			return nil, apperror.NewNotFound("vehicle", *in.VehicleID)
		}
	}

	price := product.UnitPrice
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	}

	var lastErr error
	for attempt := 0; attempt <= s.cfg.AllocationRetries; attempt++ {
		m, err := s.createSalidaOnce(ctx, in, price)
		if err == nil {
			return m, nil
		}
		if !apperror.IsConcurrentModification(err) {
			return nil, err
		}

		lastErr = err
		logger.Warn(ctx, "salida allocation raced, retrying",
			"product_id", in.ProductID,
			"attempt", attempt+1,
		)
	}

	// The concurrent winners consumed the stock this exit was counting
	// on; report what is left now.
	available, err := s.currentStock(ctx, in.ProductID)
	if err != nil {
		return nil, lastErr
	}
	return nil, apperror.NewInsufficientStock(in.ProductID, in.Quantity, available).WithCause(lastErr)
}

func (s *Service) createSalidaOnce(ctx context.Context, in SalidaInput, price types.Money) (*Movement, error) {
	m := NewSalida(in.ProductID, in.VehicleID, in.Quantity, price, in.Description)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Stock check and allocation see the same snapshot: both run in
		// this transaction, with the open lots locked below.
		stock, err := s.stockInTx(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if stock.LessThan(in.Quantity) {
			return apperror.NewInsufficientStock(in.ProductID, in.Quantity, stock)
		}

		lots, err := s.repo.LockOpenLots(ctx, in.ProductID)
		if err != nil {
			return fmt.Errorf("lock lots: %w", err)
		}

		plan, err := AllocateLots(in.ProductID, lots, in.Quantity)
		if err != nil {
			return err
		}

		m.RealCost = plan.RealCost
		m.RealUnitPrice = plan.RealUnitPrice(in.Quantity)

		if err := s.repo.Create(ctx, m); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}

		allocations := make([]FifoAllocation, 0, len(plan.Draws))
		now := time.Now().UTC()
		for _, draw := range plan.Draws {
			allocations = append(allocations, FifoAllocation{
				ID:               id.New(),
				OutputMovementID: m.ID,
				InputMovementID:  draw.LotID,
				Quantity:         draw.Quantity,
				AllocatedAt:      now,
			})
		}

		if err := s.repo.CreateAllocations(ctx, allocations); err != nil {
			return fmt.Errorf("create allocations: %w", err)
		}

		for _, draw := range plan.Draws {
			if err := s.repo.DecrementRemaining(ctx, draw.LotID, draw.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "salida recorded",
		"movement_id", m.ID,
		"product_id", m.ProductID,
		"quantity", m.Quantity.String(),
		"real_cost", m.RealCost.String(),
	)

	return m, nil
}

// GetByID retrieves a single movement.
func (s *Service) GetByID(ctx context.Context, movementID id.ID) (*Movement, error) {
	return s.repo.GetByID(ctx, movementID)
}

// List retrieves movements with optional product/type filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Movement, error) {
	if filter.Type != nil {
		if _, err := ParseType(string(*filter.Type)); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, filter)
}

// GetAllocations returns the allocation records funding one exit.
func (s *Service) GetAllocations(ctx context.Context, outputMovementID id.ID) ([]FifoAllocation, error) {
	if _, err := s.repo.GetByID(ctx, outputMovementID); err != nil {
		return nil, err
	}
	return s.repo.GetAllocationsByOutput(ctx, outputMovementID)
}

// UpdateDescription amends the non-critical metadata of a movement.
// Quantities, product and type stay immutable.
func (s *Service) UpdateDescription(ctx context.Context, movementID id.ID, description string, invoiceID *string) (*Movement, error) {
	m, err := s.repo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}

	if m.Type == TypeSalida && invoiceID != nil {
		return nil, apperror.NewValidation("a SALIDA must not reference an invoice").
			WithDetail("field", "invoiceId")
	}

	if invoiceID != nil {
		exists, err := s.invoices.InvoiceExists(ctx, *invoiceID)
		if err != nil {
			return nil, fmt.Errorf("check invoice: %w", err)
		}
		if !exists {
			return nil, apperror.NewNotFound("invoice", *invoiceID)
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.UpdateDescription(ctx, movementID, description, invoiceID)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, movementID)
}

// Delete removes a movement (administrative operation).
//
// An ENTRADA whose stock has been consumed cannot be deleted. Deleting
// a SALIDA restores every drawn quantity back to its source lots and
// removes the allocation records, atomically.
func (s *Service) Delete(ctx context.Context, movementID id.ID) error {
	m, err := s.repo.GetByID(ctx, movementID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		switch m.Type {
		case TypeEntrada:
			allocated, err := s.repo.SumAllocatedByInput(ctx, m.ID)
			if err != nil {
				return fmt.Errorf("sum allocations: %w", err)
			}
			if allocated.IsPositive() {
				return apperror.NewBusinessRule("cannot delete an entrada whose stock has been consumed by later exits").
					WithDetail("movement_id", m.ID.String()).
					WithDetail("allocated", allocated.String())
			}

		case TypeSalida:
			allocations, err := s.repo.GetAllocationsByOutput(ctx, m.ID)
			if err != nil {
				return fmt.Errorf("get allocations: %w", err)
			}
			for _, a := range allocations {
				if err := s.repo.RestoreRemaining(ctx, a.InputMovementID, a.Quantity); err != nil {
					return err
				}
			}
			if err := s.repo.DeleteAllocationsByOutput(ctx, m.ID); err != nil {
				return fmt.Errorf("delete allocations: %w", err)
			}
		}

		return s.repo.Delete(ctx, m.ID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "movement deleted",
		"movement_id", m.ID,
		"type", m.Type,
		"product_id", m.ProductID,
	)

	return nil
}

// stockInTx computes current stock inside the caller's transaction.
func (s *Service) stockInTx(ctx context.Context, productID string) (types.Money, error) {
	entradas, err := s.repo.SumQuantityByType(ctx, productID, TypeEntrada)
	if err != nil {
		return types.Zero(), fmt.Errorf("sum entradas: %w", err)
	}
	salidas, err := s.repo.SumQuantityByType(ctx, productID, TypeSalida)
	if err != nil {
		return types.Zero(), fmt.Errorf("sum salidas: %w", err)
	}
	return entradas.Sub(salidas), nil
}

func (s *Service) currentStock(ctx context.Context, productID string) (types.Money, error) {
	var stock types.Money
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		stock, err = s.stockInTx(ctx, productID)
		return err
	})
	return stock, err
}

func validateInput(productID string, quantity types.Money, unitPrice *types.Money) error {
	if productID == "" {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if !quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("quantity", quantity.String())
	}
	if unitPrice != nil && unitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice")
	}
	return nil
}
