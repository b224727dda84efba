package movement

import (
	"context"

	"forestech/internal/core/id"
	"forestech/internal/core/types"
)

// Repository defines storage operations for the movement ledger.
//
// Mutating operations are expected to run inside a transaction started
// by the service (tx.Manager); implementations pick up the active
// transaction from context.
type Repository interface {
	// Movement operations

	// Create inserts a single movement.
	Create(ctx context.Context, m *Movement) error

	// GetByID retrieves a movement, NOT_FOUND if absent.
	GetByID(ctx context.Context, movementID id.ID) (*Movement, error)

	// List returns movements matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Movement, error)

	// UpdateDescription amends description and invoice reference.
	// Quantities, product and type are immutable.
	UpdateDescription(ctx context.Context, movementID id.ID, description string, invoiceID *string) error

	// Delete removes a movement row.
	Delete(ctx context.Context, movementID id.ID) error

	// Stock queries

	// SumQuantityByType totals quantity for product+type.
	SumQuantityByType(ctx context.Context, productID string, t Type) (types.Money, error)

	// SumRemainingByProduct totals remaining quantity over open lots.
	SumRemainingByProduct(ctx context.Context, productID string) (types.Money, error)

	// SumWeightedRemainingValue totals remaining*unit_price over open lots.
	SumWeightedRemainingValue(ctx context.Context, productID string) (types.Money, error)

	// Lot operations

	// LockOpenLots returns the product's ENTRADA lots with remaining
	// quantity, oldest first (created_at, id), locked FOR UPDATE.
	// Must be called within a transaction.
	LockOpenLots(ctx context.Context, productID string) ([]Movement, error)

	// DecrementRemaining atomically subtracts from a lot's remaining
	// quantity. Fails with CONCURRENT_MODIFICATION instead of letting
	// the value go negative.
	DecrementRemaining(ctx context.Context, lotID id.ID, amount types.Money) error

	// RestoreRemaining adds quantity back to a lot (exit deletion).
	RestoreRemaining(ctx context.Context, lotID id.ID, amount types.Money) error

	// Allocation operations

	// CreateAllocations batch inserts allocation records.
	CreateAllocations(ctx context.Context, allocations []FifoAllocation) error

	// GetAllocationsByOutput returns the allocations funding one exit.
	GetAllocationsByOutput(ctx context.Context, outputMovementID id.ID) ([]FifoAllocation, error)

	// SumAllocatedByInput totals quantity drawn from one lot.
	SumAllocatedByInput(ctx context.Context, inputMovementID id.ID) (types.Money, error)

	// DeleteAllocationsByOutput removes an exit's allocation records.
	DeleteAllocationsByOutput(ctx context.Context, outputMovementID id.ID) error
}

// ListFilter narrows movement listings.
type ListFilter struct {
	ProductID *string
	Type      *Type
	Limit     int
	Offset    int
}
