// Package movement_repo provides the PostgreSQL implementation of the
// movement ledger repository.
package movement_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"forestech/internal/core/apperror"
	"forestech/internal/core/id"
	"forestech/internal/core/types"
	"forestech/internal/domain/movement"
	"forestech/internal/infrastructure/storage/postgres"
)

const (
	movementsTable   = "movements"
	allocationsTable = "fifo_allocations"
)

var (
	movementColumns   = postgres.ExtractDBColumns[movement.Movement]()
	allocationColumns = postgres.ExtractDBColumns[movement.FifoAllocation]()
)

// MovementRepo implements movement.Repository.
type MovementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewMovementRepo creates a new movement repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a single movement.
func (r *MovementRepo) Create(ctx context.Context, m *movement.Movement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.Type, m.ProductID, m.VehicleID, m.InvoiceID,
			m.Quantity, m.RemainingQuantity,
			m.UnitPrice, m.RealUnitPrice, m.Subtotal, m.RealCost,
			m.Description, m.CreatedAt, m.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// GetByID retrieves a movement by id.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*movement.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"id": movementID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m movement.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement", movementID.String())
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}

	return &m, nil
}

// List returns movements matching the filter, newest first.
func (r *MovementRepo) List(ctx context.Context, filter movement.ListFilter) ([]movement.Movement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
	}

	q = q.OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []movement.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// UpdateDescription amends description and, when provided, the invoice
// reference. Everything else stays immutable.
func (r *MovementRepo) UpdateDescription(ctx context.Context, movementID id.ID, description string, invoiceID *string) error {
	q := r.builder.Update(movementsTable).
		Set("description", description).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": movementID})

	if invoiceID != nil {
		q = q.Set("invoice_id", *invoiceID)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("movement", movementID.String())
	}

	return nil
}

// Delete removes a movement row.
func (r *MovementRepo) Delete(ctx context.Context, movementID id.ID) error {
	q := r.builder.Delete(movementsTable).
		Where(squirrel.Eq{"id": movementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("movement", movementID.String())
	}

	return nil
}

// SumQuantityByType totals quantity for product+type.
func (r *MovementRepo) SumQuantityByType(ctx context.Context, productID string, t movement.Type) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM movements
		WHERE product_id = $1 AND movement_type = $2
	`

	var total types.Money
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, productID, t).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum quantity: %w", err)
	}

	return total, nil
}

// SumRemainingByProduct totals remaining quantity over open lots.
func (r *MovementRepo) SumRemainingByProduct(ctx context.Context, productID string) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(remaining_quantity), 0)
		FROM movements
		WHERE product_id = $1 AND movement_type = 'ENTRADA'
	`

	var total types.Money
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, productID).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum remaining: %w", err)
	}

	return total, nil
}

// SumWeightedRemainingValue totals remaining*unit_price over open lots.
func (r *MovementRepo) SumWeightedRemainingValue(ctx context.Context, productID string) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(remaining_quantity * unit_price), 0)
		FROM movements
		WHERE product_id = $1 AND movement_type = 'ENTRADA' AND remaining_quantity > 0
	`

	var total types.Money
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, productID).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum weighted value: %w", err)
	}

	return total, nil
}

// LockOpenLots returns open lots oldest first with a pessimistic lock.
// Id breaks created_at ties; UUIDv7 keeps that order chronological.
func (r *MovementRepo) LockOpenLots(ctx context.Context, productID string) ([]movement.Movement, error) {
	sql := `
		SELECT id, movement_type, product_id, vehicle_id, invoice_id,
		       quantity, remaining_quantity,
		       unit_price, real_unit_price, subtotal, real_cost,
		       description, created_at, updated_at
		FROM movements
		WHERE product_id = $1
		  AND movement_type = 'ENTRADA'
		  AND remaining_quantity > 0
		ORDER BY created_at, id
		FOR UPDATE
	`

	if r.txManager.GetTx(ctx) == nil {
		return nil, fmt.Errorf("LockOpenLots requires transaction context")
	}

	var lots []movement.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lots, sql, productID); err != nil {
		return nil, fmt.Errorf("lock lots: %w", err)
	}

	return lots, nil
}

// DecrementRemaining atomically subtracts from a lot. The WHERE guard
// refuses to go negative; zero rows affected means a concurrent exit
// got there first.
func (r *MovementRepo) DecrementRemaining(ctx context.Context, lotID id.ID, amount types.Money) error {
	sql := `
		UPDATE movements
		SET remaining_quantity = remaining_quantity - $2,
		    updated_at = now()
		WHERE id = $1
		  AND movement_type = 'ENTRADA'
		  AND remaining_quantity >= $2
	`

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, lotID, amount)
	if err != nil {
		return fmt.Errorf("decrement remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("movement", lotID.String())
	}

	return nil
}

// RestoreRemaining adds quantity back to a lot (exit deletion).
func (r *MovementRepo) RestoreRemaining(ctx context.Context, lotID id.ID, amount types.Money) error {
	sql := `
		UPDATE movements
		SET remaining_quantity = remaining_quantity + $2,
		    updated_at = now()
		WHERE id = $1
		  AND movement_type = 'ENTRADA'
	`

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, lotID, amount)
	if err != nil {
		return fmt.Errorf("restore remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("movement", lotID.String())
	}

	return nil
}

// CreateAllocations batch inserts allocation records.
func (r *MovementRepo) CreateAllocations(ctx context.Context, allocations []movement.FifoAllocation) error {
	if len(allocations) == 0 {
		return nil
	}

	columns := allocationColumns

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(allocations))
		for _, a := range allocations {
			rows = append(rows, []any{
				a.ID, a.OutputMovementID, a.InputMovementID, a.Quantity, a.AllocatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, allocationsTable, columns, rows); err != nil {
			return fmt.Errorf("copy allocations: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert (slower). Prefer calling CreateAllocations within tx.
	q := r.builder.Insert(allocationsTable).Columns(columns...)
	for _, a := range allocations {
		q = q.Values(a.ID, a.OutputMovementID, a.InputMovementID, a.Quantity, a.AllocatedAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert allocations: %w", err)
	}

	return nil
}

// GetAllocationsByOutput returns the allocations funding one exit.
func (r *MovementRepo) GetAllocationsByOutput(ctx context.Context, outputMovementID id.ID) ([]movement.FifoAllocation, error) {
	q := r.builder.Select(allocationColumns...).
		From(allocationsTable).
		Where(squirrel.Eq{"output_movement_id": outputMovementID}).
		OrderBy("allocated_at", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var allocations []movement.FifoAllocation
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &allocations, sql, args...); err != nil {
		return nil, fmt.Errorf("select allocations: %w", err)
	}

	return allocations, nil
}

// SumAllocatedByInput totals quantity drawn from one lot.
func (r *MovementRepo) SumAllocatedByInput(ctx context.Context, inputMovementID id.ID) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM fifo_allocations
		WHERE input_movement_id = $1
	`

	var total types.Money
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, inputMovementID).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum allocated: %w", err)
	}

	return total, nil
}

// DeleteAllocationsByOutput removes an exit's allocation records.
func (r *MovementRepo) DeleteAllocationsByOutput(ctx context.Context, outputMovementID id.ID) error {
	q := r.builder.Delete(allocationsTable).
		Where(squirrel.Eq{"output_movement_id": outputMovementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete allocations: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ movement.Repository = (*MovementRepo)(nil)
