// Package movement provides the fuel movement ledger: ENTRADA/SALIDA
// records per product and the FIFO allocation of exits against the
// oldest inbound lots.
package movement

import (
	"time"

	"forestech/internal/core/apperror"
	"forestech/internal/core/id"
	"forestech/internal/core/types"
)

// Type distinguishes inbound and outbound movements.
type Type string

const (
	// TypeEntrada is an inbound movement: a purchased lot entering stock.
	TypeEntrada Type = "ENTRADA"
	// TypeSalida is an outbound movement: fuel dispensed, usually to a vehicle.
	TypeSalida Type = "SALIDA"
)

// ParseType validates a movement type coming from the outside.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeEntrada, TypeSalida:
		return Type(s), nil
	default:
		return "", apperror.NewValidation("invalid movement type").
			WithDetail("type", s)
	}
}

// Movement represents one inventory event for a product.
//
// An ENTRADA is also a lot: its RemainingQuantity starts equal to
// Quantity and only decreases as SALIDA allocations consume it. A
// SALIDA never carries RemainingQuantity.
type Movement struct {
	ID   id.ID `db:"id" json:"id"`
	Type Type  `db:"movement_type" json:"type"`

	// External references. The catalog, fleet and invoicing services own
	// these identifiers; the ledger stores them opaquely.
	ProductID string  `db:"product_id" json:"productId"`
	VehicleID *string `db:"vehicle_id" json:"vehicleId,omitempty"` // SALIDA only
	InvoiceID *string `db:"invoice_id" json:"invoiceId,omitempty"` // ENTRADA only

	Quantity          types.Money  `db:"quantity" json:"quantity"`
	RemainingQuantity *types.Money `db:"remaining_quantity" json:"remainingQuantity,omitempty"`

	// UnitPrice is the declared price. RealUnitPrice/RealCost reflect
	// FIFO valuation: for an ENTRADA they equal the purchase values, for
	// a SALIDA they are derived from the lots the exit was funded by.
	UnitPrice     types.Money `db:"unit_price" json:"unitPrice"`
	RealUnitPrice types.Money `db:"real_unit_price" json:"realUnitPrice"`
	Subtotal      types.Money `db:"subtotal" json:"subtotal"`
	RealCost      types.Money `db:"real_cost" json:"realCost"`

	Description string `db:"description" json:"description,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewEntrada creates an inbound movement. The full quantity is
// immediately available as lot stock.
func NewEntrada(productID string, invoiceID *string, quantity, unitPrice types.Money, description string) *Movement {
	now := time.Now().UTC()
	subtotal := quantity.Mul(unitPrice)
	remaining := quantity

	return &Movement{
		ID:                id.New(),
		Type:              TypeEntrada,
		ProductID:         productID,
		InvoiceID:         invoiceID,
		Quantity:          quantity,
		RemainingQuantity: &remaining,
		UnitPrice:         unitPrice,
		RealUnitPrice:     unitPrice,
		Subtotal:          subtotal,
		RealCost:          subtotal,
		Description:       description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// NewSalida creates an outbound movement. RealCost and RealUnitPrice
// are filled in during allocation.
func NewSalida(productID string, vehicleID *string, quantity, unitPrice types.Money, description string) *Movement {
	now := time.Now().UTC()

	return &Movement{
		ID:          id.New(),
		Type:        TypeSalida,
		ProductID:   productID,
		VehicleID:   vehicleID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    quantity.Mul(unitPrice),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the structural invariants of a movement.
func (m *Movement) Validate() error {
	if m.ProductID == "" {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if _, err := ParseType(string(m.Type)); err != nil {
		return err
	}

	if !m.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("quantity", m.Quantity.String())
	}

	if m.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice").
			WithDetail("unitPrice", m.UnitPrice.String())
	}

	if m.Type == TypeEntrada && m.VehicleID != nil {
		return apperror.NewValidation("an ENTRADA must not reference a vehicle").
			WithDetail("field", "vehicleId")
	}

	if m.Type == TypeSalida && m.InvoiceID != nil {
		return apperror.NewValidation("a SALIDA must not reference an invoice").
			WithDetail("field", "invoiceId")
	}

	return nil
}

// IsLot reports whether the movement is an inbound lot.
func (m *Movement) IsLot() bool {
	return m.Type == TypeEntrada
}

// Remaining returns the unconsumed lot quantity, zero for exits.
func (m *Movement) Remaining() types.Money {
	if m.RemainingQuantity == nil {
		return types.Zero()
	}
	return *m.RemainingQuantity
}

// FifoAllocation records the consumption of part of one ENTRADA lot by
// one SALIDA movement.
//
// Invariants: per lot, remaining + sum(allocations) == original
// quantity; per exit, sum(allocations) == exit quantity.
type FifoAllocation struct {
	ID               id.ID       `db:"id" json:"id"`
	OutputMovementID id.ID       `db:"output_movement_id" json:"outputMovementId"`
	InputMovementID  id.ID       `db:"input_movement_id" json:"inputMovementId"`
	Quantity         types.Money `db:"quantity" json:"quantity"`
	AllocatedAt      time.Time   `db:"allocated_at" json:"allocatedAt"`
}
