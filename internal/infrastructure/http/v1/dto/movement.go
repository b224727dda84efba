package dto

import (
	"time"

	"forestech/internal/core/types"
	"forestech/internal/domain/movement"
)

// --- Requests ---

// CreateEntradaRequest for registering a stock entry.
type CreateEntradaRequest struct {
	ProductID   string       `json:"productId" binding:"required"`
	InvoiceID   *string      `json:"invoiceId"`
	Quantity    types.Money  `json:"quantity" binding:"required"`
	UnitPrice   *types.Money `json:"unitPrice"`
	Description string       `json:"description"`
}

// ToInput converts request to service input.
func (r CreateEntradaRequest) ToInput() movement.EntradaInput {
	return movement.EntradaInput{
		ProductID:   r.ProductID,
		InvoiceID:   r.InvoiceID,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		Description: r.Description,
	}
}

// CreateSalidaRequest for registering a stock exit.
type CreateSalidaRequest struct {
	ProductID   string       `json:"productId" binding:"required"`
	VehicleID   *string      `json:"vehicleId"`
	Quantity    types.Money  `json:"quantity" binding:"required"`
	UnitPrice   *types.Money `json:"unitPrice"`
	Description string       `json:"description"`
}

// ToInput converts request to service input.
func (r CreateSalidaRequest) ToInput() movement.SalidaInput {
	return movement.SalidaInput{
		ProductID:   r.ProductID,
		VehicleID:   r.VehicleID,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		Description: r.Description,
	}
}

// UpdateDescriptionRequest amends the mutable movement fields.
type UpdateDescriptionRequest struct {
	Description string  `json:"description" binding:"required"`
	InvoiceID   *string `json:"invoiceId"`
}

// ListMovementsRequest contains list filters.
type ListMovementsRequest struct {
	PaginationRequest
	ProductID *string `form:"productId"`
	Type      *string `form:"type"`
}

// --- Responses ---

// MovementResponse contains movement fields.
type MovementResponse struct {
	ID                string       `json:"id"`
	Type              string       `json:"type"`
	ProductID         string       `json:"productId"`
	VehicleID         *string      `json:"vehicleId,omitempty"`
	InvoiceID         *string      `json:"invoiceId,omitempty"`
	Quantity          types.Money  `json:"quantity"`
	RemainingQuantity *types.Money `json:"remainingQuantity,omitempty"`
	UnitPrice         types.Money  `json:"unitPrice"`
	RealUnitPrice     types.Money  `json:"realUnitPrice"`
	Subtotal          types.Money  `json:"subtotal"`
	RealCost          types.Money  `json:"realCost"`
	Description       string       `json:"description,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// FromMovement creates MovementResponse from movement.Movement.
func FromMovement(m movement.Movement) MovementResponse {
	return MovementResponse{
		ID:                m.ID.String(),
		Type:              string(m.Type),
		ProductID:         m.ProductID,
		VehicleID:         m.VehicleID,
		InvoiceID:         m.InvoiceID,
		Quantity:          m.Quantity,
		RemainingQuantity: m.RemainingQuantity,
		UnitPrice:         m.UnitPrice,
		RealUnitPrice:     m.RealUnitPrice,
		Subtotal:          m.Subtotal,
		RealCost:          m.RealCost,
		Description:       m.Description,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromMovements converts a slice of movements.
func FromMovements(movements []movement.Movement) []MovementResponse {
	result := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		result = append(result, FromMovement(m))
	}
	return result
}

// AllocationResponse describes one FIFO draw against a lot.
type AllocationResponse struct {
	ID               string      `json:"id"`
	OutputMovementID string      `json:"outputMovementId"`
	InputMovementID  string      `json:"inputMovementId"`
	Quantity         types.Money `json:"quantity"`
	AllocatedAt      time.Time   `json:"allocatedAt"`
}

// FromAllocations converts a slice of allocations.
func FromAllocations(allocations []movement.FifoAllocation) []AllocationResponse {
	result := make([]AllocationResponse, 0, len(allocations))
	for _, a := range allocations {
		result = append(result, AllocationResponse{
			ID:               a.ID.String(),
			OutputMovementID: a.OutputMovementID.String(),
			InputMovementID:  a.InputMovementID.String(),
			Quantity:         a.Quantity,
			AllocatedAt:      a.AllocatedAt,
		})
	}
	return result
}
