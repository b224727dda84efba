package movement

import (
	"context"

	"forestech/internal/core/types"
)

// Product carries the catalog fields the ledger consumes: identity and
// the list price used when a request omits unitPrice.
type Product struct {
	ID        string
	Name      string
	UnitPrice types.Money
}

// ProductResolver answers whether a product exists and at what price.
// Implementations return NOT_FOUND for unknown products.
type ProductResolver interface {
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

// VehicleResolver checks vehicle existence against the fleet service.
type VehicleResolver interface {
	VehicleExists(ctx context.Context, vehicleID string) (bool, error)
}

// InvoiceResolver checks invoice existence against the invoicing service.
type InvoiceResolver interface {
	InvoiceExists(ctx context.Context, invoiceID string) (bool, error)
}
