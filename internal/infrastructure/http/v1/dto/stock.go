package dto

import (
	"forestech/internal/core/types"
	"forestech/internal/domain/stock"
)

// StockResponse reports current stock for a product.
type StockResponse struct {
	ProductID string      `json:"productId"`
	Stock     types.Money `json:"stock"`
}

// StockValuedResponse adds the weighted average price of open lots.
type StockValuedResponse struct {
	ProductID            string      `json:"productId"`
	Stock                types.Money `json:"stock"`
	WeightedAveragePrice types.Money `json:"weightedAveragePrice"`
}

// FromStockWithPrice creates StockValuedResponse from stock.StockWithPrice.
func FromStockWithPrice(s stock.StockWithPrice) StockValuedResponse {
	return StockValuedResponse{
		ProductID:            s.ProductID,
		Stock:                s.Stock,
		WeightedAveragePrice: s.WeightedAveragePrice,
	}
}
