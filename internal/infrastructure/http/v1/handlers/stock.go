package handlers

import (
	"github.com/gin-gonic/gin"

	"forestech/internal/core/apperror"
	"forestech/internal/domain/stock"
	"forestech/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock query requests.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStock returns current stock for a product.
func (h *StockHandler) GetStock(c *gin.Context) {
	productID := c.Param("productId")
	if productID == "" {
		h.Error(c, apperror.NewValidation("productId is required"))
		return
	}

	current, err := h.service.CurrentStock(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.StockResponse{ProductID: productID, Stock: current})
}

// GetStockValued returns stock with the weighted average price of open lots.
func (h *StockHandler) GetStockValued(c *gin.Context) {
	productID := c.Param("productId")
	if productID == "" {
		h.Error(c, apperror.NewValidation("productId is required"))
		return
	}

	valued, err := h.service.GetStockValued(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockWithPrice(valued))
}
