package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forestech/internal/core/apperror"
	"forestech/internal/core/id"
	"forestech/internal/domain/movement"
	"forestech/internal/infrastructure/http/v1/dto"
)

// MovementHandler handles HTTP requests for the movement ledger.
type MovementHandler struct {
	*BaseHandler
	service *movement.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *movement.Service) *MovementHandler {
	return &MovementHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateEntrada registers a stock entry.
func (h *MovementHandler) CreateEntrada(c *gin.Context) {
	var req dto.CreateEntradaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.CreateEntrada(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromMovement(*m))
}

// CreateSalida registers a stock exit, allocating it against open lots.
func (h *MovementHandler) CreateSalida(c *gin.Context) {
	var req dto.CreateSalidaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.CreateSalida(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromMovement(*m))
}

// List returns movements filtered by product and type.
func (h *MovementHandler) List(c *gin.Context) {
	var req dto.ListMovementsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter := movement.ListFilter{
		ProductID: req.ProductID,
		Limit:     req.PageSize,
		Offset:    req.Offset(),
	}
	if req.Type != nil {
		t, err := movement.ParseType(*req.Type)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Type = &t
	}

	movements, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromMovements(movements)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// GetByID returns a single movement.
func (h *MovementHandler) GetByID(c *gin.Context) {
	movementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMovement(*m))
}

// GetAllocations returns the FIFO draws funding an exit.
func (h *MovementHandler) GetAllocations(c *gin.Context) {
	movementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	allocations, err := h.service.GetAllocations(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromAllocations(allocations)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// UpdateDescription amends description and invoice reference.
func (h *MovementHandler) UpdateDescription(c *gin.Context) {
	movementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateDescriptionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.UpdateDescription(c.Request.Context(), movementID, req.Description, req.InvoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMovement(*m))
}

// Delete removes a movement, rolling back its stock effects.
func (h *MovementHandler) Delete(c *gin.Context) {
	movementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), movementID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
