package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice/internal/application/reports"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

// InventoryHandler maneja ajustes manuales, consultas del libro de movimientos y reposición (protegido).
type InventoryHandler struct {
	adjust        *inventory.AdjustStockUseCase
	ledger        *inventory.LedgerQueryUseCase
	replenishment *reports.ReplenishmentUseCase
	log           *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	adjust *inventory.AdjustStockUseCase,
	ledger *inventory.LedgerQueryUseCase,
	replenishment *reports.ReplenishmentUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, ledger: ledger, replenishment: replenishment, log: log}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, direction (in|out), quantity, note"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.adjust.AdjustStock(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Consultar el libro de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  false  "producto"
// @Param        reference_type  query  string  false  "sale | reception | adjustment"
// @Param        from            query  string  false  "YYYY-MM-DD"
// @Param        to              query  string  false  "YYYY-MM-DD"
// @Param        limit           query  int     false  "límite"
// @Param        offset          query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	page := pageFromQuery(c)
	out, err := h.ledger.ListMovements(c.UserContext(), repository.MovementFilter{
		ProductID:     c.Query("product_id"),
		ReferenceType: c.Query("reference_type"),
		From:          from,
		To:            to,
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByReference godoc
// @Summary      Movimientos generados por un documento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "tipo de referencia"
// @Param        id    path  string  true  "ID del documento"
// @Success      200  {array}  dto.StockMovementResponse
// @Router       /api/inventory/movements/reference/{type}/{id} [get]
func (h *InventoryHandler) ListByReference(c *fiber.Ctx) error {
	out, err := h.ledger.ListByReference(c.UserContext(), c.Params("type"), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar stock materializado contra el libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.ledger.Reconcile(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición sugerida
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "máximo de productos"
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
