package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/receptions"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

// ReceptionHandler recepciones de mercancía de proveedores.
type ReceptionHandler struct {
	create  *receptions.CreateReceptionUseCase
	process *receptions.ProcessReceptionUseCase
	cancel  *receptions.CancelReceptionUseCase
	query   *receptions.QueryUseCase
	log     *logger.Logger
}

// NewReceptionHandler construye el handler.
func NewReceptionHandler(
	create *receptions.CreateReceptionUseCase,
	process *receptions.ProcessReceptionUseCase,
	cancel *receptions.CancelReceptionUseCase,
	query *receptions.QueryUseCase,
	log *logger.Logger,
) *ReceptionHandler {
	return &ReceptionHandler{create: create, process: process, cancel: cancel, query: query, log: log}
}

// Create godoc
// @Summary      Registrar recepción pendiente
// @Description  No modifica stock hasta que la recepción se procesa.
// @Tags         receptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceptionRequest  true  "factura, proveedor, fecha y líneas"
// @Success      201   {object}  dto.CreateReceptionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/receptions [post]
func (h *ReceptionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReceptionRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.create.CreateReception(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Process godoc
// @Summary      Procesar recepción
// @Description  Incrementa stock, recalcula costo promedio y opcionalmente actualiza precios de venta.
// @Tags         receptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true   "ID de la recepción"
// @Param        body  body  dto.ProcessReceptionRequest  false  "opciones"
// @Success      200   {object}  dto.ReceptionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receptions/{id}/process [post]
func (h *ReceptionHandler) Process(c *fiber.Ctx) error {
	var in dto.ProcessReceptionRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.process.ProcessReception(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar recepción pendiente
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceptionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receptions/{id}/cancel [post]
func (h *ReceptionHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.cancel.CancelReception(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de recepción
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.ReceptionResponse
// @Router       /api/receptions/{id} [get]
func (h *ReceptionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar recepciones
// @Tags         receptions
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "pending | processed | cancelled"
// @Param        supplier_id  query  string  false  "proveedor"
// @Param        from         query  string  false  "YYYY-MM-DD"
// @Param        to           query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.ReceptionListResponse
// @Router       /api/receptions [get]
func (h *ReceptionHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	page := pageFromQuery(c)
	out, err := h.query.List(c.UserContext(), repository.ReceptionFilter{
		Status:     c.Query("status"),
		SupplierID: c.Query("supplier_id"),
		From:       from,
		To:         to,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
