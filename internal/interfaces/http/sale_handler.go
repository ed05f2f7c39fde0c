package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/sales"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

// SaleHandler registro, anulación y consulta de ventas.
type SaleHandler struct {
	create  *sales.CreateSaleUseCase
	annul   *sales.AnnulSaleUseCase
	query   *sales.QueryUseCase
	receipt *sales.ReceiptUseCase
	log     *logger.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(
	create *sales.CreateSaleUseCase,
	annul *sales.AnnulSaleUseCase,
	query *sales.QueryUseCase,
	receipt *sales.ReceiptUseCase,
	log *logger.Logger,
) *SaleHandler {
	return &SaleHandler{create: create, annul: annul, query: query, receipt: receipt, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock de cada línea de forma atómica. Ante 409 CONCURRENCY_CONFLICT se puede reintentar la misma solicitud.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "líneas y medio de pago"
// @Success      201   {object}  dto.CreateSaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.create.CreateSale(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Annul godoc
// @Summary      Anular venta
// @Description  Solo dentro de la ventana de anulación; repone el stock de cada línea.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la venta"
// @Param        body  body  dto.AnnulSaleRequest  true  "motivo"
// @Success      200   {object}  dto.AnnulSaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/annul [post]
func (h *SaleHandler) Annul(c *fiber.Ctx) error {
	var in dto.AnnulSaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.annul.AnnulSale(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        status          query  string  false  "active | annulled"
// @Param        payment_method  query  string  false  "cash | card | transfer"
// @Param        user_id         query  string  false  "vendedor"
// @Param        from            query  string  false  "YYYY-MM-DD"
// @Param        to              query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	page := pageFromQuery(c)
	out, err := h.query.List(c.UserContext(), repository.SaleFilter{
		Status:        c.Query("status"),
		PaymentMethod: c.Query("payment_method"),
		UserID:        c.Query("user_id"),
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

// DownloadReceipt godoc
// @Summary      Comprobante de venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) DownloadReceipt(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.receipt.DownloadReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
