package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorTable mapea cada error de dominio a su respuesta HTTP. El orden importa: el primero que
// coincide con errors.Is gana.
var errorTable = []errorMapping{
	{domain.ErrNotFoundOrAlreadyProcessed, fiber.StatusConflict, "RECEPTION_NOT_PENDING"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrSupplierNotFound, fiber.StatusNotFound, "SUPPLIER_NOT_FOUND"},
	{domain.ErrSaleNotFound, fiber.StatusNotFound, "SALE_NOT_FOUND"},
	{domain.ErrReceptionNotFound, fiber.StatusNotFound, "RECEPTION_NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},

	{domain.ErrProductInactive, fiber.StatusUnprocessableEntity, "PRODUCT_INACTIVE"},
	{domain.ErrSupplierInactive, fiber.StatusUnprocessableEntity, "SUPPLIER_INACTIVE"},
	{domain.ErrFractionalQuantity, fiber.StatusUnprocessableEntity, "FRACTIONAL_QUANTITY"},
	{domain.ErrAnnulmentWindowExpired, fiber.StatusUnprocessableEntity, "ANNULMENT_WINDOW_EXPIRED"},
	{domain.ErrDuplicateLineIdentifier, fiber.StatusUnprocessableEntity, "DUPLICATE_LINE"},
	{domain.ErrAlreadyAnnulled, fiber.StatusConflict, "ALREADY_ANNULLED"},
	{domain.ErrReceptionNotPending, fiber.StatusConflict, "RECEPTION_NOT_PENDING"},
	{domain.ErrDuplicateInvoice, fiber.StatusConflict, "DUPLICATE_INVOICE"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},

	{domain.ErrInvalidProductRef, fiber.StatusBadRequest, "INVALID_PRODUCT_REF"},
	{domain.ErrAnnulReasonTooShort, fiber.StatusBadRequest, "ANNUL_REASON_TOO_SHORT"},
	{domain.ErrFutureReceptionDate, fiber.StatusBadRequest, "FUTURE_RECEPTION_DATE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},

	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// respondError traduce err a la respuesta HTTP. Los errores de infraestructura se registran y
// se responden como 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: stockErr.Error(),
			Details: map[string]any{
				"product_id": stockErr.ProductID,
				"available":  stockErr.Available,
				"requested":  stockErr.Requested,
			},
		})
	}
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:      "CONCURRENCY_CONFLICT",
			Message:   domain.ErrConcurrencyConflict.Error(),
			Retryable: true,
		})
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	if log != nil {
		log.WithContext(c.UserContext()).Error().Err(err).
			Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
