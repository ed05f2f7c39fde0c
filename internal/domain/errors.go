package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Catálogo
	ErrProductNotFound    = errors.New("producto no encontrado")
	ErrProductInactive    = errors.New("producto inactivo")
	ErrInvalidProductRef  = errors.New("la línea debe identificar el producto por exactamente uno de: id, código o nombre")
	ErrFractionalQuantity = errors.New("el producto se vende por unidad y no admite cantidades fraccionadas")
	ErrSupplierNotFound   = errors.New("proveedor no encontrado")
	ErrSupplierInactive   = errors.New("proveedor inactivo")

	// Stock
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Ventas
	ErrDuplicateLineIdentifier = errors.New("el mismo producto aparece más de una vez en la solicitud")
	ErrSaleNotFound            = errors.New("venta no encontrada")
	ErrAlreadyAnnulled         = errors.New("la venta ya está anulada")
	ErrAnnulmentWindowExpired  = errors.New("el plazo para anular la venta expiró")
	ErrAnnulReasonTooShort     = errors.New("el motivo de anulación es demasiado corto")

	// Recepciones
	ErrReceptionNotFound          = errors.New("recepción no encontrada")
	ErrNotFoundOrAlreadyProcessed = errors.New("recepción no encontrada o ya procesada")
	ErrReceptionNotPending        = errors.New("la recepción no está pendiente")
	ErrDuplicateInvoice           = errors.New("la factura ya fue registrada para este proveedor")
	ErrFutureReceptionDate        = errors.New("la fecha de recepción no puede ser futura")

	// ErrConcurrencyConflict indica contención de bloqueos o fallo de serialización.
	// Es el único error que el llamador puede reintentar sin modificar la solicitud.
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")
)

// InsufficientStockError detalla el producto y las cantidades que impidieron el descuento.
type InsufficientStockError struct {
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: disponible %s, solicitado %s",
		e.ProductID, e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ErrorKind clasifica un error según la taxonomía del motor de inventario.
type ErrorKind string

const (
	KindNone           ErrorKind = ""
	KindNotFound       ErrorKind = "not_found"
	KindBusinessRule   ErrorKind = "business_rule"
	KindConflict       ErrorKind = "conflict"
	KindInvalidInput   ErrorKind = "invalid_input"
	KindInfrastructure ErrorKind = "infrastructure"
)

var notFoundErrors = []error{
	ErrNotFound, ErrUserNotFound, ErrProductNotFound, ErrSupplierNotFound,
	ErrSaleNotFound, ErrReceptionNotFound,
}

var businessErrors = []error{
	ErrInsufficientStock, ErrProductInactive, ErrSupplierInactive, ErrDuplicateInvoice,
	ErrAnnulmentWindowExpired, ErrAlreadyAnnulled, ErrNotFoundOrAlreadyProcessed,
	ErrReceptionNotPending, ErrDuplicateLineIdentifier, ErrDuplicate, ErrEmailAlreadyExists,
	ErrConflict, ErrFractionalQuantity,
}

// KindOf devuelve la categoría del error (nil -> KindNone).
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrConcurrencyConflict) {
		return KindConflict
	}
	for _, e := range notFoundErrors {
		if errors.Is(err, e) {
			return KindNotFound
		}
	}
	for _, e := range businessErrors {
		if errors.Is(err, e) {
			return KindBusinessRule
		}
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidProductRef) ||
		errors.Is(err, ErrAnnulReasonTooShort) || errors.Is(err, ErrFutureReceptionDate) {
		return KindInvalidInput
	}
	return KindInfrastructure
}

// IsRetryable indica si la operación puede reintentarse sin cambios.
func IsRetryable(err error) bool {
	return KindOf(err) == KindConflict
}
