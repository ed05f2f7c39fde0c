package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento de stock.
const (
	DirectionIn  = "in"  // entrada
	DirectionOut = "out" // salida
)

// Tipos de referencia: el evento de negocio que causó el movimiento.
const (
	ReferenceSale       = "sale"
	ReferenceReception  = "reception"
	ReferenceAdjustment = "adjustment"
)

// StockMovement es una entrada del libro de movimientos (append-only, nunca se actualiza ni se borra).
// StockBefore/StockAfter son las instantáneas observadas al escribir, no se recalculan.
type StockMovement struct {
	ID            string
	ProductID     string
	Direction     string          // in, out
	Quantity      decimal.Decimal // siempre > 0
	StockBefore   decimal.Decimal
	StockAfter    decimal.Decimal
	ReferenceType string // sale, reception, adjustment
	ReferenceID   string
	UserID        string
	Note          string
	CreatedAt     time.Time
}

// SignedQuantity devuelve la cantidad con signo (+ entrada, - salida).
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// ValidDirection verifica la dirección del movimiento.
func ValidDirection(d string) bool {
	return d == DirectionIn || d == DirectionOut
}

// ValidReferenceType verifica el tipo de referencia.
func ValidReferenceType(t string) bool {
	return t == ReferenceSale || t == ReferenceReception || t == ReferenceAdjustment
}
