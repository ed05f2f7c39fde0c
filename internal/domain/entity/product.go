package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de medida del producto.
const (
	MeasurementUnit   = "unit"   // unidades discretas
	MeasurementWeight = "weight" // peso continuo (kg)
)

// Product representa un producto del catálogo.
// CurrentStock es la proyección materializada del libro de movimientos; solo la modifica
// el accesor de stock (application/inventory) dentro de una transacción.
type Product struct {
	ID              string
	CategoryID      string
	Code            string // código de barras / código interno, único
	Name            string // único
	Description     string
	SalePrice       decimal.Decimal
	PurchasePrice   decimal.Decimal
	CurrentStock    decimal.Decimal
	MinimumStock    decimal.Decimal
	MeasurementType string // unit, weight
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLowStock indica si el stock actual está en o por debajo del mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.MinimumStock.IsPositive() && p.CurrentStock.LessThanOrEqual(p.MinimumStock)
}

// AcceptsQuantity valida la forma de la cantidad según el tipo de medida:
// productos por unidad solo admiten enteros, por peso hasta 3 decimales.
func (p *Product) AcceptsQuantity(q decimal.Decimal) bool {
	if !q.IsPositive() {
		return false
	}
	if p.MeasurementType == MeasurementWeight {
		return q.Equal(q.Truncate(3))
	}
	return q.Equal(q.Truncate(0))
}

// ValidMeasurementType verifica que el tipo de medida sea conocido.
func ValidMeasurementType(t string) bool {
	return t == MeasurementUnit || t == MeasurementWeight
}
