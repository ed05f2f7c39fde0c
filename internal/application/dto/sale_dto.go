package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea de venta. El producto se identifica por exactamente uno de
// product_id, code o name.
type SaleLineRequest struct {
	ProductID string           `json:"product_id" validate:"omitempty,uuid"`
	Code      string           `json:"code" validate:"omitempty,max=64"`
	Name      string           `json:"name" validate:"omitempty,max=200"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest entrada para registrar una venta.
type CreateSaleRequest struct {
	PaymentMethod string            `json:"payment_method" validate:"omitempty,oneof=cash card transfer"`
	Items         []SaleLineRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// CreateSaleResponse identidad y total de la venta persistida.
type CreateSaleResponse struct {
	SaleID     string          `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	Total      decimal.Decimal `json:"total"`
}

// AnnulSaleRequest motivo obligatorio de anulación.
type AnnulSaleRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// AnnulSaleResponse número de la venta anulada.
type AnnulSaleResponse struct {
	SaleNumber string `json:"sale_number"`
}

// SaleLineResponse línea de venta.
type SaleLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse detalle completo de una venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	UserID        string             `json:"user_id"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	AnnulledAt    *time.Time         `json:"annulled_at,omitempty"`
	AnnulledBy    string             `json:"annulled_by,omitempty"`
	AnnulReason   string             `json:"annul_reason,omitempty"`
	Items         []SaleLineResponse `json:"items"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
