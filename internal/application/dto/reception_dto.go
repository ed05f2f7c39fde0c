package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceptionLineRequest línea de recepción (producto por id, código o nombre).
type ReceptionLineRequest struct {
	ProductID string          `json:"product_id" validate:"omitempty,uuid"`
	Code      string          `json:"code" validate:"omitempty,max=64"`
	Name      string          `json:"name" validate:"omitempty,max=200"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateReceptionRequest entrada para registrar una recepción pendiente.
type CreateReceptionRequest struct {
	InvoiceNumber string                 `json:"invoice_number" validate:"required,min=1,max=64"`
	SupplierID    string                 `json:"supplier_id" validate:"required,uuid"`
	ReceptionDate string                 `json:"reception_date" validate:"required,datetime=2006-01-02"`
	Notes         string                 `json:"notes" validate:"max=1000"`
	Items         []ReceptionLineRequest `json:"items" validate:"required,min=1,max=500,dive"`
}

// CreateReceptionResponse identidad y total de la recepción.
type CreateReceptionResponse struct {
	ReceptionID   string          `json:"reception_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
}

// ProcessReceptionRequest opciones del procesamiento.
type ProcessReceptionRequest struct {
	UpdateSalePrices bool `json:"update_sale_prices"`
}

// ReceptionLineResponse línea de recepción.
type ReceptionLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ReceptionResponse detalle de una recepción.
type ReceptionResponse struct {
	ID            string                  `json:"id"`
	InvoiceNumber string                  `json:"invoice_number"`
	SupplierID    string                  `json:"supplier_id"`
	UserID        string                  `json:"user_id"`
	ReceptionDate string                  `json:"reception_date"`
	Total         decimal.Decimal         `json:"total"`
	Notes         string                  `json:"notes,omitempty"`
	Status        string                  `json:"status"`
	CreatedAt     time.Time               `json:"created_at"`
	ProcessedAt   *time.Time              `json:"processed_at,omitempty"`
	CancelledAt   *time.Time              `json:"cancelled_at,omitempty"`
	Items         []ReceptionLineResponse `json:"items"`
}

// ReceptionListResponse lista paginada de recepciones.
type ReceptionListResponse struct {
	Items []ReceptionResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
