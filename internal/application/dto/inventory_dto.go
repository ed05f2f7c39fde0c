package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest ajuste manual de inventario (conteo físico, merma, etc.).
type AdjustStockRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Direction string          `json:"direction" validate:"required,oneof=in out"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note" validate:"required,min=3,max=500"`
}

// StockMovementResponse entrada del libro de movimientos.
type StockMovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Direction     string          `json:"direction"`
	Quantity      decimal.Decimal `json:"quantity"`
	StockBefore   decimal.Decimal `json:"stock_before"`
	StockAfter    decimal.Decimal `json:"stock_after"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	UserID        string          `json:"user_id"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// StockDriftDTO producto cuyo stock materializado no coincide con el libro.
type StockDriftDTO struct {
	ProductID    string          `json:"product_id"`
	Code         string          `json:"code"`
	ProductName  string          `json:"product_name"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	LedgerStock  decimal.Decimal `json:"ledger_stock"`
	Drift        decimal.Decimal `json:"drift"`
}

// ReconciliationResponse resultado de conciliar current_stock contra el libro.
type ReconciliationResponse struct {
	CheckedAt  time.Time       `json:"checked_at"`
	Consistent bool            `json:"consistent"`
	Drifts     []StockDriftDTO `json:"drifts"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto en o bajo su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID           string          `json:"product_id"`
	Code                string          `json:"code"`
	ProductName         string          `json:"product_name"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	MinimumStock        decimal.Decimal `json:"minimum_stock"`
	IdealStock          decimal.Decimal `json:"ideal_stock"`          // MinimumStock * 1.5
	SuggestedOrderQty   decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost            decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	UnitsSoldLast90Days decimal.Decimal `json:"units_sold_last_90d"`
	Priority            int             `json:"priority"` // 1 = más urgente
}
