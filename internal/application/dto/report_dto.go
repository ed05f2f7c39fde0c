package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummaryDTO totales de ventas de un período.
type SalesSummaryDTO struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	SalesCount    int             `json:"sales_count"`
	AnnulledCount int             `json:"annulled_count"`
	Total         decimal.Decimal `json:"total"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// PaymentMethodDTO total por medio de pago.
type PaymentMethodDTO struct {
	PaymentMethod string          `json:"payment_method"`
	SalesCount    int             `json:"sales_count"`
	Total         decimal.Decimal `json:"total"`
	Share         decimal.Decimal `json:"share"` // % del total del período
}

// TopProductDTO producto más vendido.
type TopProductDTO struct {
	ProductID   string          `json:"product_id"`
	Code        string          `json:"code"`
	ProductName string          `json:"product_name"`
	UnitsSold   decimal.Decimal `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DashboardSummaryDTO respuesta de GET /api/reports/dashboard.
// KPIs del día y del mes en curso, más el Top-5 de productos del mes.
type DashboardSummaryDTO struct {
	Today         SalesSummaryDTO    `json:"today"`
	Month         SalesSummaryDTO    `json:"month"`
	TopProducts   []TopProductDTO    `json:"top_products"`
	ByPayment     []PaymentMethodDTO `json:"by_payment_method"`
	LowStockCount int                `json:"low_stock_count"`
	DateLabel     string             `json:"date_label"` // ej: "Octubre 2026"
}
