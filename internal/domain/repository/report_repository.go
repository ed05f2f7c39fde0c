package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummaryResult totales de ventas de un período.
type SalesSummaryResult struct {
	SalesCount    int
	AnnulledCount int
	Total         decimal.Decimal // solo ventas activas
}

// PaymentMethodResult total por medio de pago.
type PaymentMethodResult struct {
	PaymentMethod string
	SalesCount    int
	Total         decimal.Decimal
}

// TopProductResult producto más vendido en el período.
type TopProductResult struct {
	ProductID   string
	Code        string
	ProductName string
	UnitsSold   decimal.Decimal
	Revenue     decimal.Decimal
}

// StockDriftResult producto cuyo stock materializado no coincide con el libro.
type StockDriftResult struct {
	ProductID    string
	Code         string
	ProductName  string
	CurrentStock decimal.Decimal
	LedgerIn     decimal.Decimal
	LedgerOut    decimal.Decimal
}

// LedgerStock stock que explica el libro (entradas - salidas).
func (r StockDriftResult) LedgerStock() decimal.Decimal {
	return r.LedgerIn.Sub(r.LedgerOut)
}

// Drift diferencia entre el stock materializado y el del libro.
func (r StockDriftResult) Drift() decimal.Decimal {
	return r.CurrentStock.Sub(r.LedgerStock())
}

// ReportRepository consultas de solo lectura para reportes.
// Las ventas anuladas no cuentan en totales ni en productos más vendidos.
type ReportRepository interface {
	SalesSummary(ctx context.Context, from, to time.Time) (SalesSummaryResult, error)
	SalesByPaymentMethod(ctx context.Context, from, to time.Time) ([]PaymentMethodResult, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductResult, error)
	// StockDrift devuelve los productos donde current_stock != Σin - Σout.
	StockDrift(ctx context.Context) ([]StockDriftResult, error)
}
