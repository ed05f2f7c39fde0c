// Package reports contiene los casos de uso de reportes de ventas, el dashboard
// y las sugerencias de reposición. Todo es de solo lectura.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultTopN = 10
	maxTopN     = 100
)

var hundred = decimal.NewFromInt(100)

// ReportsUseCase reportes por período: resumen, medios de pago y productos más vendidos.
type ReportsUseCase struct {
	reportRepo repository.ReportRepository
}

// NewReportsUseCase construye el caso de uso.
func NewReportsUseCase(reportRepo repository.ReportRepository) *ReportsUseCase {
	return &ReportsUseCase{reportRepo: reportRepo}
}

// SalesSummary totales de ventas activas y conteo de anuladas en el período.
func (uc *ReportsUseCase) SalesSummary(ctx context.Context, startDate, endDate string) (*dto.SalesSummaryDTO, error) {
	from, to, err := ParsePeriod(startDate, endDate, time.Now())
	if err != nil {
		return nil, err
	}
	res, err := uc.reportRepo.SalesSummary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reportes: resumen de ventas: %w", err)
	}
	out := buildSummary(from, to, res)
	return &out, nil
}

// ByPaymentMethod totales por medio de pago con su participación sobre el total.
func (uc *ReportsUseCase) ByPaymentMethod(ctx context.Context, startDate, endDate string) ([]dto.PaymentMethodDTO, error) {
	from, to, err := ParsePeriod(startDate, endDate, time.Now())
	if err != nil {
		return nil, err
	}
	rows, err := uc.reportRepo.SalesByPaymentMethod(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reportes: medios de pago: %w", err)
	}
	return buildPaymentMethods(rows), nil
}

// TopProducts productos más vendidos por unidades en el período.
func (uc *ReportsUseCase) TopProducts(ctx context.Context, startDate, endDate string, topN int) ([]dto.TopProductDTO, error) {
	from, to, err := ParsePeriod(startDate, endDate, time.Now())
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}
	rows, err := uc.reportRepo.TopProducts(ctx, from, to, topN)
	if err != nil {
		return nil, fmt.Errorf("reportes: productos más vendidos: %w", err)
	}
	return buildTopProducts(rows), nil
}

func buildSummary(from, to time.Time, r repository.SalesSummaryResult) dto.SalesSummaryDTO {
	avg := decimal.Zero
	if r.SalesCount > 0 {
		avg = r.Total.DivRound(decimal.NewFromInt(int64(r.SalesCount)), 2)
	}
	return dto.SalesSummaryDTO{
		From:          from,
		To:            to,
		SalesCount:    r.SalesCount,
		AnnulledCount: r.AnnulledCount,
		Total:         r.Total.Round(2),
		AverageTicket: avg,
	}
}

func buildPaymentMethods(rows []repository.PaymentMethodResult) []dto.PaymentMethodDTO {
	var total decimal.Decimal
	for _, r := range rows {
		total = total.Add(r.Total)
	}
	out := make([]dto.PaymentMethodDTO, 0, len(rows))
	for _, r := range rows {
		share := decimal.Zero
		if total.IsPositive() {
			share = r.Total.Div(total).Mul(hundred).Round(2)
		}
		out = append(out, dto.PaymentMethodDTO{
			PaymentMethod: r.PaymentMethod,
			SalesCount:    r.SalesCount,
			Total:         r.Total.Round(2),
			Share:         share,
		})
	}
	return out
}

func buildTopProducts(rows []repository.TopProductResult) []dto.TopProductDTO {
	out := make([]dto.TopProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductDTO{
			ProductID:   r.ProductID,
			Code:        r.Code,
			ProductName: r.ProductName,
			UnitsSold:   r.UnitsSold,
			Revenue:     r.Revenue.Round(2),
		})
	}
	return out
}

// ParsePeriod convierte los strings de fecha en time.Time; aplica valores por defecto si están vacíos
// (desde el primer día del mes actual hasta hoy). end es inclusivo hasta el final del día.
func ParsePeriod(startStr, endStr string, now time.Time) (start, end time.Time, err error) {
	if endStr == "" {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date inválido", domain.ErrInvalidInput)
		}
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date inválido", domain.ErrInvalidInput)
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date no puede ser posterior a end_date", domain.ErrInvalidInput)
	}
	return start, end, nil
}
