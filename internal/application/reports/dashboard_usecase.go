package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardTopProducts = 5   // número de productos en el widget del dashboard
	lowStockScanLimit    = 500 // tope de productos bajo mínimo contados en el dashboard
)

// DashboardUseCase genera el resumen del día y del mes en curso.
//
// Fuente de datos: ReportRepository y ProductRepository (consultas read-only).
type DashboardUseCase struct {
	reportRepo  repository.ReportRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reportRepo repository.ReportRepository, productRepo repository.ProductRepository) *DashboardUseCase {
	return &DashboardUseCase{reportRepo: reportRepo, productRepo: productRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cinco consultas en paralelo:
//  1. SalesSummary(hoy)
//  2. SalesSummary(mes)
//  3. TopProducts(mes, top 5)
//  4. SalesByPaymentMethod(mes)
//  5. ListLowStock
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	// Hoy: 00:00:00.000 – 23:59:59.999
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)

	// Mes en curso: día 1 a las 00:00 – hoy a las 23:59:59
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := todayEnd

	var (
		today, month repository.SalesSummaryResult
		top          []repository.TopProductResult
		byPayment    []repository.PaymentMethodResult
		lowStock     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := uc.reportRepo.SalesSummary(gctx, todayStart, todayEnd)
		if err != nil {
			return fmt.Errorf("dashboard: métricas de hoy: %w", err)
		}
		today = r
		return nil
	})
	g.Go(func() error {
		r, err := uc.reportRepo.SalesSummary(gctx, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("dashboard: métricas del mes: %w", err)
		}
		month = r
		return nil
	})
	g.Go(func() error {
		r, err := uc.reportRepo.TopProducts(gctx, monthStart, monthEnd, dashboardTopProducts)
		if err != nil {
			return fmt.Errorf("dashboard: top productos: %w", err)
		}
		top = r
		return nil
	})
	g.Go(func() error {
		r, err := uc.reportRepo.SalesByPaymentMethod(gctx, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("dashboard: medios de pago: %w", err)
		}
		byPayment = r
		return nil
	})
	g.Go(func() error {
		list, err := uc.productRepo.ListLowStock(gctx, lowStockScanLimit)
		if err != nil {
			return fmt.Errorf("dashboard: stock bajo: %w", err)
		}
		lowStock = len(list)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	return &dto.DashboardSummaryDTO{
		Today:         buildSummary(todayStart, todayEnd, today),
		Month:         buildSummary(monthStart, monthEnd, month),
		TopProducts:   buildTopProducts(top),
		ByPayment:     buildPaymentMethods(byPayment),
		LowStockCount: lowStock,
		DateLabel:     monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
