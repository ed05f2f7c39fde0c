package reports

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase genera la lista de reposición: productos en o bajo su stock mínimo,
// priorizados por volumen de ventas de los últimos 90 días.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
	reportRepo  repository.ReportRepository
	now         func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository, reportRepo repository.ReportRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo, reportRepo: reportRepo, now: time.Now}
}

// GenerateReplenishmentList devuelve los productos bajo mínimo con la cantidad sugerida de pedido
// (hasta 1.5 veces el mínimo) y una prioridad (1 = más urgente).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, limit int) ([]dto.ReplenishmentSuggestionDTO, error) {
	if limit <= 0 || limit > lowStockScanLimit {
		limit = lowStockScanLimit
	}

	// 1. Productos en o bajo su stock mínimo
	products, err := uc.productRepo.ListLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Unidades vendidas por producto en los últimos 90 días
	end := uc.now()
	start := end.AddDate(0, 0, -90)
	top, _ := uc.reportRepo.TopProducts(ctx, start, end, lowStockScanLimit)
	soldByID := make(map[string]decimal.Decimal, len(top))
	for _, t := range top {
		soldByID[t.ProductID] = t.UnitsSold
	}

	// 3. Construir los DTOs
	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		ideal := p.MinimumStock.Mul(factor)
		if p.MeasurementType != "weight" {
			ideal = ideal.Ceil()
		}
		qty := ideal.Sub(p.CurrentStock)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:           p.ID,
			Code:                p.Code,
			ProductName:         p.Name,
			CurrentStock:        p.CurrentStock,
			MinimumStock:        p.MinimumStock,
			IdealStock:          ideal,
			SuggestedOrderQty:   qty,
			UnitCost:            p.PurchasePrice,
			EstimatedOrderCost:  qty.Mul(p.PurchasePrice).Round(2),
			UnitsSoldLast90Days: soldByID[p.ID],
		})
	}

	// 4. Ordenar: mayor volumen de ventas, luego mayor déficit bajo el mínimo
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.UnitsSoldLast90Days.Equal(b.UnitsSoldLast90Days) {
			return a.UnitsSoldLast90Days.GreaterThan(b.UnitsSoldLast90Days)
		}
		defA := a.MinimumStock.Sub(a.CurrentStock)
		defB := b.MinimumStock.Sub(b.CurrentStock)
		return defA.GreaterThan(defB)
	})

	// 5. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
