package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

// LedgerQueryUseCase consultas sobre el libro de movimientos y conciliación contra current_stock.
type LedgerQueryUseCase struct {
	movRepo    repository.StockMovementRepository
	reportRepo repository.ReportRepository
}

// NewLedgerQueryUseCase construye el caso de uso.
func NewLedgerQueryUseCase(movRepo repository.StockMovementRepository, reportRepo repository.ReportRepository) *LedgerQueryUseCase {
	return &LedgerQueryUseCase{movRepo: movRepo, reportRepo: reportRepo}
}

// ListMovements lista movimientos filtrando por producto, tipo de referencia y fechas.
func (uc *LedgerQueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.ReferenceType != "" && !entity.ValidReferenceType(filter.ReferenceType) {
		return nil, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.MovementListResponse{
		Items: toMovementResponses(list),
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// ListByReference devuelve los movimientos causados por una venta, recepción o ajuste.
func (uc *LedgerQueryUseCase) ListByReference(ctx context.Context, referenceType, referenceID string) ([]dto.StockMovementResponse, error) {
	if !entity.ValidReferenceType(referenceType) || referenceID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.movRepo.ListByReference(ctx, referenceType, referenceID)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

// Reconcile compara current_stock con Σentradas - Σsalidas del libro para cada producto.
func (uc *LedgerQueryUseCase) Reconcile(ctx context.Context) (*dto.ReconciliationResponse, error) {
	drifts, err := uc.reportRepo.StockDrift(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.ReconciliationResponse{
		CheckedAt:  time.Now().UTC(),
		Consistent: len(drifts) == 0,
		Drifts:     make([]dto.StockDriftDTO, 0, len(drifts)),
	}
	for _, d := range drifts {
		out.Drifts = append(out.Drifts, dto.StockDriftDTO{
			ProductID:    d.ProductID,
			Code:         d.Code,
			ProductName:  d.ProductName,
			CurrentStock: d.CurrentStock,
			LedgerStock:  d.LedgerStock(),
			Drift:        d.Drift(),
		})
	}
	return out, nil
}

func toMovementResponses(list []*entity.StockMovement) []dto.StockMovementResponse {
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMovementResponse(m))
	}
	return items
}
