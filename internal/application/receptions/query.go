package receptions

import (
	"context"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

// QueryUseCase consultas de recepciones.
type QueryUseCase struct {
	receptionRepo repository.ReceptionRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(receptionRepo repository.ReceptionRepository) *QueryUseCase {
	return &QueryUseCase{receptionRepo: receptionRepo}
}

// GetByID devuelve la recepción con sus líneas.
func (uc *QueryUseCase) GetByID(ctx context.Context, id string) (*dto.ReceptionResponse, error) {
	r, err := uc.receptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrReceptionNotFound
	}
	return ToReceptionResponse(r), nil
}

// List lista recepciones con filtros y paginación.
func (uc *QueryUseCase) List(ctx context.Context, filter repository.ReceptionFilter) (*dto.ReceptionListResponse, error) {
	switch filter.Status {
	case "", entity.ReceptionPending, entity.ReceptionProcessed, entity.ReceptionCancelled:
	default:
		return nil, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, total, err := uc.receptionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceptionResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *ToReceptionResponse(r))
	}
	return &dto.ReceptionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// ToReceptionResponse mapea la entidad a su DTO.
func ToReceptionResponse(r *entity.Reception) *dto.ReceptionResponse {
	items := make([]dto.ReceptionLineResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.ReceptionLineResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return &dto.ReceptionResponse{
		ID:            r.ID,
		InvoiceNumber: r.InvoiceNumber,
		SupplierID:    r.SupplierID,
		UserID:        r.UserID,
		ReceptionDate: r.ReceptionDate.Format("2006-01-02"),
		Total:         r.Total,
		Notes:         r.Notes,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		ProcessedAt:   r.ProcessedAt,
		CancelledAt:   r.CancelledAt,
		Items:         items,
	}
}
