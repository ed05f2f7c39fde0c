package sales

import (
	"context"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

// QueryUseCase consultas de ventas.
type QueryUseCase struct {
	saleRepo repository.SaleRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(saleRepo repository.SaleRepository) *QueryUseCase {
	return &QueryUseCase{saleRepo: saleRepo}
}

// GetByID devuelve la venta con sus líneas.
func (uc *QueryUseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	s, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrSaleNotFound
	}
	return ToSaleResponse(s), nil
}

// List lista ventas con filtros y paginación.
func (uc *QueryUseCase) List(ctx context.Context, filter repository.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Status != "" && filter.Status != entity.SaleStatusActive && filter.Status != entity.SaleStatusAnnulled {
		return nil, domain.ErrInvalidInput
	}
	if filter.PaymentMethod != "" && !entity.ValidPaymentMethod(filter.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, total, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *ToSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// ToSaleResponse mapea la entidad a su DTO.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	items := make([]dto.SaleLineResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleLineResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return &dto.SaleResponse{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		UserID:        s.UserID,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
		AnnulledAt:    s.AnnulledAt,
		AnnulledBy:    s.AnnulledBy,
		AnnulReason:   s.AnnulReason,
		Items:         items,
	}
}
